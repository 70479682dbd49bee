package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"advisory-service/internal/database/minio"
	"advisory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
)

type fakeReportStore struct {
	mu      sync.Mutex
	err     error
	buckets []string
	objects []string
	types   []string
}

func (f *fakeReportStore) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.buckets = append(f.buckets, bucketName)
	f.objects = append(f.objects, objectName)
	f.types = append(f.types, contentType)
	return nil
}

func (f *fakeReportStore) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	return "http://minio.local/" + bucketName + "/" + objectName, nil
}

type fakeExtractor struct {
	sample models.SoilSample
	err    error
	calls  int
}

func (f *fakeExtractor) ExtractJSON(ctx context.Context, prompt, mimeType string, data []byte, target any) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	*(target.(*models.SoilSample)) = f.sample
	return nil
}

// ============================================================================
// EVALUATE
// ============================================================================

func TestSoilHealthService_EvaluateTrimsInput(t *testing.T) {
	svc := NewSoilHealthService(nil, 0, 0, nil, nil)

	report, err := svc.Evaluate(models.SoilForm{PH: " 6.8 ", Nitrogen: "45", Phosphorus: "38", Potassium: "25", OrganicMatter: "2.8"}, false)
	require.NoError(t, err)
	assert.Equal(t, 85.0, report.OverallHealth)
}

func TestSoilHealthService_StrictRejectsOutOfRange(t *testing.T) {
	svc := NewSoilHealthService(nil, 0, 0, nil, nil)
	form := models.SoilForm{PH: "19"}

	_, err := svc.Evaluate(form, true)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	report, err := svc.Evaluate(form, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAlkaline, report.Nutrients[models.NutrientPH].Status)
}

func TestSoilHealthService_ViewFlowComputesReport(t *testing.T) {
	flow := NewSoilHealthService(nil, 0, 0, nil, nil).ViewFlow()
	assert.Equal(t, PageSoilHealth, flow.Page)

	form, err := flow.Prepare(models.SoilForm{PH: "  "})
	require.NoError(t, err)
	report := flow.Compute(form)
	assert.Equal(t, 57.0, report.OverallHealth)

	summary := flow.Summarize(report)
	assert.Equal(t, 57.0, summary["overallHealth"])
	assert.Equal(t, models.StatusLow, summary[models.NutrientNitrogen])
}

// ============================================================================
// UPLOAD
// ============================================================================

func TestUploadReport_WithoutIntegrationsReturnsSample(t *testing.T) {
	svc := NewSoilHealthService(nil, 0, 0, nil, nil)

	result, err := svc.UploadReport(context.Background(), "uploads/report.pdf", pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", result.FileName)
	assert.Equal(t, ReportSourceSample, result.Source)
	assert.Empty(t, result.ObjectKey)
	assert.Equal(t, models.SoilForm{
		PH: "6.8", Nitrogen: "45", Phosphorus: "38", Potassium: "25",
		OrganicMatter: "2.8", Moisture: "15", Temperature: "24", EC: "0.45",
	}, result.Form)

	require.Len(t, result.Notices, 2)
	assert.Equal(t, "File uploaded successfully", result.Notices[0].Title)
	assert.Equal(t, "Processing report.pdf...", result.Notices[0].Description)
	assert.Equal(t, "Data extracted", result.Notices[1].Title)
}

func TestUploadReport_ArchivesToStore(t *testing.T) {
	store := &fakeReportStore{}
	svc := NewSoilHealthService(nil, 0, 0, store, nil)

	result, err := svc.UploadReport(context.Background(), "plot.png", pngBytes)
	require.NoError(t, err)

	require.Len(t, store.objects, 1)
	assert.Equal(t, minio.Storage.SoilReports, store.buckets[0])
	assert.Equal(t, "image/png", store.types[0])
	assert.True(t, strings.HasSuffix(store.objects[0], ".png"))
	assert.Equal(t, store.objects[0], result.ObjectKey)
	assert.Equal(t, "http://minio.local/soil-reports/"+store.objects[0], result.ReportURL)
}

func TestUploadReport_StoreFailureIsNotFatal(t *testing.T) {
	store := &fakeReportStore{err: errors.New("bucket unavailable")}
	svc := NewSoilHealthService(nil, 0, 0, store, nil)

	result, err := svc.UploadReport(context.Background(), "plot.png", pngBytes)
	require.NoError(t, err)
	assert.Empty(t, result.ObjectKey)
	assert.Equal(t, ReportSourceSample, result.Source)
}

func TestUploadReport_UsesExtractedReadings(t *testing.T) {
	extractor := &fakeExtractor{sample: models.SoilSample{PH: 5.5, Nitrogen: 18, Phosphorus: 12, Potassium: 9, OrganicMatter: 0.8}}
	svc := NewSoilHealthService(nil, 0, 0, nil, extractor)

	result, err := svc.UploadReport(context.Background(), "scan.pdf", pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, ReportSourceAI, result.Source)
	assert.Equal(t, "5.5", result.Form.PH)
	assert.Equal(t, "18", result.Form.Nitrogen)
}

func TestUploadReport_ExtractorFailureFallsBackToSample(t *testing.T) {
	cases := map[string]*fakeExtractor{
		"call fails":          {err: errors.New("quota exceeded")},
		"values out of range": {sample: models.SoilSample{PH: 42}},
	}
	for name, extractor := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewSoilHealthService(nil, 0, 0, nil, extractor)
			result, err := svc.UploadReport(context.Background(), "scan.pdf", pdfBytes)
			require.NoError(t, err)
			assert.Equal(t, ReportSourceSample, result.Source)
			assert.Equal(t, "6.8", result.Form.PH)
		})
	}
}

func TestUploadReport_RejectsBadFiles(t *testing.T) {
	svc := NewSoilHealthService(nil, 0, 0, nil, nil)

	_, err := svc.UploadReport(context.Background(), "empty.pdf", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UploadReport(context.Background(), "notes.txt", []byte("pH 6.8, nitrogen 45"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unsupported file type")

	big := make([]byte, maxReportSize+1)
	copy(big, pdfBytes)
	_, err = svc.UploadReport(context.Background(), "huge.pdf", big)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUploadReport_CallerGivingUpReturnsContextError(t *testing.T) {
	svc := NewSoilHealthService(nil, 0, 100*time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.UploadReport(ctx, "report.pdf", pdfBytes)
	assert.ErrorIs(t, err, context.Canceled)
}
