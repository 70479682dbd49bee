package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"advisory-service/internal/database/minio"
	"advisory-service/internal/metrics"
	"advisory-service/internal/models"
	"advisory-service/internal/utils"
	"advisory-service/internal/viewstate"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ReportStore keeps uploaded soil reports. Satisfied by *minio.MinioClient.
type ReportStore interface {
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
}

// ReportExtractor reads structured values out of a document. Satisfied by *gemini.GeminiClientSelector.
type ReportExtractor interface {
	ExtractJSON(ctx context.Context, prompt, mimeType string, data []byte, target any) error
}

const (
	ReportSourceAI     = "ai"
	ReportSourceSample = "sample"

	maxReportSize     = 10 << 20
	extractionTimeout = 60 * time.Second
	reportLinkExpiry  = 15 * time.Minute
)

var supportedReportTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// sampleReport is what every upload yields when no extractor is configured.
var sampleReport = models.SoilSample{
	PH:            6.8,
	Nitrogen:      45,
	Phosphorus:    38,
	Potassium:     25,
	OrganicMatter: 2.8,
	Moisture:      15,
	Temperature:   24,
	EC:            0.45,
}

const extractionPrompt = `You are reading a soil test report. Return only a JSON object with these numeric fields:
"ph", "nitrogen" (kg/ha), "phosphorus" (kg/ha), "potassium" (kg/ha), "organicMatter" (%),
"moisture" (%), "temperature" (°C), "ec" (dS/m). Use 0 for any value the report does not contain.`

type ISoilHealthService interface {
	Evaluate(form models.SoilForm, strict bool) (models.SoilHealthReport, error)
	UploadReport(ctx context.Context, fileName string, data []byte) (*models.ReportUploadResult, error)
	ViewFlow() ViewFlow[models.SoilForm, models.SoilHealthReport]
}

type SoilHealthService struct {
	runner          *viewstate.Runner
	analysisDelay   time.Duration
	extractionDelay time.Duration
	store           ReportStore
	extractor       ReportExtractor
}

// NewSoilHealthService wires the evaluator. store and extractor may be nil.
func NewSoilHealthService(runner *viewstate.Runner, analysisDelay, extractionDelay time.Duration, store ReportStore, extractor ReportExtractor) ISoilHealthService {
	return &SoilHealthService{
		runner:          runner,
		analysisDelay:   analysisDelay,
		extractionDelay: extractionDelay,
		store:           store,
		extractor:       extractor,
	}
}

// Evaluate scores a form immediately. In strict mode out-of-range readings are rejected.
func (s *SoilHealthService) Evaluate(form models.SoilForm, strict bool) (models.SoilHealthReport, error) {
	sample := ParseSoilForm(utils.TrimAllStringFields(form))
	if strict {
		if err := ValidateSoilSample(sample); err != nil {
			return models.SoilHealthReport{}, err
		}
	}
	report := EvaluateSoil(sample)
	metrics.SoilHealthScore.Observe(report.OverallHealth)
	return report, nil
}

func (s *SoilHealthService) ViewFlow() ViewFlow[models.SoilForm, models.SoilHealthReport] {
	return ViewFlow[models.SoilForm, models.SoilHealthReport]{
		Page:  PageSoilHealth,
		Delay: s.analysisDelay,
		Prepare: func(form models.SoilForm) (models.SoilForm, error) {
			return utils.TrimAllStringFields(form), nil
		},
		Compute: func(form models.SoilForm) models.SoilHealthReport {
			report := EvaluateSoil(ParseSoilForm(form))
			metrics.SoilHealthScore.Observe(report.OverallHealth)
			return report
		},
		Summarize: func(report models.SoilHealthReport) map[string]any {
			summary := map[string]any{"overallHealth": report.OverallHealth}
			for _, key := range models.TrackedNutrients {
				summary[key] = report.Nutrients[key].Status
			}
			return summary
		},
	}
}

// UploadReport accepts a PDF or image soil report, archives it and returns the readings found in it.
func (s *SoilHealthService) UploadReport(ctx context.Context, fileName string, data []byte) (*models.ReportUploadResult, error) {
	if len(data) == 0 {
		return nil, models.NewInvalidInput("file", "file is empty")
	}
	if len(data) > maxReportSize {
		return nil, models.NewInvalidInput("file", fmt.Sprintf("file exceeds %d MB", maxReportSize>>20))
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), supportedReportTypes...) {
		return nil, models.NewInvalidInput("file", fmt.Sprintf("unsupported file type %s, expected PDF, JPEG or PNG", mtype.String()))
	}

	result := &models.ReportUploadResult{
		FileName: path.Base(fileName),
		Notices: []models.Notice{{
			Title:       "File uploaded successfully",
			Description: fmt.Sprintf("Processing %s...", path.Base(fileName)),
		}},
	}

	if s.store != nil {
		objectKey := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01/02"), uuid.NewString(), mtype.Extension())
		if err := s.store.UploadBytes(ctx, minio.Storage.SoilReports, objectKey, data, mtype.String()); err != nil {
			slog.Warn("failed to archive soil report", "file", fileName, "error", err)
			metrics.FallbacksUsed.WithLabelValues("minio").Inc()
		} else {
			result.ObjectKey = objectKey
			if link, err := s.store.GetPresignedURL(ctx, minio.Storage.SoilReports, objectKey, reportLinkExpiry); err == nil {
				result.ReportURL = link
			} else {
				slog.Warn("failed to sign soil report link", "object", objectKey, "error", err)
			}
		}
	}

	task := s.extract(ctx, data, mtype.String())
	extracted, err := task.Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("report extraction: %w", err)
	}

	result.Source = extracted.source
	result.Form = FormatSoilSample(extracted.sample)
	result.Notices = append(result.Notices, models.Notice{
		Title:       "Data extracted",
		Description: "Soil test report has been processed successfully.",
	})
	return result, nil
}

type extraction struct {
	sample models.SoilSample
	source string
}

func (s *SoilHealthService) extract(ctx context.Context, data []byte, mimeType string) *viewstate.Task[extraction] {
	fallback := extraction{sample: sampleReport, source: ReportSourceSample}
	if s.extractor == nil {
		return viewstate.Run(ctx, s.runner, s.extractionDelay, func() extraction { return fallback })
	}

	// The extraction outlives a client that stops waiting.
	detached := context.WithoutCancel(ctx)
	return viewstate.Run(ctx, s.runner, 0, func() extraction {
		callCtx, cancel := context.WithTimeout(detached, extractionTimeout)
		defer cancel()

		var sample models.SoilSample
		if err := s.extractor.ExtractJSON(callCtx, extractionPrompt, mimeType, data, &sample); err != nil {
			slog.Warn("soil report extraction failed, using sample readings", "error", err)
			metrics.FallbacksUsed.WithLabelValues("gemini_extraction").Inc()
			return fallback
		}
		if err := ValidateSoilSample(sample); err != nil {
			slog.Warn("extracted soil readings out of range, using sample readings", "error", err)
			metrics.FallbacksUsed.WithLabelValues("gemini_extraction").Inc()
			return fallback
		}
		return extraction{sample: sample, source: ReportSourceAI}
	})
}
