package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"advisory-service/internal/event"
	"advisory-service/internal/models"
	"advisory-service/internal/repository"
	"advisory-service/internal/viewstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.AnalysisEvent
	err    error
}

func (p *recordingPublisher) PublishAnalysis(_ context.Context, evt event.AnalysisEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) snapshot() []event.AnalysisEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.AnalysisEvent(nil), p.events...)
}

func newSoilViewService(publisher event.AnalysisPublisher) IViewService[models.SoilForm, models.SoilHealthReport] {
	flow := NewSoilHealthService(nil, 0, 0, nil, nil).ViewFlow()
	repo := repository.NewMemoryViewRepository[models.SoilForm, models.SoilHealthReport](time.Hour)
	return NewViewService(flow, repo, nil, publisher)
}

// ============================================================================
// LIFECYCLE
// ============================================================================

func TestViewService_SubmitResolvesAndPublishes(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newSoilViewService(publisher)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseIdle, view.Phase)
	assert.Equal(t, PageSoilHealth, view.Page)

	form := models.SoilForm{PH: "6.8", Nitrogen: "45", Phosphorus: "38", Potassium: "25", OrganicMatter: "2.8"}
	submitting, task, err := svc.Submit(ctx, view.ID, form)
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseSubmitting, submitting.Phase)

	resolved, err := task.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseResult, resolved.Phase)
	require.NotNil(t, resolved.Result)
	assert.Equal(t, 85.0, resolved.Result.OverallHealth)

	stored, err := svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseResult, stored.Phase)
	assert.Equal(t, 85.0, stored.Result.OverallHealth)

	events := publisher.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, PageSoilHealth, events[0].Page)
	assert.Equal(t, view.ID, events[0].ViewID)
	assert.Equal(t, 85.0, events[0].Summary["overallHealth"])
}

func TestViewService_SecondSubmitWhileSubmittingIsRejected(t *testing.T) {
	flow := NewSoilHealthService(nil, 0, 0, nil, nil).ViewFlow()
	flow.Delay = 50 * time.Millisecond
	repo := repository.NewMemoryViewRepository[models.SoilForm, models.SoilHealthReport](time.Hour)
	svc := NewViewService(flow, repo, nil, nil)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	_, task, err := svc.Submit(ctx, view.ID, models.SoilForm{})
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, view.ID, models.SoilForm{PH: "5"})
	assert.ErrorIs(t, err, viewstate.ErrAlreadySubmitting)

	resolved, err := task.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", resolved.Input.PH, "the first submission's input wins")

	_, again, err := svc.Submit(ctx, view.ID, models.SoilForm{PH: "5"})
	require.NoError(t, err, "a view in result can be resubmitted")
	second, err := again.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAcidic, second.Result.Nutrients[models.NutrientPH].Status)
}

func TestViewService_PrepareErrorLeavesViewIdle(t *testing.T) {
	flow := NewCropService(0).ViewFlow()
	repo := repository.NewMemoryViewRepository[models.CropSuggestionRequest, models.CropSuggestionResult](time.Hour)
	svc := NewViewService(flow, repo, nil, nil)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	_, task, err := svc.Submit(ctx, view.ID, models.CropSuggestionRequest{Location: " "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Nil(t, task)

	stored, err := svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseIdle, stored.Phase)
}

func TestViewService_UnknownView(t *testing.T) {
	svc := newSoilViewService(nil)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, _, err = svc.Submit(context.Background(), "nope", models.SoilForm{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestViewService_PublishFailureDoesNotBlockResult(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := newSoilViewService(publisher)
	ctx := context.Background()

	view, _ := svc.Create(ctx)
	_, task, err := svc.Submit(ctx, view.ID, models.SoilForm{})
	require.NoError(t, err)

	resolved, err := task.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseResult, resolved.Phase)
	assert.Len(t, publisher.snapshot(), 1)
}
