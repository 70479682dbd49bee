package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"advisory-service/internal/event"
	"advisory-service/internal/metrics"
	"advisory-service/internal/repository"
	"advisory-service/internal/viewstate"

	"github.com/google/uuid"
)

const (
	PageSoilHealth     = "soil-health"
	PageCropSuggestion = "crop-suggestion"
	PageChatbot        = "chatbot"
)

// ViewFlow describes one interactive page: how input is checked, how the result is produced
// and what gets reported once it resolves.
type ViewFlow[In any, Out any] struct {
	Page  string
	Delay time.Duration
	// Prepare normalises and checks input before the view leaves idle. Optional.
	Prepare func(In) (In, error)
	Compute func(In) Out
	// Summarize feeds the analysis event. Optional.
	Summarize func(Out) map[string]any
}

type IViewService[In any, Out any] interface {
	Create(ctx context.Context) (viewstate.View[In, Out], error)
	Get(ctx context.Context, id string) (viewstate.View[In, Out], error)
	Submit(ctx context.Context, id string, input In) (viewstate.View[In, Out], *viewstate.Task[viewstate.View[In, Out]], error)
}

type ViewService[In any, Out any] struct {
	flow      ViewFlow[In, Out]
	repo      repository.ViewRepository[In, Out]
	runner    *viewstate.Runner
	publisher event.AnalysisPublisher
	now       func() time.Time
}

func NewViewService[In any, Out any](
	flow ViewFlow[In, Out],
	repo repository.ViewRepository[In, Out],
	runner *viewstate.Runner,
	publisher event.AnalysisPublisher,
) IViewService[In, Out] {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &ViewService[In, Out]{
		flow:      flow,
		repo:      repo,
		runner:    runner,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *ViewService[In, Out]) Create(ctx context.Context) (viewstate.View[In, Out], error) {
	view := viewstate.New[In, Out](s.flow.Page, uuid.NewString(), s.now())
	if err := s.repo.Create(ctx, view); err != nil {
		return view, fmt.Errorf("failed to create %s view: %w", s.flow.Page, err)
	}
	return view, nil
}

func (s *ViewService[In, Out]) Get(ctx context.Context, id string) (viewstate.View[In, Out], error) {
	return s.repo.Get(ctx, id)
}

// Submit moves the view to submitting and schedules its result. The returned task resolves with
// the view in the result phase; the caller may wait on it or poll Get.
func (s *ViewService[In, Out]) Submit(ctx context.Context, id string, input In) (viewstate.View[In, Out], *viewstate.Task[viewstate.View[In, Out]], error) {
	if s.flow.Prepare != nil {
		prepared, err := s.flow.Prepare(input)
		if err != nil {
			return viewstate.View[In, Out]{}, nil, err
		}
		input = prepared
	}

	submitting, err := s.repo.Update(ctx, id, func(v viewstate.View[In, Out]) (viewstate.View[In, Out], error) {
		return v.Submit(input, s.now())
	})
	if err != nil {
		return submitting, nil, err
	}

	task := viewstate.Run(ctx, s.runner, s.flow.Delay, func() viewstate.View[In, Out] {
		return s.resolve(submitting, input)
	})
	return submitting, task, nil
}

func (s *ViewService[In, Out]) resolve(submitting viewstate.View[In, Out], input In) viewstate.View[In, Out] {
	out := s.flow.Compute(input)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resolved, err := s.repo.Update(ctx, submitting.ID, func(v viewstate.View[In, Out]) (viewstate.View[In, Out], error) {
		return v.Resolve(out, s.now())
	})
	if err != nil {
		// The stored view expired or the store is unreachable; the caller still gets its result.
		slog.Warn("failed to store resolved view", "page", s.flow.Page, "view_id", submitting.ID, "error", err)
		resolved, _ = submitting.Resolve(out, s.now())
	}

	metrics.ViewsResolved.WithLabelValues(s.flow.Page).Inc()
	s.publish(ctx, resolved)
	return resolved
}

func (s *ViewService[In, Out]) publish(ctx context.Context, view viewstate.View[In, Out]) {
	evt := event.AnalysisEvent{
		EventID:    uuid.NewString(),
		Page:       view.Page,
		ViewID:     view.ID,
		OccurredAt: s.now(),
	}
	if s.flow.Summarize != nil && view.Result != nil {
		evt.Summary = s.flow.Summarize(*view.Result)
	}
	if err := s.publisher.PublishAnalysis(ctx, evt); err != nil {
		slog.Warn("failed to publish analysis event", "page", view.Page, "view_id", view.ID, "error", err)
	}
}
