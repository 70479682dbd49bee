// Package viewstate models the idle → submitting → result lifecycle shared by the interactive pages.
//
// A View is an immutable value: every transition returns a new View and leaves the receiver untouched,
// so a render step can be handed a View without worrying about it changing underneath.
package viewstate

import (
	"errors"
	"time"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseResult     Phase = "result"
)

var (
	ErrAlreadySubmitting = errors.New("view is already submitting")
	ErrNotSubmitting     = errors.New("view is not submitting")
)

type View[In any, Out any] struct {
	ID          string     `json:"id"`
	Page        string     `json:"page"`
	Phase       Phase      `json:"phase"`
	Input       *In        `json:"input,omitempty"`
	Result      *Out       `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func New[In any, Out any](page, id string, now time.Time) View[In, Out] {
	return View[In, Out]{
		ID:        id,
		Page:      page,
		Phase:     PhaseIdle,
		CreatedAt: now,
	}
}

// Submit moves the view to submitting. Submitting again from result discards the previous result.
func (v View[In, Out]) Submit(input In, now time.Time) (View[In, Out], error) {
	if v.Phase == PhaseSubmitting {
		return v, ErrAlreadySubmitting
	}
	next := v
	next.Phase = PhaseSubmitting
	next.Input = &input
	next.Result = nil
	next.SubmittedAt = &now
	next.CompletedAt = nil
	return next, nil
}

func (v View[In, Out]) Resolve(result Out, now time.Time) (View[In, Out], error) {
	if v.Phase != PhaseSubmitting {
		return v, ErrNotSubmitting
	}
	next := v
	next.Phase = PhaseResult
	next.Result = &result
	next.CompletedAt = &now
	return next, nil
}

func (v View[In, Out]) IsSubmitting() bool {
	return v.Phase == PhaseSubmitting
}
