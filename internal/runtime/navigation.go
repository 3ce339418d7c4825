package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
)

// resolveNext determines the step that follows.
// Priority: the error edge when the step failed, then the router, then the static edge.
func (e *Engine) resolveNext(ctx context.Context, step dsl.Step, s *domain.SessionState, failed bool) (string, error) {
	var label, to string

	switch {
	case failed && step.OnError != "":
		label, to = domain.RouteError, step.OnError
	case step.Router != nil:
		label = step.Router(s)
		edge, ok := step.Branch(label)
		if !ok {
			return "", fmt.Errorf("router of '%s' returned unknown label '%s'", step.ID, label)
		}
		if edge.Effect != nil {
			if err := edge.Effect(s); err != nil {
				return "", fmt.Errorf("edge '%s' of '%s': %w", label, step.ID, err)
			}
		}
		to = edge.To
	default:
		to = step.Next
	}

	if to == dsl.Resume {
		to = s.ResumeAt
		if to == "" {
			return "", fmt.Errorf("'%s' resumed without a recorded retry point", step.ID)
		}
	}

	target, ok := e.graph.Step(to)
	if !ok {
		return "", fmt.Errorf("'%s' leads to unknown step '%s'", step.ID, to)
	}
	if target.HasResume() {
		s.ResumeAt = step.RetryPoint()
	}

	e.emitRoute(ctx, s, step.ID, label, to)
	return to, nil
}

func (e *Engine) emitStepEnter(ctx context.Context, s *domain.SessionState, stepID string) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter, SessionID: s.ID},
		StepID:    stepID,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, s *domain.SessionState, stepID string, d time.Duration, failed bool) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepLeave, SessionID: s.ID},
		StepID:    stepID,
		Duration:  d,
		Failed:    failed,
	})
}

func (e *Engine) emitRoute(ctx context.Context, s *domain.SessionState, from, label, to string) {
	if e.hooks.OnRoute == nil {
		return
	}
	e.hooks.OnRoute(ctx, &domain.RouteEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRoute, SessionID: s.ID},
		From:      from,
		Label:     label,
		To:        to,
	})
}
