package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter  EventType = "step_enter"
	EventStepLeave  EventType = "step_leave"
	EventRoute      EventType = "route"
	EventSessionEnd EventType = "session_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	StepID   string        `json:"step_id"`
	Duration time.Duration `json:"duration,omitempty"`
	Failed   bool          `json:"failed,omitempty"`
}

// RouteEvent represents a decision taken at a branch point.
type RouteEvent struct {
	EventBase
	From  string `json:"from"`
	Label string `json:"label,omitempty"`
	To    string `json:"to"`
}

// SessionEvent is emitted once when a session reaches a terminal status.
type SessionEvent struct {
	EventBase
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Errors   int           `json:"errors"`
	Retries  int           `json:"retries"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter  func(context.Context, *StepEvent)
	OnStepLeave  func(context.Context, *StepEvent)
	OnRoute      func(context.Context, *RouteEvent)
	OnSessionEnd func(context.Context, *SessionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:  chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:  chain(h.OnStepLeave, other.OnStepLeave),
		OnRoute:      chain(h.OnRoute, other.OnRoute),
		OnSessionEnd: chain(h.OnSessionEnd, other.OnSessionEnd),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
