package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/logging"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/Myangsun/HiyaDrive/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxSteps caps step visits per session.
	DefaultMaxSteps = 256
	// DefaultNotifyTimeout bounds the end-of-session notification.
	DefaultNotifyTimeout = 10 * time.Second

	tracerName = "github.com/Myangsun/HiyaDrive/internal/runtime"
)

// Engine is the workflow executor.
type Engine struct {
	graph         *dsl.Graph
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	tracer        trace.Tracer
	notifier      ports.Notifier
	maxSteps      int
	notifyTimeout time.Duration
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithTracer overrides the tracer used for session and step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithNotifier sets the end-of-session notifier.
func WithNotifier(n ports.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithMaxSteps caps the number of step visits per session.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithNotifyTimeout bounds the end-of-session notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.notifyTimeout = d
		}
	}
}

// NewEngine creates an engine for a validated graph.
func NewEngine(graph *dsl.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:         graph,
		logger:        logging.NewNop(),
		tracer:        otel.Tracer(tracerName),
		maxSteps:      DefaultMaxSteps,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine executes.
func (e *Engine) Graph() *dsl.Graph {
	return e.graph
}

// Run executes one session to a terminal status and returns the same state.
// It never returns an error: every failure is recorded on the state.
//
// A session that is already terminal is returned untouched. Its notifier and
// OnSessionEnd hook already ran when it finished, so they are not called again.
func (e *Engine) Run(ctx context.Context, s *domain.SessionState) *domain.SessionState {
	if s.Terminal() {
		e.logger.Warn("session already finished", "session_id", s.ID, "status", s.Status)
		return s
	}

	began := time.Now()
	logger := e.logger.With("session_id", s.ID, "requester_id", s.RequesterID)
	ctx, span := e.tracer.Start(ctx, "session.run", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("session.requester", s.RequesterID),
	))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("session aborted by unexpected failure", "panic", r)
			s.AddError(domain.NewFailure(domain.KindInternal, "", fmt.Sprintf("unexpected failure: %v", r), nil))
		}
		if !s.Terminal() {
			if !s.HasErrors() {
				s.AddError(domain.NewFailure(domain.KindInternal, "", "workflow ended without a terminal status", nil))
			}
			_ = s.Finish(domain.StatusFailed)
		}
		span.SetAttributes(attribute.String("session.status", string(s.Status)))
		if s.Status != domain.StatusCompleted && s.Status != domain.StatusCancelled {
			span.SetStatus(codes.Error, string(s.Status))
		}
		span.End()
		e.notify(ctx, s, began, logger)
	}()

	logger.Info("session started")
	current := e.graph.Start()
	for visits := 0; ; visits++ {
		if visits >= e.maxSteps {
			s.AddError(domain.NewFailure(domain.KindAbort, current, fmt.Sprintf("step limit of %d reached", e.maxSteps), nil))
			_ = s.Finish(domain.StatusFailed)
			return s
		}
		if err := ctx.Err(); err != nil {
			e.interrupt(s, current, context.Cause(ctx))
			return s
		}

		step, ok := e.graph.Step(current)
		if !ok {
			s.AddError(domain.NewFailure(domain.KindInternal, current, "step is not defined", nil))
			_ = s.Finish(domain.StatusFailed)
			return s
		}

		failed := e.execute(ctx, step, s, logger)
		if step.Terminal {
			if !s.Terminal() {
				s.AddError(domain.NewFailure(domain.KindInternal, step.ID, "terminal step did not set a final status", nil))
				_ = s.Finish(domain.StatusFailed)
			}
			return s
		}

		next, err := e.resolveNext(ctx, step, s, failed)
		if err != nil {
			logger.Error("routing failed", "step", step.ID, "err", err)
			s.AddError(domain.NewFailure(domain.KindInternal, step.ID, "routing failed", err))
			_ = s.Finish(domain.StatusFailed)
			return s
		}
		current = next
	}
}

// execute runs one handler and reports whether it recorded failures.
func (e *Engine) execute(ctx context.Context, step dsl.Step, s *domain.SessionState, logger *slog.Logger) bool {
	before := len(s.Errors)
	s.Path = append(s.Path, step.ID)

	ctx, span := e.tracer.Start(ctx, "step."+step.ID, trace.WithAttributes(attribute.String("step.id", step.ID)))
	defer span.End()

	e.emitStepEnter(ctx, s, step.ID)
	began := time.Now()

	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("step panicked", "step", step.ID, "panic", r)
				s.AddError(domain.NewFailure(domain.KindInternal, step.ID, fmt.Sprintf("step panicked: %v", r), nil))
			}
		}()
		step.Handler(ctx, s)
	}()

	failed := len(s.Errors) > before
	if failed {
		last := s.LastError()
		span.SetStatus(codes.Error, last.Error())
		logger.Warn("step recorded failure", "step", step.ID, "kind", last.Kind, "err", last.Message)
	} else {
		logger.Debug("step completed", "step", step.ID)
	}
	e.emitStepLeave(ctx, s, step.ID, time.Since(began), failed)
	return failed
}

// interrupt ends a session whose context is done.
func (e *Engine) interrupt(s *domain.SessionState, step string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		s.AddError(domain.NewFailure(domain.KindTimeout, step, "session deadline exceeded", err))
		_ = s.Finish(domain.StatusTimeout)
		return
	}
	s.AddError(domain.NewFailure(domain.KindCancelled, step, "session cancelled", err))
	_ = s.Finish(domain.StatusCancelled)
}

// emitSessionEnd calls the OnSessionEnd hook. A panicking hook is logged so the notifier still runs.
func (e *Engine) emitSessionEnd(ctx context.Context, s *domain.SessionState, duration time.Duration, logger *slog.Logger) {
	if e.hooks.OnSessionEnd == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session end hook panicked", "panic", r)
		}
	}()
	e.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSessionEnd, SessionID: s.ID},
		Status:    s.Status,
		Duration:  duration,
		Errors:    len(s.Errors),
		Retries:   s.Retry.Count,
	})
}

// notify runs the end-of-session callbacks. It is called exactly once per Run.
func (e *Engine) notify(ctx context.Context, s *domain.SessionState, began time.Time, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.notifyTimeout)
	defer cancel()

	duration := time.Since(began)
	logger.Info("session finished",
		"status", s.Status,
		"steps", len(s.Path),
		"errors", len(s.Errors),
		"retries", s.Retry.Count,
		"turns", s.TurnCount,
		"duration", duration,
	)

	e.emitSessionEnd(ctx, s, duration, logger)

	if e.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notifier panicked", "panic", r)
		}
	}()
	if err := e.notifier.Notify(ctx, s); err != nil {
		logger.Warn("end-of-session notification failed", "err", err)
	}
}
