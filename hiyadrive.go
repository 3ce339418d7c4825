package hiyadrive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/logging"
	"github.com/Myangsun/HiyaDrive/internal/runtime"
	"github.com/Myangsun/HiyaDrive/internal/workflow"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/Myangsun/HiyaDrive/pkg/ports"
	"github.com/Myangsun/HiyaDrive/pkg/session"
	"go.opentelemetry.io/otel/trace"
)

// Collaborators groups the backends a session talks to.
type Collaborators = workflow.Collaborators

// Config tunes the step handlers.
type Config = workflow.Config

// DefaultConfig returns the standard handler tuning.
func DefaultConfig() Config { return workflow.DefaultConfig() }

// Agent is the high-level entry point for HiyaDrive.
// It wires the reservation workflow to the engine and serializes sessions per requester.
type Agent struct {
	engine   *runtime.Engine
	handlers *workflow.Handlers
	guard    *session.Guard

	cfg            Config
	notifier       ports.Notifier
	hooks          domain.LifecycleHooks
	tracer         trace.Tracer
	locker         ports.DistributedLocker
	logger         *slog.Logger
	sessionTimeout time.Duration
	maxRetries     int
	maxTurns       int
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithLogger sets a structured logger for the agent and its workflow.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithConfig replaces the handler tuning.
func WithConfig(cfg Config) Option {
	return func(a *Agent) {
		a.cfg = cfg
	}
}

// WithNotifier registers the notifier invoked once per finished session.
func WithNotifier(n ports.Notifier) Option {
	return func(a *Agent) {
		a.notifier = n
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = a.hooks.Merge(hooks)
	}
}

// WithTracer sets the tracer used for session and step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Agent) {
		a.tracer = tracer
	}
}

// WithLocker serializes sessions of the same requester across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *Agent) {
		a.locker = locker
	}
}

// WithSessionTimeout bounds the wall-clock duration of a session. Zero disables it.
func WithSessionTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.sessionTimeout = d
	}
}

// WithMaxRetries sets the workflow-level retry budget of new sessions.
func WithMaxRetries(n int) Option {
	return func(a *Agent) {
		a.maxRetries = n
	}
}

// WithMaxTurns sets the conversation turn budget of new sessions.
func WithMaxTurns(n int) Option {
	return func(a *Agent) {
		a.maxTurns = n
	}
}

// lockMargin is added to the session timeout to size the requester lock TTL.
const lockMargin = 30 * time.Second

// New builds an Agent around the given collaborators.
func New(c Collaborators, opts ...Option) (*Agent, error) {
	a := &Agent{
		cfg:        workflow.DefaultConfig(),
		maxRetries: domain.DefaultMaxRetries,
		maxTurns:   domain.DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.maxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", a.maxRetries)
	}
	if a.maxTurns < 1 {
		return nil, fmt.Errorf("max turns must be at least 1, got %d", a.maxTurns)
	}

	handlers, err := workflow.New(c, workflow.WithConfig(a.cfg), workflow.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	graph, err := handlers.Graph()
	if err != nil {
		return nil, fmt.Errorf("invalid workflow graph: %w", err)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(a.logger),
		runtime.WithLifecycleHooks(a.hooks),
	}
	if a.notifier != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithNotifier(a.notifier))
	}
	if a.tracer != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithTracer(a.tracer))
	}

	guardOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		guardOpts = append(guardOpts, session.WithLocker(a.locker))
	}
	if a.sessionTimeout > 0 {
		guardOpts = append(guardOpts, session.WithLockTTL(a.sessionTimeout+lockMargin))
	}

	a.handlers = handlers
	a.cfg = handlers.Config()
	a.engine = runtime.NewEngine(graph, runtimeOpts...)
	a.guard = session.NewGuard(guardOpts...)
	return a, nil
}

// NewSession creates an Active session carrying the agent's budgets.
func (a *Agent) NewSession(requesterID, utterance string) *domain.SessionState {
	s := domain.NewSessionState(requesterID, utterance)
	s.Retry.Max = a.maxRetries
	s.MaxTurns = a.maxTurns
	return s
}

// Execute drives one session to a terminal status. Failures are recorded on the state.
func (a *Agent) Execute(ctx context.Context, s *domain.SessionState) *domain.SessionState {
	if a.sessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.sessionTimeout)
		defer cancel()
	}
	return a.engine.Run(ctx, s)
}

// Run starts a session for the requester and executes it while holding the
// requester's lock. The error is only set when the lock could not be taken.
func (a *Agent) Run(ctx context.Context, requesterID, utterance string) (*domain.SessionState, error) {
	s := a.NewSession(requesterID, utterance)
	if err := a.RunSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// RunSession executes a session created by NewSession under its requester's lock.
func (a *Agent) RunSession(ctx context.Context, s *domain.SessionState) error {
	return a.guard.WithLock(ctx, s.RequesterID, func(ctx context.Context) error {
		a.Execute(ctx, s)
		return nil
	})
}

// Graph returns the workflow graph.
func (a *Agent) Graph() *dsl.Graph {
	return a.engine.Graph()
}

// Config returns the effective handler tuning.
func (a *Agent) Config() Config {
	return a.cfg
}
