package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/runtime"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/Myangsun/HiyaDrive/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pass(context.Context, *domain.SessionState) {}

func finish(status domain.Status) dsl.Handler {
	return func(_ context.Context, s *domain.SessionState) {
		if status == domain.StatusFailed && !s.HasErrors() {
			s.AddError(domain.NewFailure(domain.KindAbort, "stop", "gave up", nil))
		}
		_ = s.Finish(status)
	}
}

func fail(kind domain.ErrorKind) dsl.Handler {
	return func(_ context.Context, s *domain.SessionState) {
		s.AddError(domain.NewFailure(kind, "", "boom", nil))
	}
}

// countingNotifier records how many times it was called.
type countingNotifier struct {
	calls atomic.Int32
	last  domain.Status
}

func (n *countingNotifier) Notify(_ context.Context, s *domain.SessionState) error {
	n.calls.Add(1)
	n.last = s.Status
	return nil
}

func build(t *testing.T, define func(b *dsl.Builder)) *dsl.Graph {
	t.Helper()
	b := dsl.New()
	define(b)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestEngine_StaticPath(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("a", pass).Go("b")
		b.Add("b", pass).Go("done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := &countingNotifier{}
	engine := runtime.NewEngine(g, runtime.WithNotifier(n))

	s := engine.Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusCompleted, s.Status)
	assert.Equal(t, []string{"a", "b", "done"}, s.Path)
	assert.EqualValues(t, 1, n.calls.Load())
	assert.Equal(t, domain.StatusCompleted, n.last)
	assert.False(t, s.EndedAt.IsZero())
}

func TestEngine_ErrorEdgeOnlyWhenStepFailed(t *testing.T) {
	calls := 0
	flaky := func(_ context.Context, s *domain.SessionState) {
		calls++
		if calls == 1 {
			s.AddError(domain.NewFailure(domain.KindBackend, "flaky", "down", nil))
		}
	}

	g := build(t, func(b *dsl.Builder) {
		b.Add("flaky", flaky).OnError("recover").Go("done")
		b.Add("recover", pass).
			Route(func(s *domain.SessionState) string {
				if s.Retry.CanRetry() {
					return domain.RouteRetry
				}
				return domain.RouteAbandon
			}).
			BranchWith(domain.RouteRetry, dsl.Resume, func(s *domain.SessionState) error { return s.Retry.Increment() }).
			Branch(domain.RouteAbandon, "stop")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
		b.Add("stop", finish(domain.StatusFailed)).Terminal()
	})

	s := runtime.NewEngine(g).Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusCompleted, s.Status)
	assert.Equal(t, []string{"flaky", "recover", "flaky", "done"}, s.Path)
	assert.Equal(t, 1, s.Retry.Count)
	assert.Len(t, s.Errors, 1, "errors are append-only and survive a successful retry")
}

func TestEngine_ResumeUsesRetryPointOfFailedStep(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("dial", pass).Go("talk")
		b.Add("talk", fail(domain.KindBackend)).RetryAt("dial").OnError("recover").Go("done")
		b.Add("recover", pass).
			Route(func(s *domain.SessionState) string {
				if s.Retry.CanRetry() {
					return domain.RouteRetry
				}
				return domain.RouteAbandon
			}).
			BranchWith(domain.RouteRetry, dsl.Resume, func(s *domain.SessionState) error { return s.Retry.Increment() }).
			Branch(domain.RouteAbandon, "stop")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
		b.Add("stop", finish(domain.StatusFailed)).Terminal()
	})

	state := domain.NewSessionState("r", "u")
	state.Retry.Max = 2
	s := runtime.NewEngine(g).Run(context.Background(), state)

	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Equal(t, []string{
		"dial", "talk", "recover",
		"dial", "talk", "recover",
		"dial", "talk", "recover",
		"stop",
	}, s.Path)
	assert.Equal(t, 2, s.Retry.Count)
	assert.LessOrEqual(t, s.Retry.Count, s.Retry.Max)
}

func TestEngine_StepPanicBecomesFailure(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("boom", func(context.Context, *domain.SessionState) { panic("kaboom") }).
			OnError("stop").
			Go("done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
		b.Add("stop", finish(domain.StatusFailed)).Terminal()
	})

	s := runtime.NewEngine(g).Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusFailed, s.Status)
	require.NotEmpty(t, s.Errors)
	assert.Equal(t, domain.KindInternal, s.Errors[0].Kind)
	assert.Contains(t, s.Errors[0].Message, "kaboom")
}

func TestEngine_RouterPanicStillNotifiesOnce(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("a", pass).
			Route(func(*domain.SessionState) string { panic("bad router") }).
			Branch("x", "done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := &countingNotifier{}

	var s *domain.SessionState
	require.NotPanics(t, func() {
		s = runtime.NewEngine(g, runtime.WithNotifier(n)).Run(context.Background(), domain.NewSessionState("r", "u"))
	})

	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.NotEmpty(t, s.Errors)
	assert.EqualValues(t, 1, n.calls.Load())
}

func TestEngine_NotifierPanicIsContained(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	var calls int
	n := ports.NotifierFunc(func(context.Context, *domain.SessionState) error {
		calls++
		panic("speaker unplugged")
	})

	var s *domain.SessionState
	require.NotPanics(t, func() {
		s = runtime.NewEngine(g, runtime.WithNotifier(n)).Run(context.Background(), domain.NewSessionState("r", "u"))
	})
	assert.Equal(t, domain.StatusCompleted, s.Status)
	assert.Equal(t, 1, calls)
}

func TestEngine_SessionEndHookPanicIsContained(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	hooks := domain.LifecycleHooks{
		OnSessionEnd: func(context.Context, *domain.SessionEvent) { panic("boom") },
	}
	n := &countingNotifier{}

	var s *domain.SessionState
	require.NotPanics(t, func() {
		s = runtime.NewEngine(g, runtime.WithLifecycleHooks(hooks), runtime.WithNotifier(n)).
			Run(context.Background(), domain.NewSessionState("r", "u"))
	})
	assert.Equal(t, domain.StatusCompleted, s.Status)
	assert.Equal(t, int32(1), n.calls.Load())
	assert.Equal(t, domain.StatusCompleted, n.last)
}

func TestEngine_FinishedSessionIsNotNotifiedAgain(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := &countingNotifier{}
	var ended int
	hooks := domain.LifecycleHooks{
		OnSessionEnd: func(context.Context, *domain.SessionEvent) { ended++ },
	}
	e := runtime.NewEngine(g, runtime.WithLifecycleHooks(hooks), runtime.WithNotifier(n))

	s := e.Run(context.Background(), domain.NewSessionState("r", "u"))
	require.Equal(t, domain.StatusCompleted, s.Status)
	path := len(s.Path)

	again := e.Run(context.Background(), s)
	assert.Same(t, s, again)
	assert.Len(t, again.Path, path)
	assert.Equal(t, int32(1), n.calls.Load())
	assert.Equal(t, 1, ended)
}

func TestEngine_NotifierErrorIsIgnored(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := ports.NotifierFunc(func(context.Context, *domain.SessionState) error { return errors.New("redis down") })

	s := runtime.NewEngine(g, runtime.WithNotifier(n)).Run(context.Background(), domain.NewSessionState("r", "u"))
	assert.Equal(t, domain.StatusCompleted, s.Status)
}

func TestEngine_StepLimit(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("a", pass).Go("b")
		b.Add("b", pass).
			Route(func(*domain.SessionState) string { return "loop" }).
			Branch("loop", "a").
			Branch("out", "done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := &countingNotifier{}

	s := runtime.NewEngine(g, runtime.WithMaxSteps(10), runtime.WithNotifier(n)).Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Len(t, s.Path, 10)
	assert.Equal(t, domain.KindAbort, s.LastError().Kind)
	assert.EqualValues(t, 1, n.calls.Load())
}

func TestEngine_DeadlineEndsInTimeout(t *testing.T) {
	slow := func(ctx context.Context, _ *domain.SessionState) {
		<-ctx.Done()
	}
	g := build(t, func(b *dsl.Builder) {
		b.Add("slow", slow).Go("done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := &countingNotifier{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s := runtime.NewEngine(g, runtime.WithNotifier(n)).Run(ctx, domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusTimeout, s.Status)
	assert.Equal(t, domain.KindTimeout, s.LastError().Kind)
	assert.EqualValues(t, 1, n.calls.Load())
	assert.Equal(t, domain.StatusTimeout, n.last)
}

func TestEngine_CancelEndsInCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := func(context.Context, *domain.SessionState) { cancel() }
	g := build(t, func(b *dsl.Builder) {
		b.Add("stop", stop).Go("done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})

	s := runtime.NewEngine(g).Run(ctx, domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusCancelled, s.Status)
	assert.Equal(t, []string{"stop"}, s.Path)
}

func TestEngine_CancelRecordsCause(t *testing.T) {
	shutdown := fmt.Errorf("operator shutdown: %w", context.Canceled)
	ctx, cancel := context.WithCancelCause(context.Background())
	stop := func(context.Context, *domain.SessionState) { cancel(shutdown) }
	g := build(t, func(b *dsl.Builder) {
		b.Add("stop", stop).Go("done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})

	s := runtime.NewEngine(g).Run(ctx, domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusCancelled, s.Status)
	require.NotNil(t, s.LastError())
	assert.Equal(t, domain.KindCancelled, s.LastError().Kind)
	assert.ErrorIs(t, s.LastError(), shutdown)
}

func TestEngine_UnknownLabelFails(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("a", pass).
			Route(func(*domain.SessionState) string { return "nope" }).
			Branch("yes", "done")
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})

	s := runtime.NewEngine(g).Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Contains(t, s.LastError().Error(), "unknown label 'nope'")
}

func TestEngine_TerminalWithoutStatusFails(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("done", pass).Terminal()
	})

	s := runtime.NewEngine(g).Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Equal(t, domain.KindInternal, s.LastError().Kind)
}

func TestEngine_FinishedSessionIsNotRerun(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("done", finish(domain.StatusCompleted)).Terminal()
	})
	n := &countingNotifier{}
	state := domain.NewSessionState("r", "u")
	require.NoError(t, state.Finish(domain.StatusCancelled))

	s := runtime.NewEngine(g, runtime.WithNotifier(n)).Run(context.Background(), state)

	assert.Equal(t, domain.StatusCancelled, s.Status)
	assert.Empty(t, s.Path)
	assert.EqualValues(t, 0, n.calls.Load())
}

func TestEngine_LifecycleHooks(t *testing.T) {
	g := build(t, func(b *dsl.Builder) {
		b.Add("a", fail(domain.KindBackend)).OnError("done").Go("done")
		b.Add("done", finish(domain.StatusFailed)).Terminal()
	})

	var entered, left, routes []string
	var failedLeaves int
	var ended []domain.Status
	hooks := domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) { entered = append(entered, e.StepID) },
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			left = append(left, e.StepID)
			if e.Failed {
				failedLeaves++
			}
		},
		OnRoute:      func(_ context.Context, e *domain.RouteEvent) { routes = append(routes, e.From+"-"+e.Label+"->"+e.To) },
		OnSessionEnd: func(_ context.Context, e *domain.SessionEvent) { ended = append(ended, e.Status) },
	}

	runtime.NewEngine(g, runtime.WithLifecycleHooks(hooks)).Run(context.Background(), domain.NewSessionState("r", "u"))

	assert.Equal(t, []string{"a", "done"}, entered)
	assert.Equal(t, []string{"a", "done"}, left)
	assert.Equal(t, 1, failedLeaves)
	assert.Equal(t, []string{"a-error->done"}, routes)
	assert.Equal(t, []domain.Status{domain.StatusFailed}, ended)
}
