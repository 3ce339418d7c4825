package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/runtime"
	"github.com/Myangsun/HiyaDrive/internal/testutils"
	"github.com/Myangsun/HiyaDrive/internal/workflow"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/stretchr/testify/require"
)

// harness wires fakes into the handlers and the engine.
type harness struct {
	extractor    *testutils.Extractor
	calendar     *testutils.Calendar
	searcher     *testutils.Searcher
	dialer       *testutils.Dialer
	conversation *testutils.Conversation
	speaker      *testutils.Speaker
	listener     *testutils.Listener
	writer       *testutils.Writer
	cfg          workflow.Config
	hooks        domain.LifecycleHooks
	maxRetries   int
	maxTurns     int
}

func newHarness() *harness {
	cfg := workflow.DefaultConfig()
	cfg.Verbosity = workflow.VerbositySilent
	return &harness{
		extractor: testutils.NewExtractor(map[string]domain.Extraction{
			testutils.FullRequest:    {Fields: testutils.FullFields()},
			testutils.PartialRequest: {Fields: testutils.PartialFields()},
			testutils.Downtown:       {Fields: domain.Fields{Location: domain.String("downtown")}},
		}),
		calendar:     &testutils.Calendar{},
		searcher:     &testutils.Searcher{Candidates: testutils.Candidates()},
		dialer:       &testutils.Dialer{},
		conversation: &testutils.Conversation{Results: []domain.ConversationResult{testutils.Confirmed("4892")}},
		speaker:      &testutils.Speaker{},
		listener:     &testutils.Listener{},
		cfg:          cfg,
		maxRetries:   domain.DefaultMaxRetries,
		maxTurns:     domain.DefaultMaxTurns,
	}
}

func (h *harness) handlers(t *testing.T) *workflow.Handlers {
	t.Helper()
	c := workflow.Collaborators{
		Extractor:    h.extractor,
		Calendar:     h.calendar,
		Searcher:     h.searcher,
		Dialer:       h.dialer,
		Conversation: h.conversation,
		Speaker:      h.speaker,
		Listener:     h.listener,
	}
	if h.writer != nil {
		c.Writer = h.writer
	}
	handlers, err := workflow.New(c, workflow.WithConfig(h.cfg))
	require.NoError(t, err)
	return handlers
}

func (h *harness) session(utterance string) *domain.SessionState {
	s := domain.NewSessionState("driver-1", utterance)
	s.Retry.Max = h.maxRetries
	s.MaxTurns = h.maxTurns
	return s
}

func (h *harness) run(t *testing.T, utterance string) *domain.SessionState {
	t.Helper()
	return h.runState(t, h.session(utterance))
}

func (h *harness) runState(t *testing.T, s *domain.SessionState) *domain.SessionState {
	t.Helper()
	graph, err := h.handlers(t).Graph()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return runtime.NewEngine(graph, runtime.WithLifecycleHooks(h.hooks)).Run(ctx, s)
}

func kinds(s *domain.SessionState) []domain.ErrorKind {
	out := make([]domain.ErrorKind, 0, len(s.Errors))
	for _, e := range s.Errors {
		out = append(out, e.Kind)
	}
	return out
}

func contains(path []string, step string) bool {
	for _, p := range path {
		if p == step {
			return true
		}
	}
	return false
}
