// Package testutils provides scriptable fakes for the workflow ports.
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// Extractor returns canned extractions keyed by utterance.
type Extractor struct {
	mu        sync.Mutex
	Responses map[string]domain.Extraction
	Errors    map[string]error
	// Err, when set, fails every call.
	Err   error
	Calls []string
}

// NewExtractor creates an Extractor with the given responses.
func NewExtractor(responses map[string]domain.Extraction) *Extractor {
	return &Extractor{Responses: responses, Errors: map[string]error{}}
}

func (e *Extractor) Extract(_ context.Context, text string, _ domain.Fields) (domain.Extraction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, text)
	if e.Err != nil {
		return domain.Extraction{}, e.Err
	}
	if err, ok := e.Errors[text]; ok {
		return domain.Extraction{}, err
	}
	return e.Responses[text], nil
}

// Calendar answers availability checks from a sequence; the last answer repeats.
type Calendar struct {
	mu      sync.Mutex
	Answers []bool
	Err     error
	Checked []string
}

func (c *Calendar) IsAvailable(_ context.Context, date, clock string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Checked = append(c.Checked, date+" "+clock)
	if c.Err != nil {
		return false, c.Err
	}
	if len(c.Answers) == 0 {
		return true, nil
	}
	i := len(c.Checked) - 1
	if i >= len(c.Answers) {
		i = len(c.Answers) - 1
	}
	return c.Answers[i], nil
}

// Calls returns how many checks were made.
func (c *Calendar) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Checked)
}

// Searcher returns a fixed candidate list, or fails with Errs in order.
type Searcher struct {
	mu         sync.Mutex
	Candidates []domain.Candidate
	Errs       []error
	Calls      int
}

func (s *Searcher) Search(_ context.Context, _, _ string) ([]domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Calls <= len(s.Errs) && s.Errs[s.Calls-1] != nil {
		return nil, s.Errs[s.Calls-1]
	}
	return append([]domain.Candidate(nil), s.Candidates...), nil
}

// Dialer returns Handle, or fails with Errs in order.
type Dialer struct {
	mu     sync.Mutex
	Handle string
	Errs   []error
	Dialed []string
}

func (d *Dialer) Dial(_ context.Context, contact, _ string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Dialed = append(d.Dialed, contact)
	if n := len(d.Dialed); n <= len(d.Errs) && d.Errs[n-1] != nil {
		return "", d.Errs[n-1]
	}
	if d.Handle == "" {
		return "handle-1", nil
	}
	return d.Handle, nil
}

// Conversation returns Results in order; the last result repeats.
type Conversation struct {
	mu      sync.Mutex
	Results []domain.ConversationResult
	Errs    []error
	Briefs  []domain.Brief
}

func (c *Conversation) Converse(_ context.Context, _ string, brief domain.Brief) (domain.ConversationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Briefs = append(c.Briefs, brief)
	n := len(c.Briefs)
	if n <= len(c.Errs) && c.Errs[n-1] != nil {
		return domain.ConversationResult{}, c.Errs[n-1]
	}
	if len(c.Results) == 0 {
		return domain.ConversationResult{}, nil
	}
	if n > len(c.Results) {
		n = len(c.Results)
	}
	return c.Results[n-1], nil
}

// Calls returns how many conversations took place.
func (c *Conversation) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Briefs)
}

// Speaker records what was said.
type Speaker struct {
	mu     sync.Mutex
	Spoken []string
}

func (s *Speaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Spoken = append(s.Spoken, text)
	return nil
}

// Listener replays Replies in order. Once they run out it behaves like a
// silent microphone and waits for the context to end.
type Listener struct {
	mu      sync.Mutex
	Replies []string
	Heard   int
}

func (l *Listener) Listen(ctx context.Context, _ time.Duration) (string, error) {
	l.mu.Lock()
	if l.Heard < len(l.Replies) {
		reply := l.Replies[l.Heard]
		l.Heard++
		l.mu.Unlock()
		return reply, nil
	}
	l.mu.Unlock()
	<-ctx.Done()
	return "", ctx.Err()
}

// Writer returns a fixed script or error.
type Writer struct {
	Script string
	Err    error
}

func (w *Writer) Write(context.Context, domain.Brief) (string, error) {
	return w.Script, w.Err
}
