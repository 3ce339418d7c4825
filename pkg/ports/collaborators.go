package ports

import (
	"context"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// FieldExtractor turns an utterance into a partial update.
// Only fields present in the returned Extraction indicate a correction.
type FieldExtractor interface {
	Extract(ctx context.Context, text string, current domain.Fields) (domain.Extraction, error)
}

// AvailabilityChecker reports whether the requester is free at the given slot.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, date, clock string) (bool, error)
}

// CandidateSearcher finds providers. An empty result is valid and not an error.
type CandidateSearcher interface {
	Search(ctx context.Context, category, location string) ([]domain.Candidate, error)
}

// ContactDialer places an outbound contact and returns its handle.
type ContactDialer interface {
	Dial(ctx context.Context, contact, script string) (string, error)
}

// ConversationDriver negotiates over a connected contact.
type ConversationDriver interface {
	Converse(ctx context.Context, handle string, brief domain.Brief) (domain.ConversationResult, error)
}

// ScriptWriter drafts the opening line spoken to the provider.
type ScriptWriter interface {
	Write(ctx context.Context, brief domain.Brief) (string, error)
}

// Speaker plays text to the requester and returns when playback is complete.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener captures one utterance. An empty string means silence or timeout.
type Listener interface {
	Listen(ctx context.Context, maxDuration time.Duration) (string, error)
}

// Notifier receives the final state of a session.
type Notifier interface {
	Notify(ctx context.Context, state *domain.SessionState) error
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(ctx context.Context, state *domain.SessionState) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, state *domain.SessionState) error {
	return f(ctx, state)
}
