package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/ports"
)

// Multi calls every notifier in order and joins their errors.
type Multi []ports.Notifier

// Notify implements ports.Notifier.
func (m Multi) Notify(ctx context.Context, s *domain.SessionState) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Speech speaks the outcome to the requester.
type Speech struct {
	speaker ports.Speaker
}

// NewSpeech creates a spoken-summary notifier.
func NewSpeech(speaker ports.Speaker) *Speech {
	return &Speech{speaker: speaker}
}

// Notify implements ports.Notifier.
func (n *Speech) Notify(ctx context.Context, s *domain.SessionState) error {
	return n.speaker.Speak(ctx, Sentence(s))
}

// Log writes the outcome as one structured record.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Notify implements ports.Notifier.
func (n *Log) Notify(ctx context.Context, s *domain.SessionState) error {
	o := Summarize(s)
	level := slog.LevelInfo
	if o.Status != domain.StatusCompleted {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "session outcome",
		"session_id", o.SessionID,
		"requester_id", o.RequesterID,
		"status", o.Status,
		"candidate", o.Candidate,
		"confirmation", o.ConfirmationToken,
		"retries", o.Retries,
		"turns", o.Turns,
		"errors", len(o.Errors),
	)
	return nil
}
