package workflow

import (
	"context"
	"fmt"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// negotiateAvailability runs the bounded availability negotiation for the
// requested slot and reports whether a free slot was found.
//
// Every iteration is one negotiation attempt: the counter is incremented
// before the check, and a silent reply or an extraction failure still uses the
// attempt up. Those two outcomes are also counted separately on the state.
func (h *Handlers) negotiateAvailability(ctx context.Context, s *domain.SessionState) bool {
	maxAttempts := h.cfg.MaxAttempts
	attempts := 0

	for attempts < maxAttempts {
		attempts++
		s.Negotiation.Attempts++

		date, clock := domain.Deref(s.Fields.Date), domain.Deref(s.Fields.Time)
		free, err := h.calendar.IsAvailable(ctx, date, clock)
		if err != nil {
			s.AddError(domain.NewFailure(domain.KindBackend, domain.StepCheckAvailability, "availability check failed", err))
			return false
		}
		if free {
			_ = s.SetAvailable(true)
			h.logger.Debug("slot is free", "session_id", s.ID, "date", date, "time", clock, "attempt", attempts)
			h.narrate(ctx, s, fmt.Sprintf("You're free on %s at %s.", date, clock))
			return true
		}

		h.logger.Info("slot is busy", "session_id", s.ID, "date", date, "time", clock, "attempt", attempts)
		if attempts == maxAttempts {
			break
		}

		reply := h.ask(ctx, s, fmt.Sprintf("You have a conflict on %s at %s. What other time works for you?", date, clock))
		if reply == "" {
			s.Negotiation.SilentReplies++
			continue
		}

		ext, err := h.extractor.Extract(ctx, reply, s.Fields)
		if err != nil {
			s.Negotiation.ExtractionFailures++
			h.logger.Warn("could not understand alternative time", "session_id", s.ID, "err", err)
			continue
		}
		if _, err := s.MergeFields(domain.Fields{Date: ext.Date, Time: ext.Time}); err != nil {
			return false
		}
	}

	s.AddError(domain.NewFailure(domain.KindExhausted, domain.StepCheckAvailability,
		fmt.Sprintf("no free slot after %d attempts", attempts), nil))
	return false
}
