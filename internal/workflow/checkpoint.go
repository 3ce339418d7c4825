package workflow

import (
	"context"
	"fmt"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// confirmDetails asks the requester to confirm the request in interactive mode.
// A refusal marks the session declined; corrections are merged and confirmed again.
// Silence counts as consent.
func (h *Handlers) confirmDetails(ctx context.Context, s *domain.SessionState) {
	if h.cfg.Verbosity < VerbosityInteractive {
		return
	}
	for round := 0; round < h.cfg.CheckpointRounds; round++ {
		reply := h.ask(ctx, s, fmt.Sprintf("I have %s. Is that correct? Please say yes or no.", s.Fields.Summary()))
		if reply == "" {
			return
		}
		ext := h.interpret(ctx, s, reply)
		if changes := s.Fields.Changes(ext.Fields); !changes.Empty() {
			if _, err := s.MergeFields(changes); err != nil {
				return
			}
			continue
		}
		if ext.Declined() {
			_ = s.SetDeclined()
		}
		return
	}
}

// confirmCall asks before dialling in interactive mode.
func (h *Handlers) confirmCall(ctx context.Context, s *domain.SessionState, name string) bool {
	if h.cfg.Verbosity < VerbosityInteractive {
		return true
	}
	reply := h.ask(ctx, s, fmt.Sprintf("Should I call %s now? Please say yes or no.", name))
	if reply == "" {
		return true
	}
	if h.interpret(ctx, s, reply).Declined() {
		_ = s.SetDeclined()
		return false
	}
	return true
}

// interpret runs a checkpoint reply through the extractor. When the
// extractor cannot tell, a plain "no" in the reply is a refusal.
func (h *Handlers) interpret(ctx context.Context, s *domain.SessionState, reply string) domain.Extraction {
	ext, err := h.extractor.Extract(ctx, reply, s.Fields)
	if err != nil {
		h.logger.Warn("could not interpret confirmation", "session_id", s.ID, "err", err)
		ext = domain.Extraction{}
	}
	if ext.Confirmed == nil && saysNo(reply) {
		ext.Confirmed = domain.Bool(false)
	}
	return ext
}
