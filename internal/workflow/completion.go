package workflow

import (
	"context"
	"fmt"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// completeIntent asks for missing fields until all of them are known and
// returns the number of iterations performed. Silent replies make no
// progress; each non-empty reply is merged field by field, last write wins.
//
// The loop has no round limit. It stops when the context ends or when the
// extractor fails too many times in a row.
func (h *Handlers) completeIntent(ctx context.Context, s *domain.SessionState) int {
	rounds, failures := 0, 0

	for !s.Fields.Complete() {
		if ctx.Err() != nil {
			return rounds
		}
		rounds++
		s.CompletionRounds++

		reply := h.ask(ctx, s, missingPrompt(s.Fields.Missing()))
		if reply == "" {
			continue
		}

		ext, err := h.extractor.Extract(ctx, reply, s.Fields)
		if err != nil {
			failures++
			h.logger.Warn("field extraction failed", "session_id", s.ID, "consecutive", failures, "err", err)
			if failures >= h.cfg.MaxExtractionFailures {
				s.AddError(domain.NewFailure(domain.KindBackend, domain.StepCompleteIntent,
					fmt.Sprintf("field extraction failed %d times in a row", failures), err))
				return rounds
			}
			continue
		}
		failures = 0

		written, err := s.MergeFields(ext.Fields)
		if err != nil {
			return rounds
		}
		h.logger.Debug("merged correction", "session_id", s.ID, "fields", written)
	}
	return rounds
}
