package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/input"
)

// ParseIntent extracts the requested fields from the initial utterance.
func (h *Handlers) ParseIntent(ctx context.Context, s *domain.SessionState) {
	text, err := input.Sanitize(s.Utterance)
	if err != nil {
		h.logger.Warn("initial utterance unusable, asking again", "session_id", s.ID, "err", err)
		text = ""
	}
	if text == "" {
		return
	}
	s.Say(domain.SpeakerUser, text)

	ext, err := h.extractor.Extract(ctx, text, s.Fields)
	if err != nil {
		s.AddError(domain.NewFailure(domain.KindBackend, domain.StepParseIntent, "field extraction failed", err))
		return
	}
	if _, err := s.MergeFields(ext.Fields); err != nil {
		return
	}

	if s.Fields.Complete() {
		h.narrate(ctx, s, fmt.Sprintf("Got it: %s.", s.Fields.Summary()))
		h.confirmDetails(ctx, s)
	}
}

// CompleteIntent runs the intent completion loop, then confirms the details.
func (h *Handlers) CompleteIntent(ctx context.Context, s *domain.SessionState) {
	before := len(s.Errors)
	rounds := h.completeIntent(ctx, s)
	h.logger.Info("intent completion finished", "session_id", s.ID, "rounds", rounds, "complete", s.Fields.Complete())

	if len(s.Errors) > before || !s.Fields.Complete() {
		return
	}
	h.narrate(ctx, s, fmt.Sprintf("Thanks. So that's %s.", s.Fields.Summary()))
	h.confirmDetails(ctx, s)
}

// CheckAvailability negotiates a slot free in the requester's calendar.
func (h *Handlers) CheckAvailability(ctx context.Context, s *domain.SessionState) {
	if s.Fields.Date == nil || s.Fields.Time == nil {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepCheckAvailability, "date and time are required", nil))
		return
	}
	h.narrate(ctx, s, fmt.Sprintf("Checking your calendar for %s at %s.", *s.Fields.Date, *s.Fields.Time))
	h.negotiateAvailability(ctx, s)
}

// SearchCandidates looks up providers for the requested category and location.
func (h *Handlers) SearchCandidates(ctx context.Context, s *domain.SessionState) {
	if err := s.SetCandidates(nil); err != nil {
		return
	}
	category, location := domain.Deref(s.Fields.Category), domain.Deref(s.Fields.Location)
	h.narrate(ctx, s, fmt.Sprintf("Searching for %s restaurants near %s.", category, location))

	found, err := h.searcher.Search(ctx, category, location)
	if err != nil {
		s.AddError(domain.NewFailure(domain.KindBackend, domain.StepSearchCandidates, "candidate search failed", err))
		return
	}
	if len(found) == 0 {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepSearchCandidates,
			fmt.Sprintf("no candidates found for %s near %s", category, location), nil))
		return
	}
	_ = s.SetCandidates(found)
	h.logger.Info("candidates found", "session_id", s.ID, "count", len(found))
}

// SelectCandidate chooses one of the top reachable candidates that was not contacted yet.
func (h *Handlers) SelectCandidate(ctx context.Context, s *domain.SessionState) {
	var pool []domain.Candidate
	for _, c := range s.Candidates {
		if c.Contact != "" && !s.WasTried(c.Contact) {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		msg := "no candidates to select"
		if len(s.Candidates) > 0 {
			msg = "every candidate was already contacted"
		}
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepSelectCandidate, msg, domain.ErrNoCandidates))
		return
	}

	top := TopCandidates(pool, h.cfg.TopN)
	if h.cfg.Verbosity >= VerbosityNarrated {
		lines := []string{fmt.Sprintf("I found %d options.", len(top))}
		for i, c := range top {
			lines = append(lines, describeOption(i+1, c))
		}
		h.narrate(ctx, s, strings.Join(lines, " "))
	}

	index := s.ChosenIndex
	s.ChosenIndex = 0
	if index == 0 && h.cfg.Verbosity >= VerbosityInteractive && len(top) > 1 {
		reply := h.ask(ctx, s, "Which option would you like? Say a number, or nothing and I'll pick the best rated.")
		index = ParseChoice(reply)
	}

	chosen, err := SelectCandidate(pool, index, h.cfg.TopN)
	if errors.Is(err, domain.ErrIndexOutOfRange) {
		h.logger.Warn("ignoring invalid option", "session_id", s.ID, "err", err)
		chosen, err = SelectCandidate(pool, 0, h.cfg.TopN)
	}
	if err != nil {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepSelectCandidate, "selection failed", err))
		return
	}
	_ = s.Select(chosen)
	h.narrate(ctx, s, fmt.Sprintf("I'll go with %s.", chosen.Name))
}

// PrepareScript drafts the opening line for the provider.
func (h *Handlers) PrepareScript(ctx context.Context, s *domain.SessionState) {
	if s.Selected == nil {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepPrepareScript, "no candidate selected", nil))
		return
	}

	script := ""
	if h.writer != nil {
		written, err := h.writer.Write(ctx, s.Brief())
		if err != nil {
			h.logger.Warn("script writer failed, using template", "session_id", s.ID, "err", err)
		}
		script = strings.TrimSpace(written)
	}
	if script == "" {
		script = OpeningScript(s.Fields)
	}
	_ = s.SetScript(script)
}

// OpeningScript is the template used when no script writer is configured.
func OpeningScript(f domain.Fields) string {
	party := "a group"
	if f.PartySize != nil {
		party = fmt.Sprintf("%d people", *f.PartySize)
	}
	return fmt.Sprintf("Hello, I'd like to make a reservation for %s on %s at %s.",
		party, domain.Deref(f.Date), domain.Deref(f.Time))
}

// Contact places the outbound contact to the selected candidate.
func (h *Handlers) Contact(ctx context.Context, s *domain.SessionState) {
	if s.Selected == nil {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepContact, "no candidate selected", nil))
		return
	}
	if !h.confirmCall(ctx, s, s.Selected.Name) {
		return
	}
	h.narrate(ctx, s, fmt.Sprintf("Calling %s.", s.Selected.Name))

	handle, err := h.dialer.Dial(ctx, s.Selected.Contact, s.OpeningScript)
	if err != nil {
		s.AddError(domain.NewFailure(domain.KindBackend, domain.StepContact,
			fmt.Sprintf("could not reach %s", s.Selected.Name), err))
		return
	}
	_ = s.Connect(handle)
	h.logger.Info("contact connected", "session_id", s.ID, "handle", handle)
}

// Converse negotiates the booking over the connected contact. Each visit counts one turn.
func (h *Handlers) Converse(ctx context.Context, s *domain.SessionState) {
	if !s.ContactConnected || s.Selected == nil {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepConverse, "no connected contact", nil))
		return
	}

	result, err := h.conversation.Converse(ctx, s.ContactHandle, s.Brief())
	if err != nil {
		s.AddError(domain.NewFailure(domain.KindBackend, domain.StepConverse, "conversation failed", err))
		result = domain.ConversationResult{}
	}
	s.MarkTried(s.Selected.Contact)
	_ = s.RecordConversation(result)
	_ = s.Disconnect()

	if err == nil && !result.BookingConfirmed {
		h.narrate(ctx, s, fmt.Sprintf("%s couldn't take the booking.", s.Selected.Name))
	}
}

// HandleError records the cause of a recovery and announces the decision
// that RouteRecovery is about to take.
func (h *Handlers) HandleError(ctx context.Context, s *domain.SessionState) {
	if !s.BookingConfirmed && s.TurnCount >= s.MaxTurns && !s.HasErrors() {
		s.AddError(domain.NewFailure(domain.KindTimeout, domain.StepConverse,
			fmt.Sprintf("no confirmation after %d conversation turns", s.TurnCount), nil))
	}
	cause := s.LastError()

	switch RouteRecovery(s) {
	case domain.RouteRetry:
		h.logger.Info("retrying after failure", "session_id", s.ID,
			"retry", s.Retry.Count+1, "max_retries", s.Retry.Max, "resume_at", s.ResumeAt, "cause", cause)
		h.narrate(ctx, s, "Something went wrong. Let me try that again.")
	case domain.RouteFallback:
		h.logger.Info("keeping confirmed booking despite failure", "session_id", s.ID, "cause", cause)
	default:
		msg := fmt.Sprintf("giving up after %d retries", s.Retry.Count)
		if cause != nil {
			msg += ": " + cause.Message
		}
		s.AddError(domain.NewFailure(domain.KindAbort, domain.StepHandleError, msg, nil))
	}
}

// ConfirmBooking completes the session when a booking was confirmed.
func (h *Handlers) ConfirmBooking(_ context.Context, s *domain.SessionState) {
	if !s.BookingConfirmed || s.Selected == nil {
		s.AddError(domain.NewFailure(domain.KindValidation, domain.StepConfirmBooking, "cannot confirm incomplete booking", nil))
		_ = s.Finish(domain.StatusFailed)
		return
	}
	_ = s.Finish(domain.StatusCompleted)
}

// Abandon fails the session.
func (h *Handlers) Abandon(_ context.Context, s *domain.SessionState) {
	if !s.HasErrors() {
		s.AddError(domain.NewFailure(domain.KindAbort, domain.StepAbandon, "workflow abandoned", nil))
	}
	_ = s.Finish(domain.StatusFailed)
}

// Cancel ends the session at the requester's request.
func (h *Handlers) Cancel(ctx context.Context, s *domain.SessionState) {
	h.narrate(ctx, s, "Okay, I won't make the reservation.")
	_ = s.Finish(domain.StatusCancelled)
}
