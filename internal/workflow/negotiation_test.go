package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Myangsun/HiyaDrive/internal/testutils"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readySession(h *harness) *domain.SessionState {
	s := h.session(testutils.FullRequest)
	s.Fields = testutils.FullFields()
	return s
}

func TestCheckAvailability_FreeSucceedsOnFirstAttempt(t *testing.T) {
	for _, max := range []int{1, 3, 10} {
		h := newHarness()
		h.cfg.MaxAttempts = max
		s := readySession(h)

		h.handlers(t).CheckAvailability(context.Background(), s)

		assert.True(t, s.Available)
		assert.Equal(t, 1, s.Negotiation.Attempts)
		assert.Equal(t, 1, h.calendar.Calls())
		assert.Empty(t, s.Errors)
		assert.Empty(t, h.speaker.Spoken, "no prompt expected when the slot is free")
	}
}

func TestCheckAvailability_BusyExhaustsBudget(t *testing.T) {
	h := newHarness()
	h.calendar.Answers = []bool{false}
	h.listener.Replies = []string{"", ""}
	s := readySession(h)

	h.handlers(t).CheckAvailability(context.Background(), s)

	assert.False(t, s.Available)
	assert.Equal(t, 3, s.Negotiation.Attempts)
	assert.Equal(t, 3, h.calendar.Calls())
	assert.Equal(t, 2, s.Negotiation.SilentReplies)
	require.Len(t, s.Errors, 1)
	assert.Equal(t, domain.KindExhausted, s.Errors[0].Kind)
	assert.Contains(t, s.Errors[0].Error(), "3")
	assert.Len(t, h.speaker.Spoken, 2, "the last attempt does not prompt")
}

func TestCheckAvailability_SingleAttemptNeverPrompts(t *testing.T) {
	h := newHarness()
	h.cfg.MaxAttempts = 1
	h.calendar.Answers = []bool{false}
	s := readySession(h)

	h.handlers(t).CheckAvailability(context.Background(), s)

	assert.Equal(t, 1, s.Negotiation.Attempts)
	assert.Empty(t, h.speaker.Spoken)
	assert.True(t, domain.IsKind(s.LastError(), domain.KindExhausted))
}

func TestCheckAvailability_AlternativeTimeIsChecked(t *testing.T) {
	h := newHarness()
	h.calendar.Answers = []bool{false, true}
	h.listener.Replies = []string{"how about 8pm"}
	h.extractor.Responses["how about 8pm"] = domain.Extraction{Fields: domain.Fields{
		Time:     domain.String("20:00"),
		Category: domain.String("Thai"),
	}}
	s := readySession(h)

	h.handlers(t).CheckAvailability(context.Background(), s)

	assert.True(t, s.Available)
	assert.Equal(t, 2, s.Negotiation.Attempts)
	assert.Equal(t, []string{"2024-11-22 19:00", "2024-11-22 20:00"}, h.calendar.Checked)
	assert.Equal(t, "20:00", domain.Deref(s.Fields.Time))
	assert.Equal(t, "Italian", domain.Deref(s.Fields.Category), "only date and time are renegotiated")
}

func TestCheckAvailability_ExtractionFailureConsumesAttempt(t *testing.T) {
	h := newHarness()
	h.calendar.Answers = []bool{false}
	h.listener.Replies = []string{"mumble", "mumble"}
	h.extractor.Errors["mumble"] = errors.New("model unavailable")
	s := readySession(h)

	h.handlers(t).CheckAvailability(context.Background(), s)

	assert.Equal(t, 3, s.Negotiation.Attempts)
	assert.Equal(t, 2, s.Negotiation.ExtractionFailures)
	assert.Zero(t, s.Negotiation.SilentReplies)
	assert.True(t, domain.IsKind(s.LastError(), domain.KindExhausted))
}

func TestCheckAvailability_BackendErrorStopsImmediately(t *testing.T) {
	h := newHarness()
	h.calendar.Err = errors.New("calendar offline")
	s := readySession(h)

	h.handlers(t).CheckAvailability(context.Background(), s)

	assert.Equal(t, 1, s.Negotiation.Attempts)
	require.Len(t, s.Errors, 1)
	assert.Equal(t, domain.KindBackend, s.Errors[0].Kind)
	assert.ErrorContains(t, s.Errors[0], "calendar offline")
}

func TestCheckAvailability_MissingDateIsValidationError(t *testing.T) {
	h := newHarness()
	s := readySession(h)
	s.Fields.Date = nil

	h.handlers(t).CheckAvailability(context.Background(), s)

	assert.Zero(t, h.calendar.Calls())
	assert.True(t, domain.IsKind(s.LastError(), domain.KindValidation))
}

func TestWorkflow_BusyCalendarFailsSession(t *testing.T) {
	h := newHarness()
	h.calendar.Answers = []bool{false}
	h.listener.Replies = []string{"", ""}

	s := h.run(t, testutils.FullRequest)

	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Equal(t, []string{domain.StepParseIntent, domain.StepCheckAvailability, domain.StepAbandon}, s.Path)
	assert.Equal(t, 3, s.Negotiation.Attempts)
	assert.Equal(t, domain.KindExhausted, s.LastError().Kind)
	assert.Zero(t, h.searcher.Calls)
}
