package workflow_test

import (
	"testing"

	"github.com/Myangsun/HiyaDrive/internal/testutils"
	"github.com/Myangsun/HiyaDrive/internal/workflow"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRouteConversation_Precedence(t *testing.T) {
	failure := domain.NewFailure(domain.KindBackend, domain.StepConverse, "line dropped", nil)

	tests := []struct {
		name      string
		confirmed bool
		errs      []*domain.Failure
		turns     int
		want      string
	}{
		{"confirmed wins over everything", true, []*domain.Failure{failure}, 10, domain.RouteBookingConfirmed},
		{"errors before timeout", false, []*domain.Failure{failure}, 10, domain.RouteError},
		{"timeout at the turn budget", false, nil, 10, domain.RouteTimeout},
		{"timeout past the turn budget", false, nil, 11, domain.RouteTimeout},
		{"otherwise look for alternatives", false, nil, 9, domain.RouteNeedAlternatives},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewSessionState("r", "u")
			s.MaxTurns = 10
			s.BookingConfirmed = tt.confirmed
			s.Errors = tt.errs
			s.TurnCount = tt.turns
			assert.Equal(t, tt.want, workflow.RouteConversation(s))
		})
	}
}

func TestRouteRecovery(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		max       int
		confirmed bool
		want      string
	}{
		{"budget left", 0, 2, false, domain.RouteRetry},
		{"budget left even if confirmed", 1, 2, true, domain.RouteRetry},
		{"exhausted with booking", 2, 2, true, domain.RouteFallback},
		{"exhausted without booking", 2, 2, false, domain.RouteAbandon},
		{"no budget at all", 0, 0, false, domain.RouteAbandon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewSessionState("r", "u")
			s.Retry = domain.RetryBudget{Count: tt.count, Max: tt.max}
			s.BookingConfirmed = tt.confirmed
			assert.Equal(t, tt.want, workflow.RouteRecovery(s))
		})
	}
}

func TestRouteIntent(t *testing.T) {
	s := domain.NewSessionState("r", "u")
	assert.Equal(t, domain.RouteIncomplete, workflow.RouteIntent(s))

	s.Fields = testutils.FullFields()
	assert.Equal(t, domain.RouteReady, workflow.RouteIntent(s))

	s.Declined = true
	assert.Equal(t, domain.RouteDeclined, workflow.RouteIntent(s))
}

func TestRouteAvailability(t *testing.T) {
	s := domain.NewSessionState("r", "u")
	s.AddError(domain.NewFailure(domain.KindBackend, domain.StepCheckAvailability, "down", nil))
	assert.Equal(t, domain.RouteError, workflow.RouteAvailability(s))

	s.AddError(domain.NewFailure(domain.KindExhausted, domain.StepCheckAvailability, "no free slot after 3 attempts", nil))
	assert.Equal(t, domain.RouteExhausted, workflow.RouteAvailability(s))

	s.Available = true
	assert.Equal(t, domain.RouteAvailable, workflow.RouteAvailability(s))
}

func TestRouteSearch(t *testing.T) {
	s := domain.NewSessionState("r", "u")
	s.AddError(domain.NewFailure(domain.KindBackend, domain.StepSearchCandidates, "timeout", nil))
	assert.Equal(t, domain.RouteError, workflow.RouteSearch(s))

	s.AddError(domain.NewFailure(domain.KindValidation, domain.StepSearchCandidates, "nothing", nil))
	assert.Equal(t, domain.RouteEmpty, workflow.RouteSearch(s))

	s.Candidates = testutils.Candidates()
	assert.Equal(t, domain.RouteFound, workflow.RouteSearch(s))
}

func TestRouteContact(t *testing.T) {
	s := domain.NewSessionState("r", "u")
	assert.Equal(t, domain.RouteError, workflow.RouteContact(s))

	s.ContactConnected = true
	assert.Equal(t, domain.RouteConnected, workflow.RouteContact(s))

	s.Declined = true
	assert.Equal(t, domain.RouteDeclined, workflow.RouteContact(s))
}
