package workflow

import "github.com/Myangsun/HiyaDrive/pkg/domain"

// RouteIntent decides where to go once the request has been parsed or completed.
func RouteIntent(s *domain.SessionState) string {
	switch {
	case s.Declined:
		return domain.RouteDeclined
	case s.Fields.Complete():
		return domain.RouteReady
	}
	return domain.RouteIncomplete
}

// RouteAvailability follows the outcome of the availability negotiation.
func RouteAvailability(s *domain.SessionState) string {
	if s.Available {
		return domain.RouteAvailable
	}
	if last := s.LastError(); last != nil && last.Kind == domain.KindExhausted {
		return domain.RouteExhausted
	}
	return domain.RouteError
}

// RouteSearch distinguishes a usable result, an empty result and a backend failure.
func RouteSearch(s *domain.SessionState) string {
	if len(s.Candidates) > 0 {
		return domain.RouteFound
	}
	if last := s.LastError(); last != nil && last.Kind == domain.KindValidation {
		return domain.RouteEmpty
	}
	return domain.RouteError
}

// RouteContact continues to the conversation once connected.
func RouteContact(s *domain.SessionState) string {
	switch {
	case s.Declined:
		return domain.RouteDeclined
	case s.ContactConnected:
		return domain.RouteConnected
	}
	return domain.RouteError
}

// RouteConversation applies, in order: confirmed booking, recorded errors,
// exhausted turn budget, otherwise look for alternatives.
func RouteConversation(s *domain.SessionState) string {
	switch {
	case s.BookingConfirmed:
		return domain.RouteBookingConfirmed
	case s.HasErrors():
		return domain.RouteError
	case s.TurnCount >= s.MaxTurns:
		return domain.RouteTimeout
	}
	return domain.RouteNeedAlternatives
}

// RouteRecovery retries while the budget allows, falls back to an already
// confirmed booking, and abandons otherwise.
func RouteRecovery(s *domain.SessionState) string {
	switch {
	case s.Retry.CanRetry():
		return domain.RouteRetry
	case s.BookingConfirmed:
		return domain.RouteFallback
	}
	return domain.RouteAbandon
}

// consumeRetry is the effect of taking the retry edge.
func consumeRetry(s *domain.SessionState) error {
	return s.Retry.Increment()
}
