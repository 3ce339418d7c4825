package workflow

import (
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
)

// Graph assembles the canonical reservation workflow around the handlers.
func (h *Handlers) Graph() (*dsl.Graph, error) {
	b := dsl.New()

	b.Add(domain.StepParseIntent, h.ParseIntent).
		Describe("Parse the spoken request").
		OnError(domain.StepHandleError).
		Route(RouteIntent).
		Branch(domain.RouteReady, domain.StepCheckAvailability).
		Branch(domain.RouteIncomplete, domain.StepCompleteIntent).
		Branch(domain.RouteDeclined, domain.StepCancel)

	b.Add(domain.StepCompleteIntent, h.CompleteIntent).
		Describe("Ask for missing details").
		OnError(domain.StepHandleError).
		Route(RouteIntent).
		Branch(domain.RouteReady, domain.StepCheckAvailability).
		Branch(domain.RouteIncomplete, domain.StepCompleteIntent).
		Branch(domain.RouteDeclined, domain.StepCancel)

	b.Add(domain.StepCheckAvailability, h.CheckAvailability).
		Describe("Negotiate a free slot").
		Route(RouteAvailability).
		Branch(domain.RouteAvailable, domain.StepSearchCandidates).
		Branch(domain.RouteExhausted, domain.StepAbandon).
		Branch(domain.RouteError, domain.StepHandleError)

	b.Add(domain.StepSearchCandidates, h.SearchCandidates).
		Describe("Search providers").
		Route(RouteSearch).
		Branch(domain.RouteFound, domain.StepSelectCandidate).
		Branch(domain.RouteEmpty, domain.StepAbandon).
		Branch(domain.RouteError, domain.StepHandleError)

	b.Add(domain.StepSelectCandidate, h.SelectCandidate).
		Describe("Pick a provider").
		OnError(domain.StepAbandon).
		Go(domain.StepPrepareScript)

	b.Add(domain.StepPrepareScript, h.PrepareScript).
		Describe("Draft the opening line").
		OnError(domain.StepAbandon).
		Go(domain.StepContact)

	b.Add(domain.StepContact, h.Contact).
		Describe("Call the provider").
		OnError(domain.StepHandleError).
		Route(RouteContact).
		Branch(domain.RouteConnected, domain.StepConverse).
		Branch(domain.RouteDeclined, domain.StepCancel).
		Branch(domain.RouteError, domain.StepHandleError)

	b.Add(domain.StepConverse, h.Converse).
		Describe("Negotiate the booking").
		RetryAt(domain.StepContact).
		Route(RouteConversation).
		Branch(domain.RouteBookingConfirmed, domain.StepConfirmBooking).
		Branch(domain.RouteNeedAlternatives, domain.StepSearchCandidates).
		Branch(domain.RouteError, domain.StepHandleError).
		Branch(domain.RouteTimeout, domain.StepHandleError)

	b.Add(domain.StepHandleError, h.HandleError).
		Describe("Recover from failures").
		Route(RouteRecovery).
		BranchWith(domain.RouteRetry, dsl.Resume, consumeRetry).
		Branch(domain.RouteFallback, domain.StepConfirmBooking).
		Branch(domain.RouteAbandon, domain.StepAbandon)

	b.Add(domain.StepConfirmBooking, h.ConfirmBooking).Describe("Booking confirmed").Terminal()
	b.Add(domain.StepAbandon, h.Abandon).Describe("Give up").Terminal()
	b.Add(domain.StepCancel, h.Cancel).Describe("Cancelled by the requester").Terminal()

	return b.Build()
}
