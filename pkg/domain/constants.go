package domain

// Step identifiers of the reservation workflow.
const (
	StepParseIntent       = "parse_intent"
	StepCompleteIntent    = "complete_intent"
	StepCheckAvailability = "check_availability"
	StepSearchCandidates  = "search_candidates"
	StepSelectCandidate   = "select_candidate"
	StepPrepareScript     = "prepare_script"
	StepContact           = "contact"
	StepConverse          = "converse"
	StepConfirmBooking    = "confirm_booking"
	StepHandleError       = "handle_error"
	StepAbandon           = "abandon"
	StepCancel            = "cancel"
)

// Route labels returned by routers at conditional branch points.
const (
	RouteReady      = "ready"
	RouteIncomplete = "incomplete"
	RouteDeclined   = "declined"

	RouteAvailable = "available"
	RouteExhausted = "exhausted"

	RouteFound = "found"
	RouteEmpty = "empty"

	RouteConnected = "connected"

	RouteBookingConfirmed = "booking_confirmed"
	RouteNeedAlternatives = "need_alternatives"
	RouteError            = "error"
	RouteTimeout          = "timeout"

	RouteRetry    = "retry"
	RouteFallback = "fallback"
	RouteAbandon  = "abandon"
)

// Transcript speakers.
const (
	SpeakerAgent    = "agent"
	SpeakerUser     = "user"
	SpeakerProvider = "provider"
)

// DefaultMaxTurns bounds the number of provider conversations per session.
const DefaultMaxTurns = 10
