package notify

import (
	"fmt"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// Outcome is the public summary of a finished session.
type Outcome struct {
	SessionID         string        `json:"session_id"`
	RequesterID       string        `json:"requester_id"`
	Status            domain.Status `json:"status"`
	Candidate         string        `json:"candidate,omitempty"`
	Contact           string        `json:"contact,omitempty"`
	ConfirmationToken string        `json:"confirmation_token,omitempty"`
	Fields            domain.Fields `json:"fields"`
	Retries           int           `json:"retries"`
	Turns             int           `json:"turns"`
	Errors            []string      `json:"errors,omitempty"`
	Path              []string      `json:"path,omitempty"`
	EndedAt           time.Time     `json:"ended_at"`
}

// Summarize builds the Outcome of a session.
func Summarize(s *domain.SessionState) Outcome {
	o := Outcome{
		SessionID:         s.ID,
		RequesterID:       s.RequesterID,
		Status:            s.Status,
		ConfirmationToken: s.ConfirmationToken,
		Fields:            s.Fields,
		Retries:           s.Retry.Count,
		Turns:             s.TurnCount,
		Path:              append([]string(nil), s.Path...),
		EndedAt:           s.EndedAt,
	}
	if s.Selected != nil {
		o.Candidate = s.Selected.Name
		o.Contact = s.Selected.Contact
	}
	for _, e := range s.Errors {
		o.Errors = append(o.Errors, e.Error())
	}
	return o
}

// Sentence renders the outcome as one spoken paragraph.
func Sentence(s *domain.SessionState) string {
	switch s.Status {
	case domain.StatusCompleted:
		name := "the restaurant"
		if s.Selected != nil {
			name = s.Selected.Name
		}
		party := "your party"
		if s.Fields.PartySize != nil {
			party = fmt.Sprintf("%d people", *s.Fields.PartySize)
		}
		text := fmt.Sprintf("Your reservation at %s is confirmed for %s on %s at %s.",
			name, party, domain.Deref(s.Fields.Date), domain.Deref(s.Fields.Time))
		if s.ConfirmationToken != "" {
			text += fmt.Sprintf(" Confirmation number: %s.", s.ConfirmationToken)
		}
		return text
	case domain.StatusCancelled:
		return "The reservation was cancelled."
	case domain.StatusTimeout:
		return "Sorry, I ran out of time before I could finish the reservation."
	}

	text := "Sorry, I couldn't complete the reservation."
	if last := s.LastError(); last != nil {
		text += " " + reason(last)
	}
	return text
}

func reason(f *domain.Failure) string {
	switch f.Kind {
	case domain.KindExhausted:
		return "I couldn't find a time that works with your calendar."
	case domain.KindValidation:
		if f.Step == domain.StepSearchCandidates {
			return "I couldn't find any matching restaurants."
		}
	case domain.KindAbort:
		return "I tried several times without success."
	case domain.KindTimeout:
		return "The restaurant didn't confirm in time."
	}
	return "Something went wrong along the way."
}
