package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle status of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimeout   Status = "timeout"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s != StatusActive && s != ""
}

// Candidate is a discovered service provider eligible for selection and contact.
type Candidate struct {
	Name     string  `json:"name"`
	Contact  string  `json:"contact"`
	Location string  `json:"location,omitempty"`
	Score    float64 `json:"score"`
}

// TranscriptEntry is one utterance exchanged during the session.
type TranscriptEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// NegotiationStats counts what happened inside the availability negotiation.
// Attempts is the budgeted counter; the others are diagnostic breakdowns.
type NegotiationStats struct {
	Attempts           int `json:"attempts"`
	SilentReplies      int `json:"silent_replies"`
	ExtractionFailures int `json:"extraction_failures"`
}

// Brief is what a provider-facing collaborator needs to know about the booking.
type Brief struct {
	SessionID string    `json:"session_id"`
	Candidate Candidate `json:"candidate"`
	Fields    Fields    `json:"fields"`
	Script    string    `json:"script,omitempty"`
}

// ConversationResult is produced by a conversation driver.
type ConversationResult struct {
	BookingConfirmed  bool              `json:"booking_confirmed"`
	ConfirmationToken string            `json:"confirmation_token,omitempty"`
	Transcript        []TranscriptEntry `json:"transcript,omitempty"`
}

// SessionState is the single mutable record of one negotiation.
// Booking fields are changed through methods, which refuse once the status is terminal.
type SessionState struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	CreatedAt   time.Time `json:"created_at"`
	EndedAt     time.Time `json:"ended_at,omitempty"`
	Utterance   string    `json:"utterance"`
	Status      Status    `json:"status"`

	Fields Fields `json:"fields"`

	Candidates  []Candidate `json:"candidates,omitempty"`
	Selected    *Candidate  `json:"selected,omitempty"`
	Tried       []string    `json:"tried,omitempty"`
	ChosenIndex int         `json:"chosen_index,omitempty"`

	Available         bool   `json:"available"`
	Declined          bool   `json:"declined,omitempty"`
	ConfirmationToken string `json:"confirmation_token,omitempty"`
	BookingConfirmed  bool   `json:"booking_confirmed"`
	OpeningScript     string `json:"opening_script,omitempty"`
	ContactHandle     string `json:"contact_handle,omitempty"`
	ContactConnected  bool   `json:"contact_connected"`

	Errors           []*Failure        `json:"errors,omitempty"`
	Retry            RetryBudget       `json:"retry"`
	TurnCount        int               `json:"turn_count"`
	MaxTurns         int               `json:"max_turns"`
	Transcript       []TranscriptEntry `json:"transcript,omitempty"`
	Negotiation      NegotiationStats  `json:"negotiation"`
	CompletionRounds int               `json:"completion_rounds"`
	Path             []string          `json:"path,omitempty"`

	// ResumeAt is the step a retry continues from. Set by the engine.
	ResumeAt string `json:"resume_at,omitempty"`
}

// NewSessionState creates an Active session for the given requester and initial utterance.
func NewSessionState(requesterID, utterance string) *SessionState {
	return &SessionState{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		CreatedAt:   time.Now().UTC(),
		Utterance:   utterance,
		Status:      StatusActive,
		Retry:       RetryBudget{Max: DefaultMaxRetries},
		MaxTurns:    DefaultMaxTurns,
	}
}

// Terminal reports whether the session reached a final status.
func (s *SessionState) Terminal() bool {
	return s.Status.Terminal()
}

// Finish moves the session to a terminal status. Status only moves forward.
func (s *SessionState) Finish(status Status) error {
	if s.Terminal() {
		return fmt.Errorf("%w: already %s", ErrSessionClosed, s.Status)
	}
	if !status.Terminal() {
		return fmt.Errorf("status %q is not terminal", status)
	}
	s.Status = status
	s.EndedAt = time.Now().UTC()
	return nil
}

// AddError appends a failure. The list is append-only.
func (s *SessionState) AddError(f *Failure) {
	if f == nil {
		return
	}
	s.Errors = append(s.Errors, f)
}

// LastError returns the most recent failure, or nil.
func (s *SessionState) LastError() *Failure {
	if len(s.Errors) == 0 {
		return nil
	}
	return s.Errors[len(s.Errors)-1]
}

// HasErrors reports whether any failure was recorded.
func (s *SessionState) HasErrors() bool {
	return len(s.Errors) > 0
}

// Say appends a transcript entry.
func (s *SessionState) Say(speaker, text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Speaker: speaker, Text: text})
}

// MergeFields applies a partial update (last write wins per field).
func (s *SessionState) MergeFields(u Fields) ([]string, error) {
	if s.Terminal() {
		return nil, ErrSessionClosed
	}
	return s.Fields.Merge(u), nil
}

// SetCandidates replaces the retrieved candidate list.
func (s *SessionState) SetCandidates(c []Candidate) error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.Candidates = append([]Candidate(nil), c...)
	return nil
}

// Select records the chosen candidate.
func (s *SessionState) Select(c Candidate) error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.Selected = &c
	return nil
}

// SetAvailable records the result of the availability negotiation.
func (s *SessionState) SetAvailable(ok bool) error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.Available = ok
	return nil
}

// SetDeclined records that the user said no at a confirmation checkpoint.
func (s *SessionState) SetDeclined() error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.Declined = true
	return nil
}

// SetScript records the opening script.
func (s *SessionState) SetScript(script string) error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.OpeningScript = script
	return nil
}

// Connect records a successful outbound contact.
func (s *SessionState) Connect(handle string) error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.ContactHandle = handle
	s.ContactConnected = true
	return nil
}

// Disconnect clears the contact flags once a conversation is over.
func (s *SessionState) Disconnect() error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.ContactConnected = false
	return nil
}

// RecordConversation applies a conversation outcome and counts one turn.
func (s *SessionState) RecordConversation(r ConversationResult) error {
	if s.Terminal() {
		return ErrSessionClosed
	}
	s.TurnCount++
	s.Transcript = append(s.Transcript, r.Transcript...)
	if r.BookingConfirmed {
		s.BookingConfirmed = true
		s.ConfirmationToken = r.ConfirmationToken
	}
	return nil
}

// MarkTried remembers that a candidate was already contacted.
func (s *SessionState) MarkTried(contact string) {
	for _, c := range s.Tried {
		if c == contact {
			return
		}
	}
	s.Tried = append(s.Tried, contact)
}

// WasTried reports whether the candidate was already contacted.
func (s *SessionState) WasTried(contact string) bool {
	for _, c := range s.Tried {
		if c == contact {
			return true
		}
	}
	return false
}

// Brief assembles what provider-facing collaborators need.
func (s *SessionState) Brief() Brief {
	b := Brief{SessionID: s.ID, Fields: s.Fields, Script: s.OpeningScript}
	if s.Selected != nil {
		b.Candidate = *s.Selected
	}
	return b
}
