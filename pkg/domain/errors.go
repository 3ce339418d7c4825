package domain

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned when a mutation is attempted on a session whose status is terminal.
var ErrSessionClosed = errors.New("session is closed")

// ErrRetryBudgetExhausted is returned when the retry counter would exceed its bound.
var ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

// ErrNoCandidates is returned when selection is attempted on an empty candidate list.
var ErrNoCandidates = errors.New("no candidates available")

// ErrIndexOutOfRange is returned when a user-chosen option does not exist.
var ErrIndexOutOfRange = errors.New("option index out of range")

// ErrInvalidGraph is returned when a workflow graph fails construction-time validation.
var ErrInvalidGraph = errors.New("invalid workflow graph")

// ErrorKind classifies a recorded failure.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"            // missing or invalid required data
	KindBackend    ErrorKind = "backend"               // an external collaborator call failed
	KindExhausted  ErrorKind = "negotiation_exhausted" // availability negotiation used every attempt
	KindAbort      ErrorKind = "workflow_abort"        // retries exhausted and no fallback booking
	KindTimeout    ErrorKind = "timeout"               // turn budget or session deadline ran out
	KindCancelled  ErrorKind = "cancelled"             // user decline or caller cancellation
	KindInternal   ErrorKind = "internal"              // recovered panic
)

// Failure is one entry of a session's error list.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (f *Failure) Error() string {
	if f.Step != "" {
		return fmt.Sprintf("%s [%s]: %s", f.Step, f.Kind, f.Message)
	}
	return fmt.Sprintf("[%s]: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure. When cause is non-nil its message is appended.
func NewFailure(kind ErrorKind, step, message string, cause error) *Failure {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &Failure{Kind: kind, Step: step, Message: message, Err: cause}
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}
