package dsl

import (
	"context"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// Resume is a branch target that continues from the retry point of the step
// whose failure led to the current one.
const Resume = "$resume"

// Handler is the unit of work of a step. It records failures on the state
// instead of returning them.
type Handler func(ctx context.Context, s *domain.SessionState)

// Router inspects the state at a branch point and returns a label.
type Router func(s *domain.SessionState) string

// Effect runs when its edge is taken.
type Effect func(s *domain.SessionState) error

// Edge is a labelled conditional transition.
type Edge struct {
	Label  string
	To     string
	Effect Effect
}

// Step is a node of the workflow graph.
type Step struct {
	ID          string
	Description string
	Handler     Handler

	// Next is the static edge, followed when the step did not fail.
	Next string
	// Router picks one of Branches by label.
	Router   Router
	Branches []Edge
	// OnError is followed when the handler appended errors.
	OnError string
	// RetryAt is where a retry resumes after this step failed. Defaults to the step itself.
	RetryAt  string
	Terminal bool
}

// Branch returns the edge for label.
func (s Step) Branch(label string) (Edge, bool) {
	for _, e := range s.Branches {
		if e.Label == label {
			return e, true
		}
	}
	return Edge{}, false
}

// HasResume reports whether the step declares a Resume branch.
func (s Step) HasResume() bool {
	for _, e := range s.Branches {
		if e.To == Resume {
			return true
		}
	}
	return false
}

// RetryPoint returns where a retry resumes after this step failed.
func (s Step) RetryPoint() string {
	if s.RetryAt != "" {
		return s.RetryAt
	}
	return s.ID
}

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    *Step
	builder *Builder
}

// Describe attaches a human readable description, used when rendering the graph.
func (b *StepBuilder) Describe(text string) *StepBuilder {
	b.step.Description = text
	return b
}

// Go sets the static edge.
func (b *StepBuilder) Go(to string) *StepBuilder {
	b.step.Next = to
	return b
}

// Route sets the router consulted after the handler.
func (b *StepBuilder) Route(r Router) *StepBuilder {
	b.step.Router = r
	return b
}

// Branch adds a conditional edge selected when the router returns label.
func (b *StepBuilder) Branch(label, to string) *StepBuilder {
	return b.BranchWith(label, to, nil)
}

// BranchWith adds a conditional edge whose effect runs when it is taken.
func (b *StepBuilder) BranchWith(label, to string, effect Effect) *StepBuilder {
	b.step.Branches = append(b.step.Branches, Edge{Label: label, To: to, Effect: effect})
	return b
}

// OnError sets the edge followed when the handler recorded a failure.
func (b *StepBuilder) OnError(to string) *StepBuilder {
	b.step.OnError = to
	return b
}

// RetryAt sets where a retry resumes after this step failed.
func (b *StepBuilder) RetryAt(id string) *StepBuilder {
	b.step.RetryAt = id
	return b
}

// Terminal marks the step as a sink: the session ends after it runs.
func (b *StepBuilder) Terminal() *StepBuilder {
	b.step.Terminal = true
	return b
}
