package dto

import (
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
)

// GraphView is the serializable shape of a workflow graph.
type GraphView struct {
	Start string     `json:"start" yaml:"start"`
	Steps []StepView `json:"steps" yaml:"steps"`
}

// StepView describes one step without its handler and router.
type StepView struct {
	ID          string     `json:"id" yaml:"id"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Next        string     `json:"next,omitempty" yaml:"next,omitempty"`
	OnError     string     `json:"on_error,omitempty" yaml:"on_error,omitempty"`
	RetryAt     string     `json:"retry_at,omitempty" yaml:"retry_at,omitempty"`
	Terminal    bool       `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Branches    []EdgeView `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// EdgeView is a labelled transition. ResumesAt lists the concrete steps a
// resume edge may lead to.
type EdgeView struct {
	Label     string   `json:"label" yaml:"label"`
	To        string   `json:"to" yaml:"to"`
	ResumesAt []string `json:"resumes_at,omitempty" yaml:"resumes_at,omitempty"`
}

// FromGraph converts a graph, keeping declaration order.
func FromGraph(g *dsl.Graph) GraphView {
	view := GraphView{Start: g.Start()}
	for _, s := range g.Steps() {
		sv := StepView{
			ID:          s.ID,
			Description: s.Description,
			Next:        s.Next,
			OnError:     s.OnError,
			RetryAt:     s.RetryAt,
			Terminal:    s.Terminal,
		}
		for _, e := range s.Branches {
			ev := EdgeView{Label: e.Label, To: e.To}
			if e.To == dsl.Resume {
				ev.ResumesAt = g.ResumePoints(s.ID)
			}
			sv.Branches = append(sv.Branches, ev)
		}
		view.Steps = append(view.Steps, sv)
	}
	return view
}
