package dsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	start string
	steps map[string]*StepBuilder
	order []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		steps: make(map[string]*StepBuilder),
	}
}

// Add creates a step in the graph. The first step added is the start step.
// If the step already exists, its handler is replaced and the existing builder returned.
func (b *Builder) Add(id string, h Handler) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		sb.step.Handler = h
		return sb
	}
	sb := &StepBuilder{
		step:    &Step{ID: id, Handler: h},
		builder: b,
	}
	b.steps[id] = sb
	b.order = append(b.order, id)
	if b.start == "" {
		b.start = id
	}
	return sb
}

// Start overrides the start step.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Build validates the graph and freezes it.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		start: b.start,
		steps: make(map[string]Step, len(b.steps)),
		order: append([]string(nil), b.order...),
	}
	for id, sb := range b.steps {
		step := *sb.step
		step.Branches = append([]Edge(nil), sb.step.Branches...)
		g.steps[id] = step
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Graph is a validated, immutable workflow graph.
type Graph struct {
	start string
	steps map[string]Step
	order []string
}

// Start returns the start step ID.
func (g *Graph) Start() string {
	return g.start
}

// Step returns the step with the given ID.
func (g *Graph) Step(id string) (Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// Steps returns all steps in declaration order.
func (g *Graph) Steps() []Step {
	out := make([]Step, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.steps[id])
	}
	return out
}

// validate checks for broken links, unreachable steps and missing terminals.
func (g *Graph) validate() error {
	var problems []string

	if g.start == "" {
		problems = append(problems, "graph has no steps")
	} else if _, ok := g.steps[g.start]; !ok {
		problems = append(problems, fmt.Sprintf("start step '%s' is not defined", g.start))
	}

	hasTerminal := false
	for _, id := range g.order {
		s := g.steps[id]
		if s.Handler == nil {
			problems = append(problems, fmt.Sprintf("step '%s' has no handler", id))
		}
		if s.Terminal {
			hasTerminal = true
			if s.Next != "" || s.Router != nil || s.OnError != "" {
				problems = append(problems, fmt.Sprintf("terminal step '%s' declares outgoing edges", id))
			}
			continue
		}
		if s.Next != "" && s.Router != nil {
			problems = append(problems, fmt.Sprintf("step '%s' declares both a static edge and a router", id))
		}
		if s.Next == "" && s.Router == nil {
			problems = append(problems, fmt.Sprintf("step '%s' is not terminal and has no way out", id))
		}
		if s.Router != nil && len(s.Branches) == 0 {
			problems = append(problems, fmt.Sprintf("step '%s' has a router but no branches", id))
		}
		if s.Router == nil && len(s.Branches) > 0 {
			problems = append(problems, fmt.Sprintf("step '%s' has branches but no router", id))
		}
		for _, target := range g.targets(s) {
			if target == Resume {
				continue
			}
			if _, ok := g.steps[target]; !ok {
				problems = append(problems, fmt.Sprintf("step '%s' points to unknown step '%s'", id, target))
			}
		}
		if s.RetryAt != "" {
			if _, ok := g.steps[s.RetryAt]; !ok {
				problems = append(problems, fmt.Sprintf("step '%s' retries at unknown step '%s'", id, s.RetryAt))
			}
		}
	}
	if !hasTerminal {
		problems = append(problems, "graph has no terminal step")
	}

	if len(problems) == 0 {
		for _, id := range g.unreachable() {
			problems = append(problems, fmt.Sprintf("step '%s' is unreachable from '%s'", id, g.start))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidGraph, len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

func (g *Graph) targets(s Step) []string {
	var out []string
	if s.Next != "" {
		out = append(out, s.Next)
	}
	if s.OnError != "" {
		out = append(out, s.OnError)
	}
	for _, e := range s.Branches {
		out = append(out, e.To)
	}
	return out
}

// unreachable crawls the graph from the start step. A Resume edge leads to
// the retry point of every step that can enter the step declaring it.
func (g *Graph) unreachable() []string {
	visited := make(map[string]bool)
	queue := []string{g.start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, target := range g.targets(g.steps[current]) {
			if target == Resume {
				queue = append(queue, g.ResumePoints(current)...)
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var missing []string
	for id := range g.steps {
		if !visited[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// ResumePoints returns the distinct retry points of the steps that lead into id,
// in declaration order. These are the steps a Resume edge of id can continue from.
func (g *Graph) ResumePoints(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, other := range g.order {
		s := g.steps[other]
		for _, target := range g.targets(s) {
			if target == id {
				if p := s.RetryPoint(); !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
				break
			}
		}
	}
	return out
}
