package graph

import (
	"fmt"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/dsl"
)

// Overlay contains session data to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// OverlayFromPath marks every step of a session path as visited and the last one as current.
func OverlayFromPath(path []string) *Overlay {
	if len(path) == 0 {
		return nil
	}
	return &Overlay{Visited: path, Current: path[len(path)-1]}
}

// GenerateMermaid produces a Mermaid flowchart of the workflow graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Branch point: {{Hexagon}}
// - Terminal: ([Stadium])
// - Default: [Rectangle]
// Error edges are dotted, and a retry edge points at every step it can resume.
func GenerateMermaid(g *dsl.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range g.Steps() {
		id := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		switch {
		case step.ID == g.Start():
			opener, closer = "((", "))"
		case step.Terminal:
			opener, closer = "([", "])"
		case step.Router != nil:
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, step.ID, closer)

		if step.Next != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", id, sanitizeMermaidID(step.Next))
		}
		for _, e := range step.Branches {
			label := strings.ReplaceAll(e.Label, "\"", "'")
			if e.To == dsl.Resume {
				for _, p := range g.ResumePoints(step.ID) {
					fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", id, label, sanitizeMermaidID(p))
				}
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, label, sanitizeMermaidID(e.To))
		}
		if step.OnError != "" {
			fmt.Fprintf(&sb, "    %s -. \"on error\" .-> %s\n", id, sanitizeMermaidID(step.OnError))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, v := range overlay.Visited {
			id := sanitizeMermaidID(v)
			if id == "" || seen[id] {
				continue
			}
			if _, ok := g.Step(v); !ok {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", "$", "_", " ", "_").Replace(id)
}
