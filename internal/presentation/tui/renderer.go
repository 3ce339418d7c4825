package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// IsTerminal reports whether the file is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Render formats markdown for f: styled on a terminal, raw otherwise.
func Render(f *os.File, markdown string) string {
	if !IsTerminal(f) {
		return markdown
	}
	out, err := NewRenderer()(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// Report renders the outcome of a session as markdown.
func Report(s *domain.SessionState) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Reservation %s\n\n", strings.ToUpper(string(s.Status)))
	fmt.Fprintf(&sb, "- **Session**: `%s`\n", s.ID)
	if summary := s.Fields.Summary(); summary != "" {
		fmt.Fprintf(&sb, "- **Request**: %s\n", summary)
	}
	if s.Selected != nil {
		fmt.Fprintf(&sb, "- **Restaurant**: %s (%s)\n", s.Selected.Name, s.Selected.Contact)
	}
	if s.ConfirmationToken != "" {
		fmt.Fprintf(&sb, "- **Confirmation**: %s\n", s.ConfirmationToken)
	}
	fmt.Fprintf(&sb, "- **Retries**: %d of %d\n", s.Retry.Count, s.Retry.Max)
	fmt.Fprintf(&sb, "- **Conversation turns**: %d\n", s.TurnCount)
	if s.Negotiation.Attempts > 0 {
		fmt.Fprintf(&sb, "- **Availability attempts**: %d\n", s.Negotiation.Attempts)
	}

	if len(s.Errors) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, e := range s.Errors {
			fmt.Fprintf(&sb, "- `%s` %s\n", e.Kind, e.Error())
		}
	}

	if len(s.Path) > 0 {
		sb.WriteString("\n## Path\n\n")
		sb.WriteString(strings.Join(s.Path, " → "))
		sb.WriteString("\n")
	}

	if len(s.Transcript) > 0 {
		sb.WriteString("\n## Transcript\n\n")
		for _, t := range s.Transcript {
			fmt.Fprintf(&sb, "> **%s**: %s\n>\n", t.Speaker, t.Text)
		}
	}
	return sb.String()
}
