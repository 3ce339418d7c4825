package anthropic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

const writerSystem = `You are a polite assistant phoning a restaurant on behalf of a driver.
Write the first sentence you will say when the restaurant picks up. Keep it under 40 words.
Wrap it in [SCRIPT] and [END].`

var reScript = regexp.MustCompile(`(?s)\[SCRIPT\](.*?)\[END\]`)

// Writer implements ports.ScriptWriter with a language model.
type Writer struct {
	llm Completer
}

// NewWriter creates a Writer.
func NewWriter(llm Completer) *Writer {
	return &Writer{llm: llm}
}

// Write implements ports.ScriptWriter.
func (w *Writer) Write(ctx context.Context, brief domain.Brief) (string, error) {
	party := "?"
	if brief.Fields.PartySize != nil {
		party = fmt.Sprint(*brief.Fields.PartySize)
	}
	prompt := fmt.Sprintf("Restaurant: %s\nParty size: %s\nDate: %s\nTime: %s",
		brief.Candidate.Name, party, domain.Deref(brief.Fields.Date), domain.Deref(brief.Fields.Time))

	answer, err := w.llm.Complete(ctx, writerSystem, prompt)
	if err != nil {
		return "", err
	}
	if m := reScript.FindStringSubmatch(answer); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return strings.TrimSpace(answer), nil
}
