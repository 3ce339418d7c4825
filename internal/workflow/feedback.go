package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/input"
)

// Verbosity controls how much spoken feedback is inserted between steps.
type Verbosity int

const (
	// VerbositySilent only speaks prompts that need an answer.
	VerbositySilent Verbosity = iota
	// VerbosityNarrated also announces progress at each step.
	VerbosityNarrated
	// VerbosityInteractive also asks for yes/no confirmation at checkpoints.
	VerbosityInteractive
)

func (v Verbosity) String() string {
	switch v {
	case VerbositySilent:
		return "silent"
	case VerbosityNarrated:
		return "narrated"
	case VerbosityInteractive:
		return "interactive"
	}
	return fmt.Sprintf("verbosity(%d)", int(v))
}

// ParseVerbosity maps a configuration string to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "quiet":
		return VerbositySilent, nil
	case "", "narrated", "voice":
		return VerbosityNarrated, nil
	case "interactive":
		return VerbosityInteractive, nil
	}
	return VerbosityNarrated, fmt.Errorf("unknown verbosity %q", s)
}

// say speaks to the requester regardless of verbosity.
func (h *Handlers) say(ctx context.Context, s *domain.SessionState, text string) {
	s.Say(domain.SpeakerAgent, text)
	if err := h.speaker.Speak(ctx, text); err != nil {
		h.logger.Warn("speech playback failed", "session_id", s.ID, "err", err)
	}
}

// narrate speaks progress feedback when verbosity allows it.
func (h *Handlers) narrate(ctx context.Context, s *domain.SessionState, text string) {
	if h.cfg.Verbosity < VerbosityNarrated {
		return
	}
	h.say(ctx, s, text)
}

// listen captures one utterance. Failures and unusable input count as silence.
func (h *Handlers) listen(ctx context.Context, s *domain.SessionState) string {
	raw, err := h.listener.Listen(ctx, h.cfg.ListenTimeout)
	if err != nil {
		h.logger.Warn("speech capture failed, treating as silence", "session_id", s.ID, "err", err)
		return ""
	}
	text, err := input.Sanitize(raw)
	if err != nil {
		h.logger.Warn("discarding unusable utterance", "session_id", s.ID, "err", err)
		return ""
	}
	if text != "" {
		s.Say(domain.SpeakerUser, text)
	}
	return text
}

// ask speaks a prompt and waits for the answer.
func (h *Handlers) ask(ctx context.Context, s *domain.SessionState, prompt string) string {
	h.say(ctx, s, prompt)
	return h.listen(ctx, s)
}

var fieldPrompts = map[string]string{
	domain.FieldPartySize: "how many people",
	domain.FieldCategory:  "what kind of food",
	domain.FieldLocation:  "which area",
	domain.FieldDate:      "which day",
	domain.FieldTime:      "what time",
}

// missingPrompt asks for the given fields in one sentence.
func missingPrompt(missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, f := range missing {
		if p, ok := fieldPrompts[f]; ok {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return "Could you repeat your request?"
	case 1:
		return fmt.Sprintf("I still need to know %s. Could you tell me?", parts[0])
	}
	return fmt.Sprintf("I still need to know %s and %s. Could you tell me?",
		strings.Join(parts[:len(parts)-1], ", "), parts[len(parts)-1])
}

var negativeWords = map[string]bool{
	"no": true, "nope": true, "nah": true, "cancel": true, "stop": true, "don't": true, "dont": true,
}

// saysNo reports whether a reply contains a plain refusal.
func saysNo(text string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r == '\'' || (r >= 'a' && r <= 'z'))
	}) {
		if negativeWords[w] {
			return true
		}
	}
	return false
}
