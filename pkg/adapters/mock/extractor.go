package mock

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// Cuisines recognised by the keyword extractor.
var Cuisines = []string{
	"italian", "sushi", "french", "mexican", "thai", "indian",
	"chinese", "japanese", "korean", "greek", "vietnamese", "american",
}

var (
	reParty     = regexp.MustCompile(`(?i)\b(\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:people|persons?|guests|of us)\b`)
	rePartyFor  = regexp.MustCompile(`(?i)\bfor\s+(\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten)\b(\s*(?:am|pm|o'clock|:\d))?`)
	reLocation  = regexp.MustCompile(`(?i)\b(?:near|in|around)\s+([a-z][a-z' ]*?)(?:\s+(?:on|at|for|by|tomorrow|today|tonight|this|next)\b|[,.!?]|$)`)
	reISODate   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	reClock12   = regexp.MustCompile(`(?i)\b(\d{1,2})(?::([0-5]\d))?\s*(am|pm|a\.m\.|p\.m\.)`)
	reClock24   = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	wordNumbers = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
	yesWords = map[string]bool{"yes": true, "yeah": true, "yep": true, "sure": true, "correct": true, "right": true, "ok": true, "okay": true}
	noWords  = map[string]bool{"no": true, "nope": true, "nah": true, "wrong": true, "cancel": true}
)

// Extractor is a keyword-based field extractor. Relative dates are resolved against its clock.
type Extractor struct {
	now func() time.Time
}

// ExtractorOption configures the Extractor.
type ExtractorOption func(*Extractor)

// WithClock sets the clock used for "today", "tomorrow" and weekday names.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates a keyword extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements ports.FieldExtractor. Only the fields mentioned in text are set.
func (e *Extractor) Extract(_ context.Context, text string, _ domain.Fields) (domain.Extraction, error) {
	var out domain.Extraction
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool { return r < 'a' || r > 'z' })

	if n, ok := partySize(text); ok {
		out.PartySize = domain.Int(n)
	}
	for _, c := range Cuisines {
		if slices.Contains(words, c) {
			out.Category = domain.String(strings.ToUpper(c[:1]) + c[1:])
			break
		}
	}
	if m := reLocation.FindStringSubmatch(text); m != nil {
		out.Location = domain.String(strings.TrimSpace(m[1]))
	} else if strings.Contains(lower, "downtown") {
		out.Location = domain.String("downtown")
	}
	if d, ok := e.date(lower); ok {
		out.Date = domain.String(d)
	}
	if t, ok := clock(lower); ok {
		out.Time = domain.String(t)
	}

	for _, w := range words {
		switch {
		case yesWords[w]:
			out.Confirmed = domain.Bool(true)
		case noWords[w]:
			out.Confirmed = domain.Bool(false)
		}
		if out.Confirmed != nil {
			break
		}
	}
	return out, nil
}

func partySize(text string) (int, bool) {
	if m := reParty.FindStringSubmatch(text); m != nil {
		return number(m[1])
	}
	for _, m := range rePartyFor.FindAllStringSubmatch(text, -1) {
		if m[2] == "" {
			return number(m[1])
		}
	}
	return 0, false
}

func number(s string) (int, bool) {
	if n, ok := wordNumbers[strings.ToLower(s)]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

func (e *Extractor) date(lower string) (string, bool) {
	if m := reISODate.FindStringSubmatch(lower); m != nil {
		return m[1], true
	}
	today := e.now()
	switch {
	case strings.Contains(lower, "today"), strings.Contains(lower, "tonight"):
		return today.Format(time.DateOnly), true
	case strings.Contains(lower, "tomorrow"):
		return today.AddDate(0, 0, 1).Format(time.DateOnly), true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.Contains(lower, strings.ToLower(d.String())) {
			ahead := (int(d) - int(today.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return today.AddDate(0, 0, ahead).Format(time.DateOnly), true
		}
	}
	return "", false
}

func clock(lower string) (string, bool) {
	if m := reClock12.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h < 1 || h > 12 {
			return "", false
		}
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		pm := strings.HasPrefix(m[3], "p")
		switch {
		case pm && h != 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		return fmt.Sprintf("%02d:%02d", h, minute), true
	}
	if m := reClock24.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", h, minute), true
	}
	if strings.Contains(lower, "noon") {
		return "12:00", true
	}
	return "", false
}
