package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrNoJSON is returned when the model answer carries no JSON object.
var ErrNoJSON = errors.New("no JSON object in model answer")

const extractorSystem = `You extract restaurant reservation details from a driver's spoken request.
Answer with one JSON object and nothing else. Use these keys and omit any that were not mentioned:
party_size (integer), category (cuisine, capitalised), location (area or city), date (YYYY-MM-DD),
time (24h HH:MM), confirmed (true if the driver agrees, false if the driver refuses).`

var reJSON = regexp.MustCompile(`(?s)\{.*\}`)

// Extractor implements ports.FieldExtractor with a language model.
type Extractor struct {
	llm Completer
	now func() time.Time
}

// NewExtractor creates an Extractor.
func NewExtractor(llm Completer) *Extractor {
	return &Extractor{llm: llm, now: time.Now}
}

// Extract implements ports.FieldExtractor.
func (e *Extractor) Extract(ctx context.Context, text string, current domain.Fields) (domain.Extraction, error) {
	known, _ := json.Marshal(current)
	prompt := fmt.Sprintf("Today is %s.\nAlready known: %s\nDriver said: %q",
		e.now().Format("Monday 2006-01-02"), known, text)

	answer, err := e.llm.Complete(ctx, extractorSystem, prompt)
	if err != nil {
		return domain.Extraction{}, err
	}
	return ParseExtraction(answer)
}

// ParseExtraction decodes the first JSON object of a model answer. Values are
// weakly typed: "4" and 4.0 both decode to a party size of 4.
func ParseExtraction(answer string) (domain.Extraction, error) {
	raw := reJSON.FindString(answer)
	if raw == "" {
		return domain.Extraction{}, ErrNoJSON
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Extraction{}, fmt.Errorf("invalid extraction JSON: %w", err)
	}
	// Older prompts used cuisine_type.
	if v, ok := payload["cuisine_type"]; ok {
		if _, set := payload["category"]; !set {
			payload["category"] = v
		}
	}
	for k, v := range payload {
		if v == nil {
			delete(payload, k)
		}
	}

	var out domain.Extraction
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return domain.Extraction{}, err
	}
	if err := dec.Decode(payload); err != nil {
		return domain.Extraction{}, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return out, nil
}
