package cli

import (
	"fmt"

	"github.com/Myangsun/HiyaDrive"
	"github.com/Myangsun/HiyaDrive/internal/config"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/mock"
)

// DemoRequest is the utterance replayed by demo runs.
const DemoRequest = "Book a table for 2 at an Italian place in Boston on 2024-11-22 at 7pm"

// DemoAgent builds an agent on the mock backends only, with no side effects.
func DemoAgent() (*hiyadrive.Agent, error) {
	return hiyadrive.New(hiyadrive.Collaborators{
		Extractor:    mock.NewExtractor(),
		Calendar:     mock.NewCalendar(),
		Searcher:     mock.NewSearcher(),
		Dialer:       mock.Dialer{},
		Conversation: mock.NewConversation(),
		Speaker:      mock.NewSpeaker(nil),
		Listener:     mock.NewListener(),
	})
}

// Selection names the backend chosen for one collaborator.
type Selection struct {
	Concern string
	Backend string
}

// Backends reports which backend Build picks for each concern.
func Backends(cfg *config.Config) []Selection {
	pick := func(real bool, name, detail string) string {
		switch {
		case real:
			return fmt.Sprintf("%s (%s)", name, detail)
		case cfg.UseMocks:
			return "mock"
		}
		return "missing"
	}

	writer := "template"
	if cfg.Anthropic.APIKey != "" {
		writer = fmt.Sprintf("anthropic (%s)", cfg.Anthropic.Model)
	}
	dialer := "mock"
	if cfg.Dial.PerMinute > 0 {
		dialer = fmt.Sprintf("mock (throttled to %g/min per contact)", cfg.Dial.PerMinute)
	}
	redis, archive := "disabled", "disabled"
	if cfg.Redis.Addr != "" {
		redis = cfg.Redis.Addr
	}
	if cfg.Archive.Dir != "" {
		archive = cfg.Archive.Dir
	}

	return []Selection{
		{"extractor", pick(cfg.Anthropic.APIKey != "", "anthropic", cfg.Anthropic.Model)},
		{"script writer", writer},
		{"calendar", pick(cfg.Calendar.File != "", "yaml", cfg.Calendar.File)},
		{"search", pick(cfg.Places.APIKey != "", "places", "api key set")},
		{"dialer", dialer},
		{"conversation", "mock"},
		{"redis", redis},
		{"archive", archive},
	}
}
