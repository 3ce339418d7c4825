package mock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Calendar reports every slot as free except the busy ones.
type Calendar struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewCalendar creates a calendar with the given busy "date time" slots.
func NewCalendar(busy ...string) *Calendar {
	c := &Calendar{busy: make(map[string]bool)}
	for _, b := range busy {
		c.busy[normalizeSlot(b)] = true
	}
	return c
}

// Block marks a slot as busy.
func (c *Calendar) Block(date, clock string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy[normalizeSlot(date+" "+clock)] = true
}

// IsAvailable implements ports.AvailabilityChecker.
func (c *Calendar) IsAvailable(_ context.Context, date, clock string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.busy[normalizeSlot(date+" "+clock)], nil
}

func normalizeSlot(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DefaultCandidates mirrors the demo restaurant list.
var DefaultCandidates = []domain.Candidate{
	{Name: "Olive Garden", Contact: "+1-555-0100", Location: "123 Main St", Score: 4.2},
	{Name: "Bella Vista", Contact: "+1-555-0200", Location: "456 Park Ave", Score: 4.5},
	{Name: "Luigi's Trattoria", Contact: "+1-555-0300", Location: "789 Broadway", Score: 4.1},
}

// Searcher returns a fixed candidate list for any query.
type Searcher struct {
	candidates []domain.Candidate
}

// NewSearcher creates a searcher; with no candidates it uses DefaultCandidates.
func NewSearcher(candidates ...domain.Candidate) *Searcher {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Searcher{candidates: candidates}
}

type candidateFile struct {
	Candidates []struct {
		Name    string  `yaml:"name"`
		Contact string  `yaml:"contact"`
		Address string  `yaml:"address"`
		Rating  float64 `yaml:"rating"`
	} `yaml:"candidates"`
}

// LoadSearcher reads a YAML fixture of the form:
//
//	candidates:
//	  - name: Olive Garden
//	    contact: "+1-555-0100"
//	    address: 123 Main St
//	    rating: 4.2
func LoadSearcher(data []byte) (*Searcher, error) {
	var f candidateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid candidate fixture: %w", err)
	}
	out := make([]domain.Candidate, 0, len(f.Candidates))
	for i, c := range f.Candidates {
		if c.Name == "" || c.Contact == "" {
			return nil, fmt.Errorf("candidate %d: name and contact are required", i)
		}
		out = append(out, domain.Candidate{Name: c.Name, Contact: c.Contact, Location: c.Address, Score: c.Rating})
	}
	return &Searcher{candidates: out}, nil
}

// Search implements ports.CandidateSearcher. Addresses are suffixed with the location.
func (s *Searcher) Search(_ context.Context, _, location string) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if location != "" && c.Location != "" {
			c.Location = c.Location + ", " + location
		}
		out = append(out, c)
	}
	return out, nil
}

// ErrNoContact is returned when dialing an empty contact.
var ErrNoContact = errors.New("candidate has no contact number")

// Dialer pretends to place calls.
type Dialer struct{}

// Dial implements ports.ContactDialer. It returns a mock_call_<8 hex> handle.
func (Dialer) Dial(_ context.Context, contact, _ string) (string, error) {
	if strings.TrimSpace(contact) == "" {
		return "", ErrNoContact
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "mock_call_" + id[:8], nil
}

// DefaultToken is the confirmation number of the scripted conversation.
const DefaultToken = "4892"

// Conversation plays a scripted booking exchange.
type Conversation struct {
	token   string
	name    string
	decline map[string]bool
}

// ConversationOption configures the Conversation.
type ConversationOption func(*Conversation)

// WithDecline makes the named candidates refuse the booking.
func WithDecline(names ...string) ConversationOption {
	return func(c *Conversation) {
		for _, n := range names {
			c.decline[strings.ToLower(strings.TrimSpace(n))] = true
		}
	}
}

// WithToken sets the confirmation number.
func WithToken(token string) ConversationOption {
	return func(c *Conversation) {
		c.token = token
	}
}

// NewConversation creates the scripted conversation.
func NewConversation(opts ...ConversationOption) *Conversation {
	c := &Conversation{token: DefaultToken, name: "Alex", decline: make(map[string]bool)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Converse implements ports.ConversationDriver.
func (c *Conversation) Converse(_ context.Context, handle string, brief domain.Brief) (domain.ConversationResult, error) {
	if handle == "" {
		return domain.ConversationResult{}, errors.New("no active call")
	}
	opening := brief.Script
	if opening == "" {
		opening = "Hello"
	}
	party := "2"
	if brief.Fields.PartySize != nil {
		party = fmt.Sprint(*brief.Fields.PartySize)
	}

	transcript := []domain.TranscriptEntry{
		{Speaker: domain.SpeakerAgent, Text: opening},
	}
	if c.decline[strings.ToLower(brief.Candidate.Name)] {
		transcript = append(transcript,
			domain.TranscriptEntry{Speaker: domain.SpeakerProvider, Text: "Sorry, we're fully booked at that time."})
		return domain.ConversationResult{Transcript: transcript}, nil
	}

	transcript = append(transcript,
		domain.TranscriptEntry{Speaker: domain.SpeakerProvider, Text: "Hello! How many people?"},
		domain.TranscriptEntry{Speaker: domain.SpeakerAgent, Text: party + " people please."},
		domain.TranscriptEntry{Speaker: domain.SpeakerProvider, Text: "Sure! What name for the reservation?"},
		domain.TranscriptEntry{Speaker: domain.SpeakerAgent, Text: c.name},
		domain.TranscriptEntry{Speaker: domain.SpeakerProvider, Text: fmt.Sprintf("Perfect! Your confirmation number is %s.", c.token)},
	)
	return domain.ConversationResult{BookingConfirmed: true, ConfirmationToken: c.token, Transcript: transcript}, nil
}
