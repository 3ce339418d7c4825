package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/logging"
	"github.com/Myangsun/HiyaDrive/pkg/ports"
)

// Defaults for Config.
const (
	DefaultMaxAttempts          = 3
	DefaultTopN                 = 3
	DefaultListenTimeout        = 30 * time.Second
	DefaultCheckpointRounds     = 3
	DefaultMaxExtractionFailure = 3
)

// Config tunes the step handlers.
type Config struct {
	// MaxAttempts bounds the availability negotiation.
	MaxAttempts int
	// TopN is how many candidates are offered for selection.
	TopN int
	// ListenTimeout is passed to the listener on every prompt.
	ListenTimeout time.Duration
	// Verbosity controls spoken feedback and confirmation checkpoints.
	Verbosity Verbosity
	// CheckpointRounds bounds corrections accepted at a confirmation checkpoint.
	CheckpointRounds int
	// MaxExtractionFailures ends intent completion after that many consecutive extractor failures.
	MaxExtractionFailures int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:           DefaultMaxAttempts,
		TopN:                  DefaultTopN,
		ListenTimeout:         DefaultListenTimeout,
		Verbosity:             VerbosityNarrated,
		CheckpointRounds:      DefaultCheckpointRounds,
		MaxExtractionFailures: DefaultMaxExtractionFailure,
	}
}

// Collaborators groups the backends the handlers talk to. Writer is optional.
type Collaborators struct {
	Extractor    ports.FieldExtractor
	Calendar     ports.AvailabilityChecker
	Searcher     ports.CandidateSearcher
	Dialer       ports.ContactDialer
	Conversation ports.ConversationDriver
	Writer       ports.ScriptWriter
	Speaker      ports.Speaker
	Listener     ports.Listener
}

func (c Collaborators) validate() error {
	var missing []error
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, fmt.Errorf("missing %s", name))
		}
	}
	check(c.Extractor != nil, "field extractor")
	check(c.Calendar != nil, "availability checker")
	check(c.Searcher != nil, "candidate searcher")
	check(c.Dialer != nil, "contact dialer")
	check(c.Conversation != nil, "conversation driver")
	check(c.Speaker != nil, "speaker")
	check(c.Listener != nil, "listener")
	return errors.Join(missing...)
}

// Handlers holds the step implementations and their collaborators.
type Handlers struct {
	extractor    ports.FieldExtractor
	calendar     ports.AvailabilityChecker
	searcher     ports.CandidateSearcher
	dialer       ports.ContactDialer
	conversation ports.ConversationDriver
	writer       ports.ScriptWriter
	speaker      ports.Speaker
	listener     ports.Listener

	cfg    Config
	logger *slog.Logger
}

// Option configures Handlers.
type Option func(*Handlers)

// WithConfig replaces the tuning. Zero values fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(h *Handlers) {
		def := DefaultConfig()
		if cfg.MaxAttempts <= 0 {
			cfg.MaxAttempts = def.MaxAttempts
		}
		if cfg.TopN <= 0 {
			cfg.TopN = def.TopN
		}
		if cfg.ListenTimeout <= 0 {
			cfg.ListenTimeout = def.ListenTimeout
		}
		if cfg.CheckpointRounds <= 0 {
			cfg.CheckpointRounds = def.CheckpointRounds
		}
		if cfg.MaxExtractionFailures <= 0 {
			cfg.MaxExtractionFailures = def.MaxExtractionFailures
		}
		h.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates the step handlers. Every collaborator except the script writer is required.
func New(c Collaborators, opts ...Option) (*Handlers, error) {
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("workflow collaborators: %w", err)
	}
	h := &Handlers{
		extractor:    c.Extractor,
		calendar:     c.Calendar,
		searcher:     c.Searcher,
		dialer:       c.Dialer,
		conversation: c.Conversation,
		writer:       c.Writer,
		speaker:      c.Speaker,
		listener:     c.Listener,
		cfg:          DefaultConfig(),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Config returns the effective tuning.
func (h *Handlers) Config() Config {
	return h.cfg
}
