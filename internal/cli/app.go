// Package cli wires configuration into a ready-to-run agent for the commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Myangsun/HiyaDrive"
	"github.com/Myangsun/HiyaDrive/internal/config"
	"github.com/Myangsun/HiyaDrive/internal/logging"
	"github.com/Myangsun/HiyaDrive/internal/workflow"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/anthropic"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/calendar"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/console"
	httpadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/http"
	loamadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/loam"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/mock"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/places"
	redisadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/redis"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/throttle"
	"github.com/Myangsun/HiyaDrive/pkg/notify"
	"github.com/Myangsun/HiyaDrive/pkg/observability"
	"github.com/Myangsun/HiyaDrive/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// ErrNoBackend is returned when mocks are disabled and a collaborator has no real backend.
var ErrNoBackend = errors.New("no backend configured")

// Options selects how the agent talks to the driver.
type Options struct {
	// Console routes speech to Stdout and reads answers from Stdin.
	// Otherwise the scripted mock listener replays cfg.Mock.Replies.
	Console bool
	Stdin   io.Reader
	Stdout  io.Writer
	// LogOutput overrides the log destination (default Stderr).
	LogOutput io.Writer
}

// App is the assembled agent plus the infrastructure the commands expose.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Agent     *hiyadrive.Agent
	Registry  *prometheus.Registry
	Streams   *httpadapter.StreamManager
	Archive   *loamadapter.Archive
	Publisher *redisadapter.Publisher

	redis backend.UniversalClient
}

// Close releases the external connections.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// NewLogger builds the application logger from the configuration.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithWriter(w, level, cfg.LogFormat), nil
}

// Build assembles an App from the configuration.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger, err := NewLogger(cfg, opts.LogOutput)
	if err != nil {
		return nil, err
	}
	verbosity, err := workflow.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Streams:  httpadapter.NewStreamManager(logger),
	}

	collab, err := collaborators(cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	hooks := metrics.Hooks().Merge(app.Streams.Hooks()).Merge(debugHooks(logger))

	notifiers := notify.Multi{notify.NewSpeech(collab.Speaker), notify.NewLog(logger)}
	agentOpts := []hiyadrive.Option{
		hiyadrive.WithLogger(logger),
		hiyadrive.WithLifecycleHooks(hooks),
		hiyadrive.WithSessionTimeout(cfg.SessionTimeout),
		hiyadrive.WithMaxRetries(cfg.MaxRetries),
		hiyadrive.WithMaxTurns(cfg.MaxTurns),
	}

	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		app.redis = client
		app.Publisher = redisadapter.NewPublisher(client,
			redisadapter.WithPrefix(cfg.Redis.Prefix),
			redisadapter.WithHistory(cfg.Redis.History))
		notifiers = append(notifiers, app.Publisher)
		agentOpts = append(agentOpts, hiyadrive.WithLocker(redisadapter.NewLocker(client, cfg.Redis.Prefix)))
	}

	if cfg.Archive.Dir != "" {
		archive, err := loamadapter.Open(cfg.Archive.Dir)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Archive = archive
		notifiers = append(notifiers, archive)
	}

	wcfg := workflow.DefaultConfig()
	wcfg.MaxAttempts = cfg.MaxAttempts
	wcfg.TopN = cfg.TopN
	wcfg.ListenTimeout = cfg.ListenTimeout
	wcfg.Verbosity = verbosity
	agentOpts = append(agentOpts, hiyadrive.WithConfig(wcfg), hiyadrive.WithNotifier(notifiers))

	agent, err := hiyadrive.New(collab, agentOpts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Agent = agent
	return app, nil
}

func collaborators(cfg *config.Config, opts Options, logger *slog.Logger) (hiyadrive.Collaborators, error) {
	var c hiyadrive.Collaborators

	if opts.Console {
		in, out := opts.Stdin, opts.Stdout
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		c.Speaker = console.NewSpeaker(out)
		c.Listener = console.NewListener(in, out)
	} else {
		c.Speaker = mock.NewSpeaker(logger)
		c.Listener = mock.NewListener(cfg.Mock.Replies...)
	}

	switch {
	case cfg.Anthropic.APIKey != "":
		llm := anthropic.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		c.Extractor = anthropic.NewExtractor(llm)
		c.Writer = anthropic.NewWriter(llm)
	case cfg.UseMocks:
		c.Extractor = mock.NewExtractor()
	default:
		return c, fmt.Errorf("%w: field extractor needs anthropic.api_key", ErrNoBackend)
	}

	switch {
	case cfg.Calendar.File != "":
		cal, err := calendar.Load(cfg.Calendar.File)
		if err != nil {
			return c, err
		}
		c.Calendar = cal
	case cfg.UseMocks:
		c.Calendar = mock.NewCalendar(cfg.Mock.Busy...)
	default:
		return c, fmt.Errorf("%w: availability checker needs calendar.file", ErrNoBackend)
	}

	switch {
	case cfg.Places.APIKey != "":
		var popts []places.Option
		if cfg.Places.BaseURL != "" {
			popts = append(popts, places.WithBaseURL(cfg.Places.BaseURL))
		}
		c.Searcher = places.New(cfg.Places.APIKey, cfg.Places.Timeout, append(popts, places.WithLogger(logger))...)
	case cfg.UseMocks:
		c.Searcher = mock.NewSearcher()
	default:
		return c, fmt.Errorf("%w: candidate search needs places.api_key", ErrNoBackend)
	}

	// Telephony has no real backend; every build uses the simulated provider line.
	var dialer ports.ContactDialer = mock.Dialer{}
	if cfg.Dial.PerMinute > 0 {
		dialer = throttle.New(dialer, cfg.Dial.PerMinute, cfg.Dial.Burst)
	}
	c.Dialer = dialer
	c.Conversation = mock.NewConversation(mock.WithDecline(cfg.Mock.Decline...))

	return c, nil
}
