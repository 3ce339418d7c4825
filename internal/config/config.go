// Package config loads HiyaDrive settings from an optional YAML file,
// HIYADRIVE_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. HIYADRIVE_MAX_RETRIES.
const EnvPrefix = "HIYADRIVE"

// Config holds all configuration values.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Verbosity string `mapstructure:"verbosity"`

	MaxRetries     int           `mapstructure:"max_retries"`
	MaxTurns       int           `mapstructure:"max_turns"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	TopN           int           `mapstructure:"top_n"`
	ListenTimeout  time.Duration `mapstructure:"listen_timeout"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	RequesterID    string        `mapstructure:"requester_id"`

	// UseMocks selects the demo backends for every collaborator that has no real one configured.
	UseMocks bool `mapstructure:"use_mocks"`

	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Places    PlacesConfig    `mapstructure:"places"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Dial      DialConfig      `mapstructure:"dial"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Mock      MockConfig      `mapstructure:"mock"`
}

// AnthropicConfig enables the LLM extractor and script writer when APIKey is set.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// PlacesConfig enables the HTTP candidate search when APIKey is set.
type PlacesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CalendarConfig enables the YAML calendar when File is set.
type CalendarConfig struct {
	File string `mapstructure:"file"`
}

// RedisConfig enables outcome publishing and distributed locking when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	History  int    `mapstructure:"history"`
}

// DialConfig throttles outbound contacts. A zero rate disables throttling.
type DialConfig struct {
	PerMinute float64 `mapstructure:"per_minute"`
	Burst     int     `mapstructure:"burst"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// ArchiveConfig enables the Markdown session archive when Dir is set.
type ArchiveConfig struct {
	Dir string `mapstructure:"dir"`
}

// MockConfig tunes the demo backends.
type MockConfig struct {
	// Decline lists candidate names the mock conversation refuses.
	Decline []string `mapstructure:"decline"`
	// Busy lists "date time" slots the mock calendar reports as taken.
	Busy []string `mapstructure:"busy"`
	// Replies are played back by the scripted listener when no terminal is attached.
	Replies []string `mapstructure:"replies"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("verbosity", "narrated")
	v.SetDefault("max_retries", 2)
	v.SetDefault("max_turns", 10)
	v.SetDefault("max_attempts", 3)
	v.SetDefault("top_n", 3)
	v.SetDefault("listen_timeout", 30*time.Second)
	v.SetDefault("session_timeout", 5*time.Minute)
	v.SetDefault("requester_id", "driver")
	v.SetDefault("use_mocks", true)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-3-5-sonnet-latest")
	v.SetDefault("anthropic.max_tokens", 512)

	v.SetDefault("places.base_url", "")
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.timeout", 10*time.Second)

	v.SetDefault("calendar.file", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "hiyadrive:")
	v.SetDefault("redis.history", 50)

	v.SetDefault("dial.per_minute", 0)
	v.SetDefault("dial.burst", 1)

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("archive.dir", "")

	v.SetDefault("mock.decline", []string{})
	v.SetDefault("mock.busy", []string{})
	v.SetDefault("mock.replies", []string{})
}

// Load reads the configuration. An explicit path must exist; otherwise
// hiyadrive.yaml is looked up in the working directory and $HOME/.hiyadrive.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("anthropic.api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hiyadrive")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hiyadrive")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the numeric bounds.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries))
	}
	if c.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("max_turns must be >= 1, got %d", c.MaxTurns))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts))
	}
	if c.TopN < 1 {
		errs = append(errs, fmt.Errorf("top_n must be >= 1, got %d", c.TopN))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("session_timeout must be positive, got %s", c.SessionTimeout))
	}
	if c.Dial.PerMinute < 0 {
		errs = append(errs, fmt.Errorf("dial.per_minute must be >= 0, got %v", c.Dial.PerMinute))
	}
	return errors.Join(errs...)
}
