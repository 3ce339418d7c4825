package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/notify"
	backend "github.com/redis/go-redis/v9"
)

// DefaultHistory is how many outcomes are kept per requester.
const DefaultHistory = 50

// Publisher implements ports.Notifier. It publishes each outcome on a channel
// and keeps a capped per-requester history list.
type Publisher struct {
	client  backend.UniversalClient
	prefix  string
	channel string
	history int64
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		p.channel = channel
	}
}

// WithHistory caps the per-requester history; 0 disables it.
func WithHistory(n int) Option {
	return func(p *Publisher) {
		p.history = int64(n)
	}
}

// NewPublisher creates a Publisher from an existing client.
func NewPublisher(client backend.UniversalClient, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		prefix:  "hiyadrive:",
		channel: "hiyadrive:outcomes",
		history: DefaultHistory,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HistoryKey is the list holding the requester's recent outcomes, newest first.
func (p *Publisher) HistoryKey(requesterID string) string {
	return p.prefix + "history:" + requesterID
}

// Channel returns the pub/sub channel.
func (p *Publisher) Channel() string {
	return p.channel
}

// Notify implements ports.Notifier.
func (p *Publisher) Notify(ctx context.Context, s *domain.SessionState) error {
	data, err := json.Marshal(notify.Summarize(s))
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, p.channel, data)
	if p.history > 0 {
		key := p.HistoryKey(s.RequesterID)
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, p.history-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish outcome: %w", err)
	}
	return nil
}

// History returns up to n recent outcomes of the requester, newest first.
func (p *Publisher) History(ctx context.Context, requesterID string, n int) ([]notify.Outcome, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := p.client.LRange(ctx, p.HistoryKey(requesterID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	out := make([]notify.Outcome, 0, len(raw))
	for _, r := range raw {
		var o notify.Outcome
		if err := json.Unmarshal([]byte(r), &o); err != nil {
			return nil, fmt.Errorf("corrupt history entry: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}
