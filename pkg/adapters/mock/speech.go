package mock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/logging"
)

// Speaker logs what would be spoken and keeps a copy.
type Speaker struct {
	mu     sync.Mutex
	logger *slog.Logger
	spoken []string
}

// NewSpeaker creates a Speaker. A nil logger discards output.
func NewSpeaker(logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Speaker{logger: logger}
}

// Speak implements ports.Speaker.
func (s *Speaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	s.logger.Debug("speak", "text", text)
	return nil
}

// Spoken returns everything said so far.
func (s *Speaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

// Listener replays scripted replies. Once they run out it behaves like a
// silent microphone: it waits for the listen window or the context, then
// returns silence.
type Listener struct {
	mu      sync.Mutex
	replies []string
}

// NewListener creates a scripted listener.
func NewListener(replies ...string) *Listener {
	return &Listener{replies: replies}
}

// Listen implements ports.Listener.
func (l *Listener) Listen(ctx context.Context, maxDuration time.Duration) (string, error) {
	l.mu.Lock()
	if len(l.replies) > 0 {
		reply := l.replies[0]
		l.replies = l.replies[1:]
		l.mu.Unlock()
		return reply, nil
	}
	l.mu.Unlock()

	if maxDuration <= 0 {
		<-ctx.Done()
		return "", ctx.Err()
	}
	timer := time.NewTimer(maxDuration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", nil
	}
}
