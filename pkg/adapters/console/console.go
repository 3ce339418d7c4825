package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// Speaker prints agent speech to a writer.
type Speaker struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
	color  termenv.Color
}

// NewSpeaker creates a Speaker. A nil writer means stdout.
func NewSpeaker(w io.Writer) *Speaker {
	if w == nil {
		w = os.Stdout
	}
	p := termenv.ColorProfile()
	return &Speaker{w: w, prefix: "HiyaDrive", color: p.Color("#22d3ee")}
}

// Speak implements ports.Speaker.
func (s *Speaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := termenv.String(s.prefix + ":").Foreground(s.color).Bold()
	_, err := fmt.Fprintf(s.w, "%s %s\n", label, text)
	return err
}

type inputResult struct {
	text string
	err  error
}

// Listener reads one line per Listen call.
type Listener struct {
	reader *bufio.Reader
	prompt io.Writer

	inputChan chan inputResult
	startOnce sync.Once
}

// NewListener creates a Listener. A nil reader means stdin. When prompt is
// not nil a "> " marker is written before waiting.
func NewListener(r io.Reader, prompt io.Writer) *Listener {
	if r == nil {
		r = os.Stdin
	}
	return &Listener{reader: bufio.NewReader(r), prompt: prompt}
}

func (l *Listener) initPump() {
	l.startOnce.Do(func() {
		l.inputChan = make(chan inputResult)
		go l.pump()
	})
}

func (l *Listener) pump() {
	for {
		text, err := l.reader.ReadString('\n')
		if text != "" {
			l.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(l.inputChan)
				return
			}
			l.inputChan <- inputResult{err: err}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Listen implements ports.Listener. An empty line, the timeout and a closed
// input all count as silence.
func (l *Listener) Listen(ctx context.Context, maxDuration time.Duration) (string, error) {
	l.initPump()
	if l.prompt != nil {
		fmt.Fprint(l.prompt, "> ")
	}

	var timeout <-chan time.Time
	if maxDuration > 0 {
		timer := time.NewTimer(maxDuration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timeout:
		return "", nil
	case res, ok := <-l.inputChan:
		if !ok {
			// Input closed: stay silent for the listen window.
			l.inputChan = nil
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-timeout:
				return "", nil
			}
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}
