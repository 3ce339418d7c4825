package console_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/adapters/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeaker(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, console.NewSpeaker(&buf).Speak(context.Background(), "Calling Bella Vista."))
	assert.Contains(t, buf.String(), "HiyaDrive:")
	assert.Contains(t, buf.String(), "Calling Bella Vista.\n")
}

func TestListener_Lines(t *testing.T) {
	var prompt bytes.Buffer
	l := console.NewListener(strings.NewReader("  for 4 people \n\nyes"), &prompt)
	ctx := context.Background()

	got, err := l.Listen(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "for 4 people", got)

	got, err = l.Listen(ctx, time.Second)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = l.Listen(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "yes", got)

	assert.Equal(t, 3, strings.Count(prompt.String(), "> "))
}

func TestListener_ClosedInputIsSilence(t *testing.T) {
	l := console.NewListener(strings.NewReader(""), nil)

	start := time.Now()
	got, err := l.Listen(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	got, err = l.Listen(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListener_Context(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	l := console.NewListener(r, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Listen(ctx, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
