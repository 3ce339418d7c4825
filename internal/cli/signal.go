package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// InterruptError is the cancellation cause of a context ended by a signal.
// It unwraps to context.Canceled so sessions record it as a cancellation.
type InterruptError struct {
	Signal os.Signal
}

func (e *InterruptError) Error() string {
	return "interrupted by " + e.Signal.String()
}

func (e *InterruptError) Unwrap() error {
	return context.Canceled
}

// WithInterrupt returns a context cancelled on SIGINT or SIGTERM, with an
// *InterruptError as its cause.
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := interruptOn(parent, signals)
	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}

func interruptOn(parent context.Context, signals <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		select {
		case sig := <-signals:
			cancel(&InterruptError{Signal: sig})
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(nil) }
}

// Interrupted returns the *InterruptError that ended ctx, or nil.
func Interrupted(ctx context.Context) error {
	var ie *InterruptError
	if errors.As(context.Cause(ctx), &ie) {
		return ie
	}
	return nil
}
