// Package throttle limits how often outbound contacts are placed to the same
// provider.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/ports"
	"golang.org/x/time/rate"
)

// Dialer wraps a ports.ContactDialer with a token bucket per contact.
type Dialer struct {
	next  ports.ContactDialer
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Dialer allowing perMinute dials to each contact, with the
// given burst. A non-positive perMinute disables limiting.
func New(next ports.ContactDialer, perMinute float64, burst int) *Dialer {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Duration(float64(time.Minute) / perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &Dialer{
		next:     next,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (d *Dialer) limiter(contact string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[contact]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.limiters[contact] = l
	}
	return l
}

// Dial implements ports.ContactDialer. It blocks until the contact's bucket
// has a token or ctx is done.
func (d *Dialer) Dial(ctx context.Context, contact, script string) (string, error) {
	if err := d.limiter(contact).Wait(ctx); err != nil {
		return "", fmt.Errorf("dial to %s throttled: %w", contact, err)
	}
	return d.next.Dial(ctx, contact, script)
}
