// Package calendar implements an availability checker backed by a YAML
// agenda file.
package calendar

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// DefaultDuration is the length assumed for a reservation and for events
// without an end time, unless WithDuration overrides it.
const DefaultDuration = 90 * time.Minute

// Event is one busy interval of the agenda.
type Event struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
	Start string `yaml:"start"`
	End   string `yaml:"end,omitempty"`
}

type agenda struct {
	Events []Event `yaml:"events"`
}

type interval struct {
	from, to time.Time
}

// Calendar reports a slot as free when a reservation starting then does not
// overlap any event.
type Calendar struct {
	mu       sync.RWMutex
	busy     []interval
	duration time.Duration
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithDuration sets the assumed reservation length. Events without an end
// time use it too.
func WithDuration(d time.Duration) Option {
	return func(c *Calendar) {
		if d > 0 {
			c.duration = d
		}
	}
}

// New creates a Calendar from events.
func New(events []Event, opts ...Option) (*Calendar, error) {
	c := &Calendar{duration: DefaultDuration}
	for _, opt := range opts {
		opt(c)
	}
	for _, e := range events {
		if err := c.add(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Parse reads an agenda of the form:
//
//	events:
//	  - title: Dentist
//	    date: 2024-11-15
//	    start: "18:30"
//	    end: "19:30"
func Parse(data []byte, opts ...Option) (*Calendar, error) {
	var a agenda
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse agenda: %w", err)
	}
	return New(a.Events, opts...)
}

// Load reads an agenda file.
func Load(path string, opts ...Option) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agenda: %w", err)
	}
	return Parse(data, opts...)
}

// Add records a busy event.
func (c *Calendar) Add(e Event) error {
	return c.add(e)
}

func (c *Calendar) add(e Event) error {
	from, err := slot(e.Date, e.Start)
	if err != nil {
		return fmt.Errorf("event %q: %w", e.Title, err)
	}
	to := from.Add(c.duration)
	if e.End != "" {
		if to, err = slot(e.Date, e.End); err != nil {
			return fmt.Errorf("event %q: %w", e.Title, err)
		}
		if !to.After(from) {
			return fmt.Errorf("event %q ends before it starts", e.Title)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = append(c.busy, interval{from: from, to: to})
	return nil
}

// IsAvailable implements ports.AvailabilityChecker.
func (c *Calendar) IsAvailable(_ context.Context, date, clock string) (bool, error) {
	from, err := slot(date, clock)
	if err != nil {
		return false, err
	}
	to := from.Add(c.duration)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.busy {
		if from.Before(b.to) && b.from.Before(to) {
			return false, nil
		}
	}
	return true, nil
}

func slot(date, clock string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}
