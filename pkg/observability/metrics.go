package observability

import (
	"context"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hiyadrive"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	StepVisits      *prometheus.CounterVec
	StepFailures    *prometheus.CounterVec
	StepDuration    *prometheus.HistogramVec
	Routes          *prometheus.CounterVec
	Sessions        *prometheus.CounterVec
	SessionDuration prometheus.Histogram
	Retries         prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_visits_total",
				Help:      "Total number of step visits",
			},
			[]string{"step"},
		),
		StepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_failures_total",
				Help:      "Steps that recorded at least one error",
			},
			[]string{"step"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of step handlers",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"step"},
		),
		Routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routes_total",
				Help:      "Transitions taken between steps",
			},
			[]string{"from", "label", "to"},
		),
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Finished sessions by status",
			},
			[]string{"status"},
		),
		SessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall time of finished sessions",
			Buckets:   prometheus.ExponentialBuckets(0.1, 3, 8),
		}),
		Retries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_retries",
			Help:      "Retries consumed per session",
			Buckets:   []float64{0, 1, 2, 3, 5},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.StepVisits, m.StepFailures, m.StepDuration, m.Routes, m.Sessions, m.SessionDuration, m.Retries,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.StepID).Inc()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.StepDuration.WithLabelValues(e.StepID).Observe(e.Duration.Seconds())
			if e.Failed {
				m.StepFailures.WithLabelValues(e.StepID).Inc()
			}
		},
		OnRoute: func(_ context.Context, e *domain.RouteEvent) {
			m.Routes.WithLabelValues(e.From, e.Label, e.To).Inc()
		},
		OnSessionEnd: func(_ context.Context, e *domain.SessionEvent) {
			m.Sessions.WithLabelValues(string(e.Status)).Inc()
			m.SessionDuration.Observe(e.Duration.Seconds())
			m.Retries.Observe(float64(e.Retries))
		},
	}
}
