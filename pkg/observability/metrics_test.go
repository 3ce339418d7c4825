package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepEnter(ctx, &domain.StepEvent{StepID: domain.StepContact})
	hooks.OnStepEnter(ctx, &domain.StepEvent{StepID: domain.StepContact})
	hooks.OnStepLeave(ctx, &domain.StepEvent{StepID: domain.StepContact, Duration: time.Second, Failed: true})
	hooks.OnRoute(ctx, &domain.RouteEvent{From: domain.StepContact, Label: domain.RouteError, To: domain.StepHandleError})
	hooks.OnSessionEnd(ctx, &domain.SessionEvent{Status: domain.StatusFailed, Duration: time.Minute, Retries: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepVisits.WithLabelValues(domain.StepContact)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepFailures.WithLabelValues(domain.StepContact)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Routes.WithLabelValues(domain.StepContact, domain.RouteError, domain.StepHandleError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues(string(domain.StatusFailed))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SessionDuration))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}
