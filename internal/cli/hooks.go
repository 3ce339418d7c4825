package cli

import (
	"context"
	"log/slog"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			logger.Debug("enter step", "session_id", e.SessionID, "step_id", e.StepID)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			logger.Debug("leave step", "session_id", e.SessionID, "step_id", e.StepID,
				"duration", e.Duration, "failed", e.Failed)
		},
		OnRoute: func(_ context.Context, e *domain.RouteEvent) {
			logger.Debug("route", "session_id", e.SessionID, "from", e.From, "label", e.Label, "to", e.To)
		},
	}
}
