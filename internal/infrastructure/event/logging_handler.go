package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/infrastructure/logger"
)

// LoggingHandler writes every domain event to the structured log. It is
// the default listener wired at startup so the operational log shows the
// lifecycle of each order and trip.
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a new logging handler
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHandler{logger: logger}
}

// Handle logs the event. The request-scoped logger from the context is
// preferred so the entry carries the request ID of the triggering call.
func (h *LoggingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	log := h.logger
	if ctxLogger := logger.FromContext(ctx); ctxLogger.Core().Enabled(zap.InfoLevel) {
		log = ctxLogger
	}
	log.Info("domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *LoggingHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*LoggingHandler)(nil)
