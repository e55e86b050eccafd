package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/reparto/backend/internal/domain/shared"
)

// IdempotentHandler wraps an EventHandler so a redelivered event is
// processed once. The dedup key combines the wrapped handler's name and
// the event ID, so two different handlers still each see the event.
type IdempotentHandler struct {
	name    string
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(name string, handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{
		name:    name,
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless it was already seen.
// A store failure lets the event through: processing twice is a lesser
// evil than dropping it.
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, evt)
	}

	key := h.name + ":" + evt.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	if err != nil {
		h.logger.Warn("idempotency store unavailable, processing event anyway",
			zap.String("event_id", evt.EventID().String()),
			zap.Error(err),
		)
		return h.handler.Handle(ctx, evt)
	}
	if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
		)
		return nil
	}

	return h.handler.Handle(ctx, evt)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
