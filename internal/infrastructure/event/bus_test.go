package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reparto/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.received = append(h.received, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "order", uuid.New())
	return &evt
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to handlers of the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"order.advanced"}}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(context.Background(), newEvent("order.advanced")))
		require.NoError(t, bus.Publish(context.Background(), newEvent("order.deleted")))

		require.Len(t, h.received, 1)
		assert.Equal(t, "order.advanced", h.received[0].EventType())
	})

	t.Run("empty event type list subscribes to everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(context.Background(), newEvent("order.created"), newEvent("trip.closed")))

		assert.Len(t, h.received, 2)
	})

	t.Run("handler failure does not stop delivery to others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{"order.created"}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{"order.created"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newEvent("order.created")))

		assert.Len(t, failing.received, 1)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"order.created"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(context.Background(), newEvent("order.created")))

		assert.Empty(t, h.received)
	})
}

type fakeStore struct {
	seen map[string]bool
	err  error
}

func (s *fakeStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return s.seen[key], s.err
}

func (s *fakeStore) Close() error { return nil }

func TestIdempotentHandler(t *testing.T) {
	t.Run("processes an event exactly once", func(t *testing.T) {
		inner := &recordingHandler{}
		wrapped := NewIdempotentHandler("audit", inner, &fakeStore{seen: map[string]bool{}}, zap.NewNop())

		evt := newEvent("order.advanced")
		require.NoError(t, wrapped.Handle(context.Background(), evt))
		require.NoError(t, wrapped.Handle(context.Background(), evt))

		assert.Len(t, inner.received, 1)
	})

	t.Run("distinct events both go through", func(t *testing.T) {
		inner := &recordingHandler{}
		wrapped := NewIdempotentHandler("audit", inner, &fakeStore{seen: map[string]bool{}}, zap.NewNop())

		require.NoError(t, wrapped.Handle(context.Background(), newEvent("order.advanced")))
		require.NoError(t, wrapped.Handle(context.Background(), newEvent("order.advanced")))

		assert.Len(t, inner.received, 2)
	})

	t.Run("store failure lets the event through", func(t *testing.T) {
		inner := &recordingHandler{}
		wrapped := NewIdempotentHandler("audit", inner, &fakeStore{err: errors.New("redis down")}, zap.NewNop())

		require.NoError(t, wrapped.Handle(context.Background(), newEvent("order.advanced")))

		assert.Len(t, inner.received, 1)
	})
}
