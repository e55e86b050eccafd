package orders

import (
	"github.com/google/uuid"

	"github.com/reparto/backend/internal/domain/shared"
)

// Event types for the order aggregate
const (
	EventTypeOrderCreated  = "order.created"
	EventTypeOrderAdvanced = "order.advanced"
	EventTypeOrderDeleted  = "order.deleted"
)

const aggregateTypeOrder = "SalesDistributionOrder"

// OrderCreatedEvent is published when a new order enters the workflow
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	DisplayID  string    `json:"display_id"`
	ClientName string    `json:"client_name"`
	Zone       string    `json:"zone"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, aggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		DisplayID:       order.DisplayID,
		ClientName:      order.ClientName,
		Zone:            order.Zone,
	}
}

// OrderAdvancedEvent is published on every workflow transition
type OrderAdvancedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID   `json:"order_id"`
	DisplayID string      `json:"display_id"`
	NewStatus OrderStatus `json:"new_status"`
}

// NewOrderAdvancedEvent creates an OrderAdvancedEvent
func NewOrderAdvancedEvent(order *Order, newStatus OrderStatus) *OrderAdvancedEvent {
	return &OrderAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAdvanced, aggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		DisplayID:       order.DisplayID,
		NewStatus:       newStatus,
	}
}

// OrderDeletedEvent is published when an owner/admin deletes an order
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	DisplayID string    `json:"display_id"`
}

// NewOrderDeletedEvent creates an OrderDeletedEvent
func NewOrderDeletedEvent(order *Order) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, aggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		DisplayID:       order.DisplayID,
	}
}
