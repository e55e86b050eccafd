package trips

import (
	"github.com/google/uuid"

	"github.com/reparto/backend/internal/domain/shared"
)

// Event types for the trip aggregate
const (
	EventTypeTripCreated  = "trip.created"
	EventTypeTripClosed   = "trip.closed"
	EventTypeTripReopened = "trip.reopened"
)

const aggregateTypeTrip = "DeliveryTrip"

// TripCreatedEvent is published when a new trip is planned
type TripCreatedEvent struct {
	shared.BaseDomainEvent
	TripID     uuid.UUID `json:"trip_id"`
	Name       string    `json:"name"`
	DriverName string    `json:"driver_name"`
	Route      string    `json:"route"`
}

// NewTripCreatedEvent creates a TripCreatedEvent
func NewTripCreatedEvent(trip *Trip) *TripCreatedEvent {
	return &TripCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTripCreated, aggregateTypeTrip, trip.ID),
		TripID:          trip.ID,
		Name:            trip.Name,
		DriverName:      trip.DriverName,
		Route:           trip.Route,
	}
}

// TripClosedEvent is published when a trip is reconciled and frozen
type TripClosedEvent struct {
	shared.BaseDomainEvent
	TripID uuid.UUID `json:"trip_id"`
	Name   string    `json:"name"`
}

// NewTripClosedEvent creates a TripClosedEvent
func NewTripClosedEvent(trip *Trip) *TripClosedEvent {
	return &TripClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTripClosed, aggregateTypeTrip, trip.ID),
		TripID:          trip.ID,
		Name:            trip.Name,
	}
}

// TripReopenedEvent is published when a closed trip is reopened for edits
type TripReopenedEvent struct {
	shared.BaseDomainEvent
	TripID uuid.UUID `json:"trip_id"`
	Name   string    `json:"name"`
}

// NewTripReopenedEvent creates a TripReopenedEvent
func NewTripReopenedEvent(trip *Trip) *TripReopenedEvent {
	return &TripReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTripReopened, aggregateTypeTrip, trip.ID),
		TripID:          trip.ID,
		Name:            trip.Name,
	}
}
