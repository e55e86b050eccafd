package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/reparto/backend/internal/domain/shared"
)

// Repository defines persistence for order aggregates. Aggregates are
// written wholesale and reloaded in full; there is no incremental sync.
type Repository interface {
	// FindByID loads an order with its product lines and history
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders matching the filter (status, zone, client search,
	// date range) with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByStatus lists orders in a given workflow state
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save writes the order and rewrites its product-line collection
	Save(ctx context.Context, order *Order) error

	// Delete removes the order with its lines and history
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextDisplayID generates the next human-facing order code
	NextDisplayID(ctx context.Context) (string, error)
}
