package trips

import (
	"context"

	"github.com/google/uuid"

	"github.com/reparto/backend/internal/domain/shared"
)

// Repository defines persistence for trip aggregates. A save replaces the
// client and expense collections wholesale (delete then insert); callers
// reload the full aggregate after every mutation.
type Repository interface {
	// FindByID loads a trip with its clients, expenses and history
	FindByID(ctx context.Context, id uuid.UUID) (*Trip, error)

	// FindAll lists trips matching the filter (status, driver, date range)
	FindAll(ctx context.Context, filter shared.Filter) ([]Trip, error)

	// Save writes the trip and replaces its client and expense collections
	Save(ctx context.Context, trip *Trip) error

	// Delete removes the trip with its clients, expenses and history
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts trips matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextDisplayID generates the next human-facing trip code
	NextDisplayID(ctx context.Context) (string, error)
}
