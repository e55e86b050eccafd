package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reparto/backend/internal/domain/audit"
	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/domain/trips"
)

// GormTripRepository implements trips.Repository using GORM
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// FindByID finds a trip by its ID with clients, expenses and history
func (r *GormTripRepository) FindByID(ctx context.Context, id uuid.UUID) (*trips.Trip, error) {
	var trip trips.Trip
	if err := r.db.WithContext(ctx).
		Preload("Clients").
		Preload("Expenses").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("audit_entries.timestamp ASC")
		}).
		First(&trip, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// FindAll finds trips matching the filter
func (r *GormTripRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trips.Trip, error) {
	var list []trips.Trip
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&trips.Trip{}).Preload("Clients"),
		filter,
	)

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save creates or updates a trip, replacing the client and expense
// collections wholesale and appending any new history entries
func (r *GormTripRepository) Save(ctx context.Context, trip *trips.Trip) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip.IncrementVersion()
		trip.UpdatedAt = time.Now()

		if err := tx.Omit("Clients", "Expenses", "History").Save(trip).Error; err != nil {
			return err
		}

		if err := tx.Where("trip_id = ?", trip.ID).Delete(&trips.Client{}).Error; err != nil {
			return err
		}
		for i := range trip.Clients {
			trip.Clients[i].TripID = trip.ID
			if err := tx.Create(&trip.Clients[i]).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("trip_id = ?", trip.ID).Delete(&trips.Expense{}).Error; err != nil {
			return err
		}
		for i := range trip.Expenses {
			trip.Expenses[i].TripID = trip.ID
			if err := tx.Create(&trip.Expenses[i]).Error; err != nil {
				return err
			}
		}

		// History is append-only: insert entries not yet persisted
		for i := range trip.History {
			if err := tx.Where("id = ?", trip.History[i].ID).
				FirstOrCreate(&trip.History[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes the trip with its clients, expenses and history
func (r *GormTripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&trips.Client{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", id).Delete(&trips.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Where("aggregate_id = ?", id).Delete(&audit.Entry{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&trips.Trip{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts trips matching the filter
func (r *GormTripRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&trips.Trip{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextDisplayID generates the next human-facing trip code (V-00001, ...)
func (r *GormTripRepository) NextDisplayID(ctx context.Context) (string, error) {
	const prefix = "V-"

	var last trips.Trip
	err := r.db.WithContext(ctx).
		Model(&trips.Trip{}).
		Where("display_id LIKE ?", prefix+"%").
		Order("display_id DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if err == nil && last.DisplayID != "" {
		var num int64
		if _, parseErr := fmt.Sscanf(strings.TrimPrefix(last.DisplayID, prefix), "%d", &num); parseErr == nil {
			next = num + 1
		}
	}

	return fmt.Sprintf("%s%05d", prefix, next), nil
}

func (r *GormTripRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("date DESC")
	}

	return query
}

func (r *GormTripRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("display_id ILIKE ? OR name ILIKE ? OR driver_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "driver":
			query = query.Where("driver_name = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date <= ?", t)
			}
		}
	}

	return query
}
