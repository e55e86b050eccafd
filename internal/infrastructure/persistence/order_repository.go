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
	"github.com/reparto/backend/internal/domain/orders"
	"github.com/reparto/backend/internal/domain/shared"
)

// GormOrderRepository implements orders.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with product lines and history
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	if err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("audit_entries.timestamp ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]orders.Order, error) {
	var list []orders.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&orders.Order{}).Preload("Products"),
		filter,
	)

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByStatus finds orders in a given workflow state
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status orders.OrderStatus, filter shared.Filter) ([]orders.Order, error) {
	var list []orders.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&orders.Order{}).Preload("Products").
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save creates or updates an order, rewriting the product-line collection
// and appending any new history entries
func (r *GormOrderRepository) Save(ctx context.Context, order *orders.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.IncrementVersion()
		order.UpdatedAt = time.Now()

		if err := tx.Omit("Products", "History").Save(order).Error; err != nil {
			return err
		}

		// Rewrite the line collection: delete removed rows, upsert the rest
		currentLineIDs := make([]uuid.UUID, len(order.Products))
		for i, line := range order.Products {
			currentLineIDs[i] = line.ID
		}
		if len(currentLineIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
				Delete(&orders.ProductLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", order.ID).
				Delete(&orders.ProductLine{}).Error; err != nil {
				return err
			}
		}
		for i := range order.Products {
			order.Products[i].OrderID = order.ID
			if err := tx.Save(&order.Products[i]).Error; err != nil {
				return err
			}
		}

		// History is append-only: insert entries not yet persisted
		for i := range order.History {
			if err := tx.Where("id = ?", order.History[i].ID).
				FirstOrCreate(&order.History[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes the order with its lines and history
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&orders.ProductLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("aggregate_id = ?", id).Delete(&audit.Entry{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&orders.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&orders.Order{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextDisplayID generates the next human-facing order code (R-00001, ...)
func (r *GormOrderRepository) NextDisplayID(ctx context.Context) (string, error) {
	const prefix = "R-"

	var last orders.Order
	err := r.db.WithContext(ctx).
		Model(&orders.Order{}).
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

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("created_at DESC")
	}

	return query
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("display_id ILIKE ? OR client_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "zone":
			query = query.Where("zone = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}
