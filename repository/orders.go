package repository

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/Pedroffda/alinhavo-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sortable columns for open-order listings
const (
	ColumnCreatedAt    = "created_at"
	ColumnDeliveryDate = "delivery_date"
	ColumnMaxBudget    = "max_budget"
)

var sortableOrderColumns = map[string]bool{
	ColumnCreatedAt:    true,
	ColumnDeliveryDate: true,
	ColumnMaxBudget:    true,
}

// OpenOrdersQuery selects and orders open orders
type OpenOrdersQuery struct {
	GarmentType string // case-insensitive substring, empty matches all
	SortColumn  string
	Descending  bool
	Limit       int // 0 means no limit
	Offset      int
}

// OrderRepository reads and writes the orders table
type OrderRepository struct {
	db *gorm.DB
}

// Create inserts the order together with any inspiration rows it carries
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", classify(err))
	}
	return nil
}

// Get returns the order with the given id, or ErrNotFound
func (r *OrderRepository) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// GetForShare reads the order under a shared row lock held until the
// transaction ends, so status updates from other transactions wait for it.
// SQLite has no row locks and serializes writers instead.
func (r *OrderRepository) GetForShare(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		First(&order, id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// UpdateIfStatus applies fields to the order only while its status is one of
// from. It reports whether the row was updated; false means the order is
// missing or has moved to another status.
func (r *OrderRepository) UpdateIfStatus(ctx context.Context, id uint, from []models.OrderStatus, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update order %d: %w", id, classify(result.Error))
	}
	return result.RowsAffected == 1, nil
}

// ListOpen streams open orders matching q
func (r *OrderRepository) ListOpen(ctx context.Context, q OpenOrdersQuery) iter.Seq2[models.Order, error] {
	column := q.SortColumn
	if !sortableOrderColumns[column] {
		column = ColumnCreatedAt
	}

	return stream[models.Order](ctx, r.db, func(db *gorm.DB) *gorm.DB {
		query := db.Model(&models.Order{}).Where("status = ?", models.OrderOpen)
		if q.GarmentType != "" {
			query = query.Where("LOWER(garment_type) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(q.GarmentType))+"%")
		}
		query = query.
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Descending}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Descending})
		if q.Limit > 0 {
			query = query.Limit(q.Limit)
		}
		if q.Offset > 0 {
			query = query.Offset(q.Offset)
		}
		return query
	})
}

// ListByClient streams a client's orders, most recent first
func (r *OrderRepository) ListByClient(ctx context.Context, clientID string) iter.Seq2[models.Order, error] {
	return stream[models.Order](ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Order{}).
			Where("client_id = ?", clientID).
			Order("created_at DESC").
			Order("id DESC")
	})
}

// CountByTailor counts orders assigned to a tailor in the given status
func (r *OrderRepository) CountByTailor(ctx context.Context, tailorID string, status models.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("assigned_tailor_id = ? AND status = ?", tailorID, status).
		Count(&count).Error
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
