package repository

import (
	"context"

	"github.com/Pedroffda/alinhavo-api/models"
	"gorm.io/gorm"
)

// InspirationRepository reads image metadata attached to orders. Rows are
// written together with their order by OrderRepository.Create.
type InspirationRepository struct {
	db *gorm.DB
}

// CountByPath reports how many order attachments reference the storage key
func (r *InspirationRepository) CountByPath(ctx context.Context, path string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Inspiration{}).
		Where("storage_path = ?", path).
		Count(&count).Error
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// ListByOrder returns the order's images in upload order
func (r *InspirationRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.Inspiration, error) {
	var inspirations []models.Inspiration
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&inspirations).Error
	if err != nil {
		return nil, classify(err)
	}
	return inspirations, nil
}
