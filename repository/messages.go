package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/Pedroffda/alinhavo-api/models"
	"gorm.io/gorm"
)

// MessageRepository appends to and reads the messages table. There is no
// update or delete.
type MessageRepository struct {
	db *gorm.DB
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", classify(err))
	}
	return nil
}

// ListByProposal streams a conversation oldest first; equal timestamps keep
// insertion order.
func (r *MessageRepository) ListByProposal(ctx context.Context, proposalID uint) iter.Seq2[models.Message, error] {
	return stream[models.Message](ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Message{}).
			Where("proposal_id = ?", proposalID).
			Order("created_at ASC").
			Order("id ASC")
	})
}
