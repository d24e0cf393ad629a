package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/Pedroffda/alinhavo-api/models"
	"gorm.io/gorm"
)

// ProposalRepository reads and writes the proposals table
type ProposalRepository struct {
	db *gorm.DB
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	if err := r.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return fmt.Errorf("failed to create proposal: %w", classify(err))
	}
	return nil
}

// Get returns the proposal with the given id, or ErrNotFound
func (r *ProposalRepository) Get(ctx context.Context, id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.WithContext(ctx).First(&proposal, id).Error; err != nil {
		return nil, classify(err)
	}
	return &proposal, nil
}

// TransitionStatus moves a proposal from one status to another. It reports
// false when the proposal is missing or no longer in status from.
func (r *ProposalRepository) TransitionStatus(ctx context.Context, id uint, from, to models.ProposalStatus) (bool, error) {
	if !models.ValidProposalStatus(to) {
		return false, fmt.Errorf("unknown proposal status %q", to)
	}
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update proposal %d: %w", id, classify(result.Error))
	}
	return result.RowsAffected == 1, nil
}

// RejectPending rejects every pending proposal of the order except keepID.
// It returns the number of proposals rejected.
func (r *ProposalRepository) RejectPending(ctx context.Context, orderID, keepID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("order_id = ? AND status = ? AND id <> ?", orderID, models.ProposalPending, keepID).
		Update("status", models.ProposalRejected)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reject pending proposals of order %d: %w", orderID, classify(result.Error))
	}
	return result.RowsAffected, nil
}

// SetProgress writes newProgress when the accepted proposal still holds
// expected. A false result means another writer got there first.
func (r *ProposalRepository) SetProgress(ctx context.Context, id uint, expected, newProgress int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND status = ? AND progress = ?", id, models.ProposalAccepted, expected).
		Update("progress", newProgress)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update progress of proposal %d: %w", id, classify(result.Error))
	}
	return result.RowsAffected == 1, nil
}

// HasPending reports whether the tailor already holds a pending bid on the order
func (r *ProposalRepository) HasPending(ctx context.Context, orderID uint, tailorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("order_id = ? AND tailor_id = ? AND status = ?", orderID, tailorID, models.ProposalPending).
		Count(&count).Error
	if err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

// ListByOrder streams the order's proposals, most recent first
func (r *ProposalRepository) ListByOrder(ctx context.Context, orderID uint) iter.Seq2[models.Proposal, error] {
	return stream[models.Proposal](ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return recentFirst(db.Model(&models.Proposal{}).Where("order_id = ?", orderID))
	})
}

// ListByOrderAndTailor streams one tailor's proposals on an order
func (r *ProposalRepository) ListByOrderAndTailor(ctx context.Context, orderID uint, tailorID string) iter.Seq2[models.Proposal, error] {
	return stream[models.Proposal](ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return recentFirst(db.Model(&models.Proposal{}).Where("order_id = ? AND tailor_id = ?", orderID, tailorID))
	})
}

// ListByTailor streams every proposal a tailor submitted, most recent first
func (r *ProposalRepository) ListByTailor(ctx context.Context, tailorID string) iter.Seq2[models.Proposal, error] {
	return stream[models.Proposal](ctx, r.db, func(db *gorm.DB) *gorm.DB {
		return recentFirst(db.Model(&models.Proposal{}).Where("tailor_id = ?", tailorID))
	})
}

// CountByTailor counts a tailor's proposals in the given status
func (r *ProposalRepository) CountByTailor(ctx context.Context, tailorID string, status models.ProposalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("tailor_id = ? AND status = ?", tailorID, status).
		Count(&count).Error
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func recentFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
