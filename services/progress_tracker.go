package services

import (
	"context"
	"fmt"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"go.uber.org/zap"
)

// ProgressTracker records how far the assigned tailor is with an order
type ProgressTracker struct {
	store  *repository.Store
	policy Policy
}

// ProgressResult is the committed state after a progress update
type ProgressResult struct {
	Order    *models.Order    `json:"order"`
	Proposal *models.Proposal `json:"proposal"`
}

// UpdateProgress sets the accepted proposal's progress and mirrors it onto the
// order. Reaching 100 completes the order.
func (p *ProgressTracker) UpdateProgress(ctx context.Context, proposalID uint, tailorID string, newProgress int) (*ProgressResult, error) {
	if newProgress < 0 || newProgress > 100 {
		return nil, apperrors.NewValidation("INVALID_PROGRESS", "progress must be between 0 and 100")
	}

	result := &ProgressResult{}
	err := p.store.WithTx(ctx, func(tx *repository.Store) error {
		proposal, err := tx.Proposals().Get(ctx, proposalID)
		if err != nil {
			return lookupErr(err, "PROPOSAL_NOT_FOUND", "Proposal not found")
		}
		if proposal.TailorID != tailorID {
			return apperrors.NewNotAuthorized("FORBIDDEN", "Only the assigned tailor can report progress")
		}
		if proposal.Status != models.ProposalAccepted {
			return apperrors.NewInvalidState("PROPOSAL_NOT_ACCEPTED", "Progress can only be reported on an accepted proposal")
		}
		if p.policy.MonotonicProgress && newProgress < proposal.Progress {
			return apperrors.NewValidation("PROGRESS_DECREASE",
				fmt.Sprintf("progress cannot go back from %d to %d", proposal.Progress, newProgress))
		}

		order, err := tx.Orders().Get(ctx, proposal.OrderID)
		if err != nil {
			return lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
		}
		if order.Status != models.OrderInProgress {
			return apperrors.NewInvalidState("ORDER_NOT_IN_PROGRESS", fmt.Sprintf("Order is %s", order.Status))
		}

		written, err := tx.Proposals().SetProgress(ctx, proposalID, proposal.Progress, newProgress)
		if err != nil {
			return err
		}
		if !written {
			return apperrors.NewPersistence("Progress was updated concurrently", nil)
		}

		fields := map[string]interface{}{}
		if newProgress == 100 {
			if fields, err = models.StatusFields(models.OrderCompleted, proposal.TailorID); err != nil {
				return err
			}
		}
		fields["progress"] = newProgress
		mirrored, err := tx.Orders().UpdateIfStatus(ctx, order.ID, []models.OrderStatus{models.OrderInProgress}, fields)
		if err != nil {
			return err
		}
		if !mirrored {
			return apperrors.NewPersistence("Order was updated concurrently", nil)
		}

		if result.Order, err = tx.Orders().Get(ctx, order.ID); err != nil {
			return err
		}
		result.Proposal, err = tx.Proposals().Get(ctx, proposalID)
		return err
	})
	if err != nil {
		return nil, txErr(err, "Failed to update progress")
	}

	logger.Log.Info("progress updated",
		zap.Uint("proposal_id", proposalID),
		zap.Uint("order_id", result.Order.ID),
		zap.Int("progress", newProgress),
		zap.String("order_status", string(result.Order.Status)),
	)
	return result, nil
}
