package services

import (
	"context"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"go.uber.org/zap"
)

// AcceptanceResult is the committed state after a proposal is accepted
type AcceptanceResult struct {
	Order    *models.Order    `json:"order"`
	Proposal *models.Proposal `json:"proposal"`
	// Rejected counts competing pending proposals closed by the same call
	Rejected int64 `json:"rejected"`
}

// AcceptanceCoordinator resolves an order to exactly one winning proposal
type AcceptanceCoordinator struct {
	store  *repository.Store
	policy Policy
}

// AcceptProposal assigns the proposal's tailor to the order. The order moves
// open -> in_progress and the proposal pending -> accepted in one
// transaction; the order update is conditional on the order still being open
// so that only one of several concurrent callers can win.
func (a *AcceptanceCoordinator) AcceptProposal(ctx context.Context, orderID, proposalID uint, clientID string) (*AcceptanceResult, error) {
	result := &AcceptanceResult{}

	err := a.store.WithTx(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
		}
		if order.ClientID != clientID {
			return apperrors.NewNotAuthorized("FORBIDDEN", "Only the order's client can accept proposals")
		}
		if order.Status != models.OrderOpen {
			return apperrors.NewInvalidState("ORDER_NOT_OPEN", "Order is no longer open")
		}

		proposal, err := tx.Proposals().Get(ctx, proposalID)
		if err != nil {
			return lookupErr(err, "PROPOSAL_NOT_FOUND", "Proposal not found")
		}
		if proposal.OrderID != orderID {
			return apperrors.NewInvalidState("PROPOSAL_ORDER_MISMATCH", "Proposal does not belong to this order")
		}
		if proposal.Status != models.ProposalPending {
			return apperrors.NewInvalidState("PROPOSAL_NOT_PENDING", "Proposal is no longer pending")
		}

		fields, err := models.StatusFields(models.OrderInProgress, proposal.TailorID)
		if err != nil {
			return err
		}
		fields["progress"] = 0
		claimed, err := tx.Orders().UpdateIfStatus(ctx, orderID, []models.OrderStatus{models.OrderOpen}, fields)
		if err != nil {
			return err
		}
		if !claimed {
			return apperrors.NewInvalidState("ORDER_NOT_OPEN", "Order was taken by another proposal")
		}

		accepted, err := tx.Proposals().TransitionStatus(ctx, proposalID, models.ProposalPending, models.ProposalAccepted)
		if err != nil {
			return err
		}
		if !accepted {
			return apperrors.NewInvalidState("PROPOSAL_NOT_PENDING", "Proposal changed state while being accepted")
		}

		if a.policy.AutoRejectOnAccept {
			if result.Rejected, err = tx.Proposals().RejectPending(ctx, orderID, proposalID); err != nil {
				return err
			}
		}

		if result.Order, err = tx.Orders().Get(ctx, orderID); err != nil {
			return err
		}
		result.Proposal, err = tx.Proposals().Get(ctx, proposalID)
		return err
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.InvalidState) {
			logger.Log.Warn("proposal acceptance failed",
				zap.Uint("order_id", orderID),
				zap.Uint("proposal_id", proposalID),
				zap.Error(err),
			)
		}
		return nil, txErr(err, "Failed to accept proposal")
	}

	logger.Log.Info("proposal accepted",
		zap.Uint("order_id", orderID),
		zap.Uint("proposal_id", proposalID),
		zap.String("tailor_id", result.Proposal.TailorID),
		zap.Int64("rejected", result.Rejected),
	)
	return result, nil
}
