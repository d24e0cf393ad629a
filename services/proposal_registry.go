package services

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProposalRegistry owns bids and their pending-side transitions
type ProposalRegistry struct {
	store *repository.Store
	now   func() time.Time
}

// SubmitProposal records a pending bid by tailorID on an open order
func (r *ProposalRegistry) SubmitProposal(ctx context.Context, orderID uint, tailorID string, price decimal.Decimal, hours int, description string) (*models.Proposal, error) {
	if problem := models.AmountProblem("price", price); problem != "" {
		return nil, apperrors.NewValidation("VALIDATION_ERROR", problem)
	}
	if hours <= 0 {
		return nil, apperrors.NewValidation("VALIDATION_ERROR", "turnaround hours must be positive")
	}

	proposal := &models.Proposal{
		OrderID:         orderID,
		TailorID:        tailorID,
		Price:           price,
		TurnaroundHours: hours,
		Description:     strings.TrimSpace(description),
		Status:          models.ProposalPending,
		CreatedAt:       r.now().UTC(),
	}
	proposal.UpdatedAt = proposal.CreatedAt

	err := r.store.WithTx(ctx, func(tx *repository.Store) error {
		// Acceptance and cancellation wait on this lock, so they either
		// happen before the status check or see the new bid.
		order, err := tx.Orders().GetForShare(ctx, orderID)
		if err != nil {
			return lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
		}
		if order.ClientID == tailorID {
			return apperrors.NewNotAuthorized("FORBIDDEN", "Clients cannot bid on their own orders")
		}
		if order.Status != models.OrderOpen {
			return apperrors.NewInvalidState("ORDER_NOT_OPEN", "Order is not accepting proposals")
		}

		pending, err := tx.Proposals().HasPending(ctx, orderID, tailorID)
		if err != nil {
			return err
		}
		if pending {
			return apperrors.NewInvalidState("PROPOSAL_ALREADY_PENDING", "Withdraw the pending proposal before submitting a new one")
		}

		if err := tx.Proposals().Create(ctx, proposal); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperrors.NewInvalidState("PROPOSAL_ALREADY_PENDING", "Withdraw the pending proposal before submitting a new one")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, txErr(err, "Failed to submit proposal")
	}

	logger.Log.Info("proposal submitted",
		zap.Uint("order_id", orderID),
		zap.Uint("proposal_id", proposal.ID),
		zap.String("tailor_id", tailorID),
	)
	return proposal, nil
}

// WithdrawProposal lets the submitting tailor cancel a pending bid
func (r *ProposalRegistry) WithdrawProposal(ctx context.Context, proposalID uint, tailorID string) (*models.Proposal, error) {
	proposal, err := r.store.Proposals().Get(ctx, proposalID)
	if err != nil {
		return nil, lookupErr(err, "PROPOSAL_NOT_FOUND", "Proposal not found")
	}
	if proposal.TailorID != tailorID {
		return nil, apperrors.NewNotAuthorized("FORBIDDEN", "Only the submitting tailor can withdraw this proposal")
	}

	return r.transition(ctx, proposal, models.ProposalCancelled)
}

// RejectProposal lets the order's client turn down a pending bid
func (r *ProposalRegistry) RejectProposal(ctx context.Context, proposalID uint, clientID string) (*models.Proposal, error) {
	proposal, err := r.store.Proposals().Get(ctx, proposalID)
	if err != nil {
		return nil, lookupErr(err, "PROPOSAL_NOT_FOUND", "Proposal not found")
	}
	order, err := r.store.Orders().Get(ctx, proposal.OrderID)
	if err != nil {
		return nil, lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
	}
	if order.ClientID != clientID {
		return nil, apperrors.NewNotAuthorized("FORBIDDEN", "Only the order's client can reject this proposal")
	}

	return r.transition(ctx, proposal, models.ProposalRejected)
}

func (r *ProposalRegistry) transition(ctx context.Context, proposal *models.Proposal, to models.ProposalStatus) (*models.Proposal, error) {
	if proposal.Status != models.ProposalPending {
		return nil, apperrors.NewInvalidState("PROPOSAL_NOT_PENDING", "Proposal is no longer pending")
	}

	updated, err := r.store.Proposals().TransitionStatus(ctx, proposal.ID, models.ProposalPending, to)
	if err != nil {
		return nil, apperrors.NewPersistence("Failed to update proposal", err)
	}
	if !updated {
		return nil, apperrors.NewInvalidState("PROPOSAL_NOT_PENDING", "Proposal is no longer pending")
	}

	proposal.Status = to
	logger.Log.Info("proposal closed",
		zap.Uint("proposal_id", proposal.ID),
		zap.String("status", string(to)),
	)
	return proposal, nil
}

// GetProposal returns a proposal to one of its parties: the bidding tailor or
// the order's client
func (r *ProposalRegistry) GetProposal(ctx context.Context, proposalID uint, viewerID string) (*models.Proposal, error) {
	proposal, err := r.store.Proposals().Get(ctx, proposalID)
	if err != nil {
		return nil, lookupErr(err, "PROPOSAL_NOT_FOUND", "Proposal not found")
	}
	if proposal.TailorID == viewerID {
		return proposal, nil
	}

	order, err := r.store.Orders().Get(ctx, proposal.OrderID)
	if err != nil {
		return nil, lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
	}
	if order.ClientID != viewerID {
		return nil, apperrors.NewNotAuthorized("FORBIDDEN", "You do not have permission to view this proposal")
	}
	return proposal, nil
}

// ListProposalsForOrder streams every proposal on an order, most recent first
func (r *ProposalRegistry) ListProposalsForOrder(ctx context.Context, orderID uint) iter.Seq2[models.Proposal, error] {
	return wrapSeq(r.store.Proposals().ListByOrder(ctx, orderID))
}

// ListProposalsForTailor streams a tailor's proposals, most recent first
func (r *ProposalRegistry) ListProposalsForTailor(ctx context.Context, tailorID string) iter.Seq2[models.Proposal, error] {
	return wrapSeq(r.store.Proposals().ListByTailor(ctx, tailorID))
}

// ListProposalsVisibleTo applies the visibility rule: the order's client sees
// every proposal, anyone else only their own.
func (r *ProposalRegistry) ListProposalsVisibleTo(ctx context.Context, orderID uint, viewerID string) (iter.Seq2[models.Proposal, error], error) {
	order, err := r.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
	}
	if order.ClientID == viewerID {
		return r.ListProposalsForOrder(ctx, orderID), nil
	}
	return wrapSeq(r.store.Proposals().ListByOrderAndTailor(ctx, orderID, viewerID)), nil
}
