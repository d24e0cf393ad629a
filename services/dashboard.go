package services

import (
	"context"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
)

// TailorSummary is the tailor dashboard's counters
type TailorSummary struct {
	InProgress       int64 `json:"in_progress"`
	Completed        int64 `json:"completed"`
	PendingProposals int64 `json:"pending_proposals"`
}

// Dashboard aggregates per-user counters
type Dashboard struct {
	store *repository.Store
}

func (d *Dashboard) TailorSummary(ctx context.Context, tailorID string) (*TailorSummary, error) {
	var summary TailorSummary
	var err error

	if summary.InProgress, err = d.store.Orders().CountByTailor(ctx, tailorID, models.OrderInProgress); err != nil {
		return nil, apperrors.NewPersistence("Failed to load dashboard", err)
	}
	if summary.Completed, err = d.store.Orders().CountByTailor(ctx, tailorID, models.OrderCompleted); err != nil {
		return nil, apperrors.NewPersistence("Failed to load dashboard", err)
	}
	if summary.PendingProposals, err = d.store.Proposals().CountByTailor(ctx, tailorID, models.ProposalPending); err != nil {
		return nil, apperrors.NewPersistence("Failed to load dashboard", err)
	}
	return &summary, nil
}
