package services

import (
	"context"
	"testing"

	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarketplace_FullLifecycle walks one order from creation to completion
func TestMarketplace_FullLifecycle(t *testing.T) {
	m, _ := newTestMarketplace(t, DefaultPolicy())
	ctx := context.Background()

	order, err := m.Orders.CreateOrder(ctx, clientID, validAttributes())
	require.NoError(t, err)

	open := collect(t, m.Orders.ListOpenOrders(ctx, OpenOrderFilter{GarmentType: "wedding"}))
	require.Len(t, open, 1)
	assert.Equal(t, order.ID, open[0].ID)

	bidA, err := m.Proposals.SubmitProposal(ctx, order.ID, tailorA, decimal.RequireFromString("1200"), 96, "Silk from my own supplier")
	require.NoError(t, err)
	bidB, err := m.Proposals.SubmitProposal(ctx, order.ID, tailorB, decimal.RequireFromString("1100"), 120, "")
	require.NoError(t, err)

	_, err = m.Proposals.RejectProposal(ctx, bidB.ID, clientID)
	require.NoError(t, err)

	accepted, err := m.Acceptance.AcceptProposal(ctx, order.ID, bidA.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderInProgress, accepted.Order.Status)

	assert.Empty(t, collect(t, m.Orders.ListOpenOrders(ctx, OpenOrderFilter{})))

	_, err = m.Conversations.PostMessage(ctx, bidA.ID, clientID, "When is the first fitting?")
	require.NoError(t, err)
	_, err = m.Conversations.PostMessage(ctx, bidA.ID, tailorA, "Next Tuesday.")
	require.NoError(t, err)

	for _, progress := range []int{25, 50, 100} {
		_, err = m.Progress.UpdateProgress(ctx, bidA.ID, tailorA, progress)
		require.NoError(t, err)
	}

	final := reloadOrder(t, m, order.ID)
	assert.Equal(t, models.OrderCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, tailorA, *final.AssignedTailorID)

	summary, err := m.Dashboard.TailorSummary(ctx, tailorA)
	require.NoError(t, err)
	assert.Equal(t, &TailorSummary{Completed: 1}, summary)

	assert.Len(t, collect(t, m.Conversations.ListMessages(ctx, bidA.ID)), 2)
}

func TestTailorSummary(t *testing.T) {
	m, _ := newTestMarketplace(t, DefaultPolicy())
	ctx := context.Background()

	acceptedProposal(t, m)
	_, done := acceptedProposal(t, m)
	_, err := m.Progress.UpdateProgress(ctx, done.ID, tailorA, 100)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		order := createOrder(t, m, otherClientID)
		submitProposal(t, m, order.ID, tailorA)
	}

	summary, err := m.Dashboard.TailorSummary(ctx, tailorA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.InProgress)
	assert.Equal(t, int64(1), summary.Completed)
	assert.Equal(t, int64(2), summary.PendingProposals)

	empty, err := m.Dashboard.TailorSummary(ctx, tailorC)
	require.NoError(t, err)
	assert.Equal(t, &TailorSummary{}, empty)
}

func TestMarketplaceSingleton(t *testing.T) {
	previous := GetMarketplace()
	t.Cleanup(func() { SetMarketplace(previous) })

	m, _ := newTestMarketplace(t, DefaultPolicy())
	SetMarketplace(m)
	assert.Same(t, m, GetMarketplace())
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()
	assert.False(t, policy.AutoRejectOnAccept)
	assert.True(t, policy.MonotonicProgress)
}
