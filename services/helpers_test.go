package services

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"github.com/Pedroffda/alinhavo-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clientID      = "auth0|client"
	otherClientID = "auth0|other-client"
	tailorA       = "auth0|tailor-a"
	tailorB       = "auth0|tailor-b"
	tailorC       = "auth0|tailor-c"
)

// testClock is a settable clock for server-assigned timestamps
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMarketplace(t *testing.T, policy Policy) (*Marketplace, *testClock) {
	t.Helper()
	clock := newTestClock()
	return NewMarketplace(testutil.NewTestDB(t), policy, WithClock(clock.Now)), clock
}

func intPtr(v int) *int { return &v }

func budget(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func validAttributes() OrderAttributes {
	return OrderAttributes{
		GarmentType:  "Wedding Dress",
		Size:         "M",
		Color:        "ivory",
		Material:     "silk",
		Style:        "A-line",
		Details:      "Lace sleeves",
		DeliveryDays: intPtr(30),
		MaxBudget:    budget("1500.00"),
	}
}

func createOrder(t *testing.T, m *Marketplace, owner string) *models.Order {
	t.Helper()
	order, err := m.Orders.CreateOrder(context.Background(), owner, validAttributes())
	require.NoError(t, err)
	return order
}

func submitProposal(t *testing.T, m *Marketplace, orderID uint, tailor string) *models.Proposal {
	t.Helper()
	proposal, err := m.Proposals.SubmitProposal(context.Background(), orderID, tailor, decimal.RequireFromString("900.00"), 72, "Hand-finished seams")
	require.NoError(t, err)
	return proposal
}

// acceptedProposal returns an order in progress with tailorA's proposal accepted
func acceptedProposal(t *testing.T, m *Marketplace) (*models.Order, *models.Proposal) {
	t.Helper()
	order := createOrder(t, m, clientID)
	proposal := submitProposal(t, m, order.ID, tailorA)
	result, err := m.Acceptance.AcceptProposal(context.Background(), order.ID, proposal.ID, clientID)
	require.NoError(t, err)
	return result.Order, result.Proposal
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind.String(), apperrors.KindOf(err).String(), "unexpected error: %v", err)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.From(err).Code)
}

func reloadOrder(t *testing.T, m *Marketplace, id uint) *models.Order {
	t.Helper()
	order, err := m.Store().Orders().Get(context.Background(), id)
	require.NoError(t, err)
	return order
}

func reloadProposal(t *testing.T, m *Marketplace, id uint) *models.Proposal {
	t.Helper()
	proposal, err := m.Store().Proposals().Get(context.Background(), id)
	require.NoError(t, err)
	return proposal
}

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	items, err := repository.Collect(seq)
	require.NoError(t, err)
	return items
}
