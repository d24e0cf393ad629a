package services

import (
	"errors"
	"iter"
	"time"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/repository"
	"gorm.io/gorm"
)

// Policy holds the lifecycle choices that differ between deployments
type Policy struct {
	// AutoRejectOnAccept rejects the competing pending proposals of an order
	// in the same transaction that accepts one of them.
	AutoRejectOnAccept bool
	// MonotonicProgress refuses progress updates lower than the current value.
	MonotonicProgress bool
}

// DefaultPolicy keeps competing proposals pending and forbids progress going backwards
func DefaultPolicy() Policy {
	return Policy{MonotonicProgress: true}
}

// Option customizes a Marketplace
type Option func(*Marketplace)

// WithClock replaces time.Now as the source of server-assigned timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Marketplace) {
		m.now = now
	}
}

// Marketplace bundles the order/proposal lifecycle components over one store
type Marketplace struct {
	Orders        *OrderLedger
	Proposals     *ProposalRegistry
	Acceptance    *AcceptanceCoordinator
	Progress      *ProgressTracker
	Conversations *ConversationLog
	Dashboard     *Dashboard
	Profiles      *ProfileDirectory

	store *repository.Store
	now   func() time.Time
}

// NewMarketplace wires every lifecycle component to db
func NewMarketplace(db *gorm.DB, policy Policy, opts ...Option) *Marketplace {
	m := &Marketplace{
		store: repository.NewStore(db),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.Orders = &OrderLedger{store: m.store, now: m.now}
	m.Proposals = &ProposalRegistry{store: m.store, now: m.now}
	m.Acceptance = &AcceptanceCoordinator{store: m.store, policy: policy}
	m.Progress = &ProgressTracker{store: m.store, policy: policy}
	m.Conversations = &ConversationLog{store: m.store, now: m.now}
	m.Dashboard = &Dashboard{store: m.store}
	m.Profiles = &ProfileDirectory{store: m.store}
	return m
}

// Store returns the data-access layer the marketplace writes through
func (m *Marketplace) Store() *repository.Store {
	return m.store
}

var marketplaceInstance *Marketplace

// InitMarketplace builds the process-wide marketplace
func InitMarketplace(db *gorm.DB, policy Policy, opts ...Option) *Marketplace {
	marketplaceInstance = NewMarketplace(db, policy, opts...)
	return marketplaceInstance
}

// GetMarketplace returns the initialized marketplace instance
func GetMarketplace() *Marketplace {
	return marketplaceInstance
}

// SetMarketplace sets the marketplace instance (primarily for testing)
func SetMarketplace(m *Marketplace) {
	marketplaceInstance = m
}

// lookupErr turns a repository read failure into a taxonomy error
func lookupErr(err error, notFoundCode, notFoundMessage string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(notFoundCode, notFoundMessage)
	}
	return apperrors.NewPersistence("Failed to read from the database", err)
}

// txErr passes taxonomy errors raised inside a transaction through and wraps
// everything else (driver, commit) as a persistence failure.
func txErr(err error, message string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewPersistence(message, err)
}

// wrapSeq converts stream errors into persistence failures
func wrapSeq[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for item, err := range seq {
			if err != nil {
				yield(item, apperrors.NewPersistence("Failed to read from the database", err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
