package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique constraint violated")
)

// Store is the typed entry point to the marketplace tables. A Store obtained
// inside WithTx routes every repository call through that transaction.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open GORM connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn inside a single database transaction. The transaction is
// rolled back when fn returns an error and committed otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{db: s.db}
}

func (s *Store) Proposals() *ProposalRepository {
	return &ProposalRepository{db: s.db}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{db: s.db}
}

func (s *Store) Inspirations() *InspirationRepository {
	return &InspirationRepository{db: s.db}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// classify maps driver errors onto the package sentinels
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}

	// SQLite without error translation only reports the constraint in the text
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}

	return err
}

// stream runs the query built by build and yields one row at a time. Every
// range over the returned sequence issues a fresh query, so the sequence can
// be restarted. The connection stays checked out until iteration stops.
func stream[T any](ctx context.Context, db *gorm.DB, build func(*gorm.DB) *gorm.DB) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		rows, err := build(db.WithContext(ctx)).Rows()
		if err != nil {
			yield(zero, classify(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var item T
			if err := db.WithContext(ctx).ScanRows(rows, &item); err != nil {
				yield(zero, classify(err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, classify(err))
		}
	}
}

// Collect drains a sequence into a slice, stopping at the first error
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	items := []T{}
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
