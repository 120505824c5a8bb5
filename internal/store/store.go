// Package store holds the durable record store contract and its
// backends. Callers can always distinguish "record absent" (ErrNotFound)
// from "store unreachable" (ErrUnavailable).
package store

import (
	"context"
	"errors"

	"github.com/despensa-app/despensa/internal/domain"
)

// ErrNotFound is returned when a Get targets an id the store does not
// hold. Absence is a normal outcome, not a failure.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable marks failures of the durable substrate itself: the
// store cannot be opened or an operation cannot complete. Wrapped errors
// carry the cause; the store never retries internally.
var ErrUnavailable = errors.New("store unavailable")

// Store is the durable keyed storage of product records with a secondary
// index by category. Upsert replaces any existing record with the same id
// atomically; a concurrent Get never observes a partial write. Display
// ordering is the engine's job, ListAll promises no particular order.
type Store interface {
	ListAll(ctx context.Context) ([]domain.ProductRecord, error)
	ListByCategory(ctx context.Context, cat domain.Category) ([]domain.ProductRecord, error)
	Get(ctx context.Context, id string) (*domain.ProductRecord, error)
	Upsert(ctx context.Context, rec *domain.ProductRecord) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// IsNotFound reports whether err means the record was absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
