package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories behind one injection
// point. Implementations are constructed explicitly and passed into the
// services; nothing in this package is ambient global state.
type Repository interface {
	Customer() CustomerRepository
	User() UserRepository
	CallLog() CallLogRepository

	// WithTransaction runs fn with a Repository bound to one transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the storage engine's missing-row
// error, so services can translate it to their own not-found kind.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
