package repository

import (
	"context"
	"errors"

	"fintrack/backend/internal/account/domain"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
// The Postgres implementation derives it from the unique constraint on the
// insert itself, so concurrent signups for the same email cannot both succeed.
var ErrDuplicateEmail = errors.New("email already registered")

// Repository defines persistence for accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	// SetVerified marks the account verified. Idempotent.
	SetVerified(ctx context.Context, id string) error
	UpdateUsername(ctx context.Context, id, username string) error
	UpdateCredential(ctx context.Context, id, credentialHash string) error
}
