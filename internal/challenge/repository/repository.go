package repository

import (
	"context"
	"errors"

	"fintrack/backend/internal/challenge/domain"
)

var (
	// ErrCodeNotFound is returned by Verify when no challenge matches the
	// (email, purpose, code) triple at all.
	ErrCodeNotFound = errors.New("code not found")
	// ErrCodeExpired is returned by Verify when a challenge matches the triple
	// but its expiry has passed. Expired challenges are not deleted here; they
	// are simply unusable.
	ErrCodeExpired = errors.New("code expired")
)

// Repository defines persistence for one-time code challenges.
//
// Verify is read-only: a successful verify does not consume the code. Callers
// make codes single-use by following a successful Verify with DeleteAll and
// treating a zero deleted count as a lost race against a concurrent verify.
type Repository interface {
	Create(ctx context.Context, c *domain.Challenge) error
	// Verify returns the challenge matching (email, purpose, code), preferring
	// the most recently issued match. ErrCodeNotFound when no match exists;
	// ErrCodeExpired when the only matches are past expiry.
	Verify(ctx context.Context, email string, purpose domain.Purpose, code string) (*domain.Challenge, error)
	// DeleteAll removes every challenge for (email, purpose) and returns how
	// many rows were deleted.
	DeleteAll(ctx context.Context, email string, purpose domain.Purpose) (int64, error)
}
