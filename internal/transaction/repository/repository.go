package repository

import (
	"context"
	"time"

	"fintrack/backend/internal/transaction/domain"
)

// Filter narrows and orders a transaction listing. Nil pointer fields mean
// "no constraint". Limit and Offset implement pagination and are always set
// by the caller.
type Filter struct {
	Type      domain.Type
	From      *time.Time
	To        *time.Time
	MinAmount *float64
	MaxAmount *float64
	SortBy    string // "occurred_at" or "amount"
	SortDesc  bool
	Limit     int32
	Offset    int32
}

// Repository defines persistence for transactions. All reads and deletes are
// scoped to the owning account; there is no cross-account access path.
type Repository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	// ListByAccount returns one page of matching transactions plus the total
	// match count ignoring pagination.
	ListByAccount(ctx context.Context, accountID string, f Filter) ([]*domain.Transaction, int64, error)
	// Delete removes the transaction if it belongs to accountID. Returns
	// false when no such transaction exists for that owner.
	Delete(ctx context.Context, id, accountID string) (bool, error)
}
