package domain

import (
	"errors"
	"time"
)

// Type classifies a transaction as money in or money out.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single ledger entry owned by an account.
type Transaction struct {
	ID          string
	AccountID   string
	Type        Type
	Description string
	Amount      float64
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// Validate validates the transaction for persistence.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return errors.New("account id is required")
	}
	if !t.Type.Valid() {
		return errors.New("type must be income or expense")
	}
	if t.Description == "" {
		return errors.New("description is required")
	}
	if t.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}
