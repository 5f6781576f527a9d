package domain

import (
	"errors"
	"time"
)

// Account is the core identity record. Email is the immutable identity key;
// CredentialHash must never be exposed outside the service layer.
type Account struct {
	ID             string
	Username       string
	Email          string
	CredentialHash string
	Verified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate validates the account for persistence. Returns an error describing the first validation failure.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.Username == "" {
		return errors.New("username is required")
	}
	if a.CredentialHash == "" {
		return errors.New("credential hash is required")
	}
	return nil
}
