package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"fintrack/backend/internal/account/domain"
)

// Postgres unique_violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx,
		`SELECT id, username, email, credential_hash, verified, created_at, updated_at
		 FROM accounts WHERE id = $1`, id)
}

// GetByEmail returns the account with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx,
		`SELECT id, username, email, credential_hash, verified, created_at, updated_at
		 FROM accounts WHERE email = $1`, email)
}

// Create persists the account. The account must have ID set; it is not assigned
// by this method. Returns ErrDuplicateEmail when the email unique constraint
// rejects the insert.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, credential_hash, verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Username, a.Email, a.CredentialHash, a.Verified, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetVerified marks the account verified. Idempotent; a no-op when the row is
// already verified or missing.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET verified = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateUsername replaces the account's display name.
func (r *PostgresRepository) UpdateUsername(ctx context.Context, id, username string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET username = $2, updated_at = $3 WHERE id = $1`,
		id, username, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateCredential replaces the account's credential hash.
func (r *PostgresRepository) UpdateCredential(ctx context.Context, id, credentialHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET credential_hash = $2, updated_at = $3 WHERE id = $1`,
		id, credentialHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*domain.Account, error) {
	a := &domain.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Username, &a.Email, &a.CredentialHash, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
