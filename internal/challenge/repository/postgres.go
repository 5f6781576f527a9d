package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/backend/internal/challenge"
	"fintrack/backend/internal/challenge/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the challenge. The challenge must have ID and CodeHash set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_challenges (id, email, code_hash, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Email, c.CodeHash, string(c.Purpose), c.ExpiresAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Verify looks up challenges matching (email, purpose, code). Newest first; an
// unexpired match wins. A matched-but-expired challenge yields ErrCodeExpired,
// no match at all yields ErrCodeNotFound. Read-only; nothing is consumed.
func (r *PostgresRepository) Verify(ctx context.Context, email string, purpose domain.Purpose, code string) (*domain.Challenge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, code_hash, purpose, expires_at, created_at
		 FROM otp_challenges
		 WHERE email = $1 AND purpose = $2 AND code_hash = $3
		 ORDER BY created_at DESC`,
		email, string(purpose), challenge.HashOTP(code))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	var expired *domain.Challenge
	for rows.Next() {
		c := &domain.Challenge{}
		var p string
		if err := rows.Scan(&c.ID, &c.Email, &c.CodeHash, &p, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.Purpose = domain.Purpose(p)
		if !c.Expired(now) {
			return c, nil
		}
		if expired == nil {
			expired = c
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if expired != nil {
		return nil, ErrCodeExpired
	}
	return nil, ErrCodeNotFound
}

// DeleteAll removes every challenge for (email, purpose) and returns the
// deleted row count. The count lets callers detect that a concurrent verify
// already consumed the codes.
func (r *PostgresRepository) DeleteAll(ctx context.Context, email string, purpose domain.Purpose) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE email = $1 AND purpose = $2`,
		email, string(purpose))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
