package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fintrack/backend/internal/transaction/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a transaction repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists one transaction.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, type, description, amount, occurred_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.AccountID, t.Type, t.Description, t.Amount, t.OccurredAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByAccount returns one page of the account's transactions matching f,
// plus the total match count.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, f Filter) ([]*domain.Transaction, int64, error) {
	where, args := buildWhere(accountID, f)

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	order := orderClause(f)
	query := fmt.Sprintf(
		`SELECT id, account_id, type, description, amount, occurred_at, created_at
		 FROM transactions %s %s LIMIT $%d OFFSET $%d`,
		where, order, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		t := &domain.Transaction{}
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Description, &t.Amount, &t.OccurredAt, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return out, total, nil
}

// Delete removes the transaction if owned by accountID.
func (r *PostgresRepository) Delete(ctx context.Context, id, accountID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func buildWhere(accountID string, f Filter) (string, []any) {
	conds := []string{"account_id = $1"}
	args := []any{accountID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at <= $%d", *f.To)
	}
	if f.MinAmount != nil {
		add("amount >= $%d", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("amount <= $%d", *f.MaxAmount)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// orderClause whitelists the sort column; anything unknown falls back to
// occurred_at so user input never reaches the SQL text.
func orderClause(f Filter) string {
	col := "occurred_at"
	if f.SortBy == "amount" {
		col = "amount"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}
