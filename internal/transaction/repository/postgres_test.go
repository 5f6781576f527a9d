package repository

import (
	"testing"
	"time"

	"fintrack/backend/internal/transaction/domain"
)

func TestBuildWhere_AccountOnly(t *testing.T) {
	where, args := buildWhere("acct-1", Filter{})
	if where != "WHERE account_id = $1" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 1 || args[0] != "acct-1" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhere_AllFilters(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	min, max := 10.0, 100.0
	where, args := buildWhere("acct-1", Filter{
		Type:      domain.TypeExpense,
		From:      &from,
		To:        &to,
		MinAmount: &min,
		MaxAmount: &max,
	})

	want := "WHERE account_id = $1 AND type = $2 AND occurred_at >= $3 AND occurred_at <= $4 AND amount >= $5 AND amount <= $6"
	if where != want {
		t.Errorf("where = %q\nwant %q", where, want)
	}
	if len(args) != 6 {
		t.Errorf("args = %v", args)
	}
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		f    Filter
		want string
	}{
		{Filter{}, "ORDER BY occurred_at ASC"},
		{Filter{SortDesc: true}, "ORDER BY occurred_at DESC"},
		{Filter{SortBy: "amount"}, "ORDER BY amount ASC"},
		{Filter{SortBy: "amount", SortDesc: true}, "ORDER BY amount DESC"},
		{Filter{SortBy: "id; DROP TABLE transactions"}, "ORDER BY occurred_at ASC"},
	}
	for _, tc := range cases {
		if got := orderClause(tc.f); got != tc.want {
			t.Errorf("orderClause(%+v) = %q, want %q", tc.f, got, tc.want)
		}
	}
}
