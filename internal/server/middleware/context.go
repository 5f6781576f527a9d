package middleware

import (
	"context"

	"fintrack/backend/internal/account/domain"
)

type contextKey struct{ name string }

var (
	accountKey  = contextKey{"account"}
	clientIPKey = contextKey{"client_ip"}
)

// WithAccount returns a context carrying the authenticated account.
// Handlers behind RequireAuth read it via GetAccount.
func WithAccount(ctx context.Context, a *domain.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// GetAccount returns the authenticated account from ctx and true if set.
func GetAccount(ctx context.Context) (*domain.Account, bool) {
	a, ok := ctx.Value(accountKey).(*domain.Account)
	return a, ok
}

// WithClientIP returns a context carrying the resolved client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP recorded by the ClientIPMiddleware, or
// "unknown" when none was recorded.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
