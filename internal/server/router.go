package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	accounthandler "fintrack/backend/internal/account/handler"
	accountrepo "fintrack/backend/internal/account/repository"
	authhandler "fintrack/backend/internal/auth/handler"
	authservice "fintrack/backend/internal/auth/service"
	"fintrack/backend/internal/security"
	"fintrack/backend/internal/server/middleware"
	transactionhandler "fintrack/backend/internal/transaction/handler"
	transactionrepo "fintrack/backend/internal/transaction/repository"
)

// Pinger reports storage reachability for the health endpoint (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds the dependencies the router wires into handlers.
type Deps struct {
	Auth            *authservice.AuthService
	AccountRepo     accountrepo.Repository
	TransactionRepo transactionrepo.Repository
	Tokens          *security.TokenProvider
	// HealthPinger is used by /health for readiness. If nil, the DB check is
	// skipped and /health reports liveness only.
	HealthPinger Pinger
}

// NewRouter assembles the full HTTP surface.
//
// Route → handler mapping:
//   - /health                      → healthHandler (no auth, no telemetry)
//   - /api/auth/*                  → internal/auth/handler (change-password pair behind auth)
//   - /api/users/me                → internal/account/handler (behind auth)
//   - /api/transactions[/...]      → internal/transaction/handler (behind auth)
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.ClientIPMiddleware())
	r.Use(middleware.Telemetry(map[string]bool{"/health": true}))

	r.HandleFunc("/health", healthHandler(deps.HealthPinger)).Methods("GET")

	auth := authhandler.NewAuthHandler(deps.Auth)
	auth.Register(r)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.RequireAuth(deps.Tokens, deps.AccountRepo))
	auth.RegisterProtected(protected)
	accounthandler.NewProfileHandler(deps.AccountRepo).Register(protected)
	transactionhandler.NewTransactionHandler(deps.TransactionRepo).Register(protected)

	return r
}

func healthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["db"] = "unreachable"
			} else {
				body["db"] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("health: encode response: %v", err)
		}
	}
}
