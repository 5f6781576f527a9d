// Server runs the fintrack HTTP API: OTP-gated signup/signin, password
// lifecycle, profile, and transactions. Configuration comes from the
// environment (see .env.example).
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"fintrack/backend/internal/audit"
	auditrepo "fintrack/backend/internal/audit/repository"
	"fintrack/backend/internal/config"
	"fintrack/backend/internal/db"
	"fintrack/backend/internal/db/migrate"
	"fintrack/backend/internal/notify"
	"fintrack/backend/internal/notify/mailer"
	"fintrack/backend/internal/security"
	"fintrack/backend/internal/server"
	"fintrack/backend/internal/server/middleware"
	"fintrack/backend/internal/telemetry/otel"

	accountrepo "fintrack/backend/internal/account/repository"
	authservice "fintrack/backend/internal/auth/service"
	challengerepo "fintrack/backend/internal/challenge/repository"
	transactionrepo "fintrack/backend/internal/transaction/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "fintrack-backend", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry: shutdown: %v", err)
		}
	}()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	accounts := accountrepo.NewPostgresRepository(conn)
	challenges := challengerepo.NewPostgresRepository(conn)
	transactions := transactionrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.ClientIP)

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	var sink notify.Sink
	if cfg.MailAPIKey != "" && cfg.MailAPIBaseURL != "" {
		sink = mailer.NewClient(cfg.MailAPIKey, cfg.MailAPIBaseURL, cfg.MailFrom)
	} else {
		if cfg.Env == "production" {
			log.Fatal("MAIL_API_KEY and MAIL_API_BASE_URL are required in production")
		}
		log.Println("mail API not configured, logging one-time codes instead")
		sink = notify.LogSink{}
	}

	authSvc := authservice.NewAuthService(accounts, challenges, hasher, tokens, sink, auditLogger, cfg.OTPTTL())

	router := server.NewRouter(server.Deps{
		Auth:            authSvc,
		AccountRepo:     accounts,
		TransactionRepo: transactions,
		Tokens:          tokens,
		HealthPinger:    conn,
	})

	if err := server.Run(ctx, cfg.HTTPAddr, router, 10*time.Second); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
