// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev account (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	accountdomain "fintrack/backend/internal/account/domain"
	accountrepo "fintrack/backend/internal/account/repository"
	"fintrack/backend/internal/config"
	"fintrack/backend/internal/db"
	"fintrack/backend/internal/db/migrate"
	"fintrack/backend/internal/security"
	transactiondomain "fintrack/backend/internal/transaction/domain"
	transactionrepo "fintrack/backend/internal/transaction/repository"
)

const (
	devEmail    = "dev@example.com"
	devPassword = "password123"
	devUsername = "dev"
)

var sampleTransactions = []struct {
	typ         transactiondomain.Type
	description string
	amount      float64
	daysAgo     int
}{
	{transactiondomain.TypeIncome, "salary", 3200, 20},
	{transactiondomain.TypeExpense, "rent", 1100, 18},
	{transactiondomain.TypeExpense, "groceries", 84.20, 12},
	{transactiondomain.TypeExpense, "utilities", 63.75, 9},
	{transactiondomain.TypeIncome, "freelance invoice", 450, 5},
	{transactiondomain.TypeExpense, "dining out", 37.90, 2},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accounts := accountrepo.NewPostgresRepository(conn)
	existing, err := accounts.GetByEmail(ctx, devEmail)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devEmail)
		return
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}
	now := time.Now().UTC()
	acct := &accountdomain.Account{
		ID:             uuid.New().String(),
		Username:       devUsername,
		Email:          devEmail,
		CredentialHash: hash,
		Verified:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := accounts.Create(ctx, acct); err != nil {
		log.Fatalf("seed: create account: %v", err)
	}

	transactions := transactionrepo.NewPostgresRepository(conn)
	for _, s := range sampleTransactions {
		t := &transactiondomain.Transaction{
			ID:          uuid.New().String(),
			AccountID:   acct.ID,
			Type:        s.typ,
			Description: s.description,
			Amount:      s.amount,
			OccurredAt:  now.AddDate(0, 0, -s.daysAgo),
			CreatedAt:   now,
		}
		if err := transactions.Create(ctx, t); err != nil {
			log.Fatalf("seed: create transaction: %v", err)
		}
	}

	log.Printf("seed: created %s with %d transactions (password %q)", devEmail, len(sampleTransactions), devPassword)
}
