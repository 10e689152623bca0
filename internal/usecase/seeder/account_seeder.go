package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// Fixed IDs for the demo accounts so reseeding never duplicates them
var (
	DemoAccountAdaID    = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	DemoAccountBayoID   = uuid.MustParse("00000000-0000-0000-0000-000000000102")
	DemoAccountChiomaID = uuid.MustParse("00000000-0000-0000-0000-000000000103")
)

// DemoAccount defines an account to be seeded for local runs
type DemoAccount struct {
	ID            uuid.UUID
	AccountNumber string
	AccountName   string
	Balance       decimal.Decimal
	Currency      domain.Currency
}

// DemoAccounts is the fixed set created when seeding is enabled
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			ID:            DemoAccountAdaID,
			AccountNumber: "0123456789",
			AccountName:   "Ada Obi",
			Balance:       decimal.NewFromInt(100000),
			Currency:      domain.CurrencyNGN,
		},
		{
			ID:            DemoAccountBayoID,
			AccountNumber: "9876543210",
			AccountName:   "Bayo Adeyemi",
			Balance:       decimal.NewFromInt(50000),
			Currency:      domain.CurrencyNGN,
		},
		{
			ID:            DemoAccountChiomaID,
			AccountNumber: "1122334455",
			AccountName:   "Chioma Eze",
			Balance:       decimal.NewFromInt(1000),
			Currency:      domain.CurrencyUSD,
		},
	}
}

// AccountSeeder creates the demo accounts that are missing
type AccountSeeder struct {
	repo   domain.AccountRepository
	logger *slog.Logger
}

// NewAccountSeeder creates a new AccountSeeder instance
func NewAccountSeeder(repo domain.AccountRepository, logger *slog.Logger) *AccountSeeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountSeeder{
		repo:   repo,
		logger: logger,
	}
}

// Seed ensures every demo account exists. Existing accounts are left untouched.
func (s *AccountSeeder) Seed(ctx context.Context) error {
	for _, demo := range DemoAccounts() {
		_, err := s.repo.GetByNumber(ctx, demo.AccountNumber)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("failed to look up account %s: %w", demo.AccountNumber, err)
		}

		account := &domain.Account{
			ID:            demo.ID,
			AccountNumber: demo.AccountNumber,
			AccountName:   demo.AccountName,
			Balance:       demo.Balance,
			Currency:      demo.Currency,
			Status:        domain.AccountStatusActive,
		}

		if err := account.Validate(); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", demo.AccountNumber, err)
		}

		s.logger.InfoContext(ctx, "Seeded demo account",
			slog.String("account_number", account.AccountNumber),
			slog.String("currency", string(account.Currency)))
	}

	return nil
}
