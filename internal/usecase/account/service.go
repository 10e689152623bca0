package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// AccountService handles account lookup and balance mutation
type AccountService struct {
	AccountRepo domain.AccountRepository

	locks  *keyedMutex
	logger *slog.Logger
}

// NewAccountService creates a new AccountService instance
func NewAccountService(accountRepo domain.AccountRepository, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		AccountRepo: accountRepo,
		locks:       newKeyedMutex(),
		logger:      logger,
	}
}

// Enquiry resolves an ACTIVE account by number.
// Returns an error wrapping domain.ErrAccountNotFound if none matches.
func (s *AccountService) Enquiry(ctx context.Context, accountNumber string) (*domain.Account, error) {
	s.logger.InfoContext(ctx, "Initiating account enquiry", slog.String("account_number", accountNumber))

	account, err := s.AccountRepo.GetActiveByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.WarnContext(ctx, "No active account found", slog.String("account_number", accountNumber))
			return nil, fmt.Errorf("%w: no active account found with number: %s", domain.ErrAccountNotFound, accountNumber)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountNumber, err)
	}

	return account, nil
}

// LockAccounts serializes balance mutation per account. Callers must hold the
// lock of every account they Debit or Credit until the mutation is committed.
func (s *AccountService) LockAccounts(accountNumbers ...string) (unlock func()) {
	return s.locks.lockAll(accountNumbers...)
}

// Debit subtracts amount from the account balance and persists it.
// The balance is never allowed to go negative.
func (s *AccountService) Debit(ctx context.Context, account *domain.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("debit amount must be positive")
	}

	s.logger.InfoContext(ctx, "Debiting account",
		slog.String("account_number", account.AccountNumber),
		slog.String("current_balance", account.Balance.String()),
		slog.String("amount", amount.String()))

	newBalance := account.Balance.Sub(amount)
	if newBalance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: account %s", domain.ErrInsufficientFunds, account.AccountNumber)
	}

	if err := s.AccountRepo.UpdateBalance(ctx, account.AccountNumber, newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to debit account %s: %w", account.AccountNumber, err)
	}
	account.Balance = newBalance

	s.logger.InfoContext(ctx, "Account debited successfully",
		slog.String("account_number", account.AccountNumber),
		slog.String("new_balance", newBalance.String()))

	return newBalance, nil
}

// Credit adds amount to the account balance and persists it
func (s *AccountService) Credit(ctx context.Context, account *domain.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("credit amount must be positive")
	}

	s.logger.InfoContext(ctx, "Crediting account",
		slog.String("account_number", account.AccountNumber),
		slog.String("current_balance", account.Balance.String()),
		slog.String("amount", amount.String()))

	newBalance := account.Balance.Add(amount)

	if err := s.AccountRepo.UpdateBalance(ctx, account.AccountNumber, newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit account %s: %w", account.AccountNumber, err)
	}
	account.Balance = newBalance

	s.logger.InfoContext(ctx, "Account credited successfully",
		slog.String("account_number", account.AccountNumber),
		slog.String("new_balance", newBalance.String()))

	return newBalance, nil
}
