package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	store *Store
}

// NewAccountRepository creates a new in-memory account repository
func NewAccountRepository(store *Store) domain.AccountRepository {
	return &accountRepository{store: store}
}

func (r *accountRepository) GetActiveByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, exists := r.store.accounts[accountNumber]
	if !exists || !account.IsActive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber)
	}

	cp := *account
	return &cp, nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, exists := r.store.accounts[accountNumber]
	if !exists || account.Deleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber)
	}

	cp := *account
	return &cp, nil
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.accounts[account.AccountNumber]; exists {
		return fmt.Errorf("account %s already exists", account.AccountNumber)
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	cp := *account
	r.store.accounts[account.AccountNumber] = &cp
	record(ctx, func() { delete(r.store.accounts, cp.AccountNumber) })

	return nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, exists := r.store.accounts[accountNumber]
	if !exists || account.Deleted {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber)
	}

	previousBalance, previousUpdatedAt := account.Balance, account.UpdatedAt
	account.Balance = balance
	account.UpdatedAt = time.Now()
	record(ctx, func() {
		account.Balance = previousBalance
		account.UpdatedAt = previousUpdatedAt
	})

	return nil
}
