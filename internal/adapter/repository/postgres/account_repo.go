package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, account_number, account_name, balance, currency, account_status, deleted, created_at, updated_at`

// GetActiveByNumber retrieves an ACTIVE account by its number.
// Inside a store transaction the row is locked until commit.
func (r *accountRepository) GetActiveByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1 AND account_status = $2 AND deleted = FALSE
	`
	if inTransaction(ctx) {
		query += ` FOR UPDATE`
	}

	return r.get(ctx, query, accountNumber, string(domain.AccountStatusActive))
}

// GetByNumber retrieves an account by its number regardless of status
func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1 AND deleted = FALSE
	`

	return r.get(ctx, query, accountNumber)
}

func (r *accountRepository) get(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var account domain.Account
	var balanceStr string

	err := r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(
		&account.ID,
		&account.AccountNumber,
		&account.AccountName,
		&balanceStr,
		&account.Currency,
		&account.Status,
		&account.Deleted,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAccountNotFound, args[0])
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	account.Balance = balance

	return &account, nil
}

// Create creates a new account
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, account_number, account_name, balance, currency, account_status, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.conn(ctx).QueryRowContext(ctx, query,
		account.ID,
		account.AccountNumber,
		account.AccountName,
		account.Balance.String(),
		string(account.Currency),
		string(account.Status),
		account.Deleted,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// UpdateBalance persists a new balance for the account
func (r *accountRepository) UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE account_number = $2 AND deleted = FALSE
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query, balance.String(), accountNumber)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber)
	}

	return nil
}
