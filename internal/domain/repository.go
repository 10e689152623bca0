package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// GetActiveByNumber retrieves a non-deleted ACTIVE account by its account number.
	// Returns ErrAccountNotFound if none matches.
	// Inside a store transaction the row stays locked until commit.
	GetActiveByNumber(ctx context.Context, accountNumber string) (*Account, error)

	// GetByNumber retrieves a non-deleted account regardless of status
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)

	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// UpdateBalance persists a new balance for the account
	UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error
}

// TransactionRepository defines the interface for ledger persistence operations
type TransactionRepository interface {
	// Create inserts a ledger entry. Returns ErrDuplicateReference if the
	// reference is already taken.
	Create(ctx context.Context, tx *Transaction) error

	// Update rewrites a ledger entry by ID
	Update(ctx context.Context, tx *Transaction) error

	// GetByReference retrieves an entry by its unique reference.
	// Returns ErrTransactionNotFound if none matches.
	GetByReference(ctx context.Context, reference string) (*Transaction, error)

	// ListByStatusAndCreatedAtBetween returns entries of one status created in [start, end]
	ListByStatusAndCreatedAtBetween(ctx context.Context, status TransactionStatus, start, end time.Time) ([]*Transaction, error)

	// ListByCreatedAtBetween returns all entries created in [start, end]
	ListByCreatedAtBetween(ctx context.Context, start, end time.Time) ([]*Transaction, error)

	// Search returns one page of entries matching the filter, newest first,
	// together with the total number of matches
	Search(ctx context.Context, filter *TransactionFilter, page PageRequest) ([]*Transaction, int, error)
}

// Transactor runs a unit of work inside a single store transaction.
// If fn returns an error every write made through ctx is rolled back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
