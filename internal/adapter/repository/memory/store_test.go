package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, repo domain.AccountRepository, number, balance string, status domain.AccountStatus) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Account{
		ID:            uuid.New(),
		AccountNumber: number,
		AccountName:   "Holder " + number,
		Balance:       decimal.RequireFromString(balance),
		Currency:      domain.CurrencyNGN,
		Status:        status,
	})
	require.NoError(t, err)
}

func newEntry(reference string, status domain.TransactionStatus, createdAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:                       uuid.New(),
		Reference:                reference,
		Amount:                   decimal.NewFromInt(10),
		Fee:                      decimal.RequireFromString("0.05"),
		BilledAmount:             decimal.RequireFromString("10.05"),
		Currency:                 domain.CurrencyNGN,
		CreatedAt:                createdAt,
		Status:                   status,
		SourceAccountNumber:      "0123456789",
		DestinationAccountNumber: "9876543210",
	}
}

func TestAccountRepository_GetActiveByNumber(t *testing.T) {
	store := NewStore()
	repo := NewAccountRepository(store)
	seedAccount(t, repo, "0123456789", "100", domain.AccountStatusActive)
	seedAccount(t, repo, "1111111111", "100", domain.AccountStatusSuspended)

	tests := []struct {
		name    string
		number  string
		wantErr error
	}{
		{name: "active account", number: "0123456789"},
		{name: "suspended account is hidden", number: "1111111111", wantErr: domain.ErrAccountNotFound},
		{name: "unknown account", number: "2222222222", wantErr: domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := repo.GetActiveByNumber(context.Background(), tt.number)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.number, acc.AccountNumber)
		})
	}

	// suspended accounts are still visible to GetByNumber
	acc, err := repo.GetByNumber(context.Background(), "1111111111")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusSuspended, acc.Status)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	store := NewStore()
	repo := NewAccountRepository(store)
	seedAccount(t, repo, "0123456789", "100", domain.AccountStatusActive)

	acc, err := repo.GetActiveByNumber(context.Background(), "0123456789")
	require.NoError(t, err)
	acc.Balance = decimal.Zero

	fresh, err := repo.GetActiveByNumber(context.Background(), "0123456789")
	require.NoError(t, err)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(100)))
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	store := NewStore()
	repo := NewAccountRepository(store)
	seedAccount(t, repo, "0123456789", "100", domain.AccountStatusActive)

	err := repo.Create(context.Background(), &domain.Account{AccountNumber: "0123456789"})
	assert.Error(t, err)
}

func TestTransactionRepository_DuplicateReference(t *testing.T) {
	repo := NewTransactionRepository(NewStore())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newEntry("REF-1", domain.TransactionStatusSuccessful, time.Now())))
	err := repo.Create(ctx, newEntry("REF-1", domain.TransactionStatusFailed, time.Now()))

	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestTransactionRepository_UpdateAndGet(t *testing.T) {
	repo := NewTransactionRepository(NewStore())
	ctx := context.Background()

	entry := newEntry("REF-1", domain.TransactionStatusSuccessful, time.Now())
	require.NoError(t, repo.Create(ctx, entry))

	require.NoError(t, entry.MarkCommission(decimal.RequireFromString("0.2")))
	require.NoError(t, repo.Update(ctx, entry))

	got, err := repo.GetByReference(ctx, "REF-1")
	require.NoError(t, err)
	assert.True(t, got.CommissionWorthy)
	assert.True(t, got.Commission.Equal(decimal.RequireFromString("0.01")))

	_, err = repo.GetByReference(ctx, "REF-404")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	err = repo.Update(ctx, newEntry("REF-2", domain.TransactionStatusSuccessful, time.Now()))
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionRepository_ListByWindow(t *testing.T) {
	repo := NewTransactionRepository(NewStore())
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := day.Add(24*time.Hour - time.Nanosecond)

	require.NoError(t, repo.Create(ctx, newEntry("A", domain.TransactionStatusSuccessful, day)))
	require.NoError(t, repo.Create(ctx, newEntry("B", domain.TransactionStatusFailed, day.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newEntry("C", domain.TransactionStatusSuccessful, end)))
	require.NoError(t, repo.Create(ctx, newEntry("D", domain.TransactionStatusSuccessful, end.Add(time.Nanosecond))))

	all, err := repo.ListByCreatedAtBetween(ctx, day, end)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	successful, err := repo.ListByStatusAndCreatedAtBetween(ctx, domain.TransactionStatusSuccessful, day, end)
	require.NoError(t, err)
	require.Len(t, successful, 2)
	assert.Equal(t, "A", successful[0].Reference)
	assert.Equal(t, "C", successful[1].Reference)
}

func TestTransactionRepository_SearchPaginatesNewestFirst(t *testing.T) {
	repo := NewTransactionRepository(NewStore())
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, ref := range []string{"R0", "R1", "R2", "R3", "R4"} {
		require.NoError(t, repo.Create(ctx, newEntry(ref, domain.TransactionStatusSuccessful, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Create(ctx, newEntry("F0", domain.TransactionStatusFailed, base)))

	filter := domain.NewTransactionFilter().WithStatus(domain.TransactionStatusSuccessful)

	items, total, err := repo.Search(ctx, filter, domain.PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "R4", items[0].Reference)
	assert.Equal(t, "R3", items[1].Reference)

	items, _, err = repo.Search(ctx, filter, domain.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "R0", items[0].Reference)

	items, total, err = repo.Search(ctx, filter, domain.PageRequest{Page: 9, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, items)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	store := NewStore()
	accounts := NewAccountRepository(store)
	ledger := NewTransactionRepository(store)
	transactor := NewTransactor(store)
	ctx := context.Background()

	seedAccount(t, accounts, "0123456789", "100", domain.AccountStatusActive)
	seedAccount(t, accounts, "9876543210", "0", domain.AccountStatusActive)

	boom := errors.New("boom")
	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := accounts.UpdateBalance(ctx, "0123456789", decimal.NewFromInt(50)); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, "9876543210", decimal.NewFromInt(50)); err != nil {
			return err
		}
		if err := ledger.Create(ctx, newEntry("REF-1", domain.TransactionStatusSuccessful, time.Now())); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	source, _ := accounts.GetByNumber(ctx, "0123456789")
	destination, _ := accounts.GetByNumber(ctx, "9876543210")
	assert.True(t, source.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, destination.Balance.IsZero())

	_, err = ledger.GetByReference(ctx, "REF-1")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	// the reference is free again after rollback
	assert.NoError(t, ledger.Create(ctx, newEntry("REF-1", domain.TransactionStatusFailed, time.Now())))
}

func TestTransactor_CommitKeepsWrites(t *testing.T) {
	store := NewStore()
	accounts := NewAccountRepository(store)
	transactor := NewTransactor(store)
	ctx := context.Background()

	seedAccount(t, accounts, "0123456789", "100", domain.AccountStatusActive)

	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return accounts.UpdateBalance(ctx, "0123456789", decimal.NewFromInt(75))
	})
	require.NoError(t, err)

	acc, _ := accounts.GetByNumber(ctx, "0123456789")
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(75)))
}
