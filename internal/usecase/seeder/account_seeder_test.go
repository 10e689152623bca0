package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetActiveByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error {
	args := m.Called(ctx, accountNumber, balance)
	return args.Error(0)
}

func TestAccountSeeder_Seed_AccountsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	seeder := NewAccountSeeder(mockRepo, nil)

	for _, demo := range DemoAccounts() {
		demo := demo
		mockRepo.On("GetByNumber", ctx, demo.AccountNumber).Return(nil, domain.ErrAccountNotFound)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(account *domain.Account) bool {
			return account.ID == demo.ID &&
				account.AccountNumber == demo.AccountNumber &&
				account.Status == domain.AccountStatusActive &&
				account.Balance.Equal(demo.Balance)
		})).Return(nil)
	}

	err := seeder.Seed(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", len(DemoAccounts()))
}

func TestAccountSeeder_Seed_AccountsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	seeder := NewAccountSeeder(mockRepo, nil)

	for _, demo := range DemoAccounts() {
		mockRepo.On("GetByNumber", ctx, demo.AccountNumber).Return(&domain.Account{ID: demo.ID, AccountNumber: demo.AccountNumber}, nil)
	}

	err := seeder.Seed(ctx)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccountSeeder_Seed_LookupError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	seeder := NewAccountSeeder(mockRepo, nil)

	first := DemoAccounts()[0]
	mockRepo.On("GetByNumber", ctx, first.AccountNumber).Return(nil, errors.New("connection reset"))

	err := seeder.Seed(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to look up account")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccountSeeder_Seed_CreateError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	seeder := NewAccountSeeder(mockRepo, nil)

	first := DemoAccounts()[0]
	mockRepo.On("GetByNumber", ctx, first.AccountNumber).Return(nil, domain.ErrAccountNotFound)
	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("database error"))

	err := seeder.Seed(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed account")
}
