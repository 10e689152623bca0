package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the lifecycle state of an account
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusInactive  AccountStatus = "INACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

// IsValid reports whether the currency is one the system holds accounts in
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyNGN, CurrencyUSD, CurrencyGBP, CurrencyEUR:
		return true
	default:
		return false
	}
}

const (
	MinAccountNumberLength = 10
	MaxAccountNumberLength = 20
)

// Account represents an internal account that can send and receive transfers
type Account struct {
	ID            uuid.UUID
	AccountNumber string
	AccountName   string
	Balance       decimal.Decimal
	Currency      Currency
	Status        AccountStatus
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if !ValidAccountNumber(a.AccountNumber) {
		return errors.New("account number must be between 10 and 20 characters")
	}

	if a.AccountName == "" {
		return errors.New("account name cannot be empty")
	}

	if !a.Currency.IsValid() {
		return errors.New("account currency is invalid")
	}

	if a.Balance.IsNegative() {
		return errors.New("account balance cannot be negative")
	}

	return nil
}

// IsActive reports whether the account can take part in a transfer
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive && !a.Deleted
}

// ValidAccountNumber checks the length rule shared by accounts and transfer requests
func ValidAccountNumber(number string) bool {
	return len(number) >= MinAccountNumberLength && len(number) <= MaxAccountNumberLength
}
