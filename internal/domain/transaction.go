package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the terminal outcome of a transfer attempt.
// The zero value means the entry has not been settled yet.
type TransactionStatus string

const (
	TransactionStatusSuccessful       TransactionStatus = "SUCCESSFUL"
	TransactionStatusInsufficientFund TransactionStatus = "INSUFFICIENT_FUND"
	TransactionStatusFailed           TransactionStatus = "FAILED"
)

// IsTerminal reports whether the status is one a ledger entry can be persisted with
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusSuccessful, TransactionStatusInsufficientFund, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// ParseTransactionStatus converts user input into a TransactionStatus
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	status := TransactionStatus(s)
	if !status.IsTerminal() {
		return "", errors.New("invalid status. Allowed values: SUCCESSFUL, INSUFFICIENT_FUND, FAILED")
	}
	return status, nil
}

// Status messages recorded on ledger entries
const (
	MessageSuccessful          = "Transaction Successful"
	MessageSameAccount         = "Source and destination accounts cannot be the same"
	MessageSourceCurrency      = "Currency mismatch detected on source account"
	MessageDestinationCurrency = "Currency mismatch detected on destination account"
	MessageInsufficientFunds   = "Insufficient funds in source account"
	MessageProcessingError     = "An error occurred during transaction processing"
)

// Transaction is a ledger entry: one record of an attempted transfer
type Transaction struct {
	ID                       uuid.UUID
	Reference                string
	Amount                   decimal.Decimal
	Currency                 Currency
	Fee                      decimal.Decimal
	BilledAmount             decimal.Decimal // Amount + Fee, what the source is debited
	Description              string
	CreatedAt                time.Time
	Status                   TransactionStatus
	StatusMessage            string
	CommissionWorthy         bool
	Commission               decimal.Decimal
	SourceAccountNumber      string
	DestinationAccountNumber string
	Deleted                  bool
}

// Settle moves the entry into a terminal status
func (t *Transaction) Settle(status TransactionStatus, message string) {
	t.Status = status
	t.StatusMessage = message
}

// Validate ensures the ledger entry adheres to domain rules before it is persisted
func (t *Transaction) Validate() error {
	if t.Reference == "" {
		return errors.New("transaction reference cannot be empty")
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}

	if t.Fee.IsNegative() {
		return errors.New("transaction fee cannot be negative")
	}

	if !t.BilledAmount.Equal(t.Amount.Add(t.Fee)) {
		return errors.New("billed amount must equal amount plus fee")
	}

	if !t.Status.IsTerminal() {
		return errors.New("transaction status must be terminal")
	}

	if !t.CommissionWorthy && !t.Commission.IsZero() {
		return errors.New("commission can only be set on commission-worthy transactions")
	}

	return nil
}

// MarkCommission tags a successful entry as commission-worthy and accrues
// commission = fee * rate. An entry is only ever tagged once.
func (t *Transaction) MarkCommission(rate decimal.Decimal) error {
	if t.Status != TransactionStatusSuccessful {
		return errors.New("only successful transactions are commission-worthy")
	}

	if t.CommissionWorthy {
		return errors.New("commission already processed")
	}

	if rate.IsNegative() {
		return errors.New("commission rate cannot be negative")
	}

	t.CommissionWorthy = true
	t.Commission = t.Fee.Mul(rate)
	return nil
}
