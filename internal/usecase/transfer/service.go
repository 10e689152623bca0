package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/account"
	"github.com/simaogato/transferflow-backend/internal/usecase/fee"
)

// Recorder receives one observation per finished transfer attempt
type Recorder interface {
	ObserveTransfer(status domain.TransactionStatus, elapsed time.Duration)
}

// TransferInput is a request to move Amount from the source to the destination account
type TransferInput struct {
	Reference                string
	Amount                   decimal.Decimal
	Currency                 domain.Currency
	Description              string
	SourceAccountNumber      string
	DestinationAccountNumber string
}

// Validate rejects malformed input before any account is touched
func (in TransferInput) Validate() error {
	if in.Reference == "" {
		return fmt.Errorf("%w: reference is required", domain.ErrValidation)
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	if !in.Currency.IsValid() {
		return fmt.Errorf("%w: currency %q is not supported", domain.ErrValidation, in.Currency)
	}
	if !domain.ValidAccountNumber(in.SourceAccountNumber) {
		return fmt.Errorf("%w: source account number must be between %d and %d characters",
			domain.ErrValidation, domain.MinAccountNumberLength, domain.MaxAccountNumberLength)
	}
	if !domain.ValidAccountNumber(in.DestinationAccountNumber) {
		return fmt.Errorf("%w: destination account number must be between %d and %d characters",
			domain.ErrValidation, domain.MinAccountNumberLength, domain.MaxAccountNumberLength)
	}
	return nil
}

// TransferResult describes what happened to a transfer request.
// Reason is nil on success and wraps one of the domain failure kinds otherwise.
type TransferResult struct {
	Transaction *domain.Transaction
	Success     bool
	Message     string
	Reason      error
}

// TransferService moves money between accounts and records every attempt in the ledger
type TransferService struct {
	TransactionRepo domain.TransactionRepository
	Accounts        *account.AccountService
	Transactor      domain.Transactor
	Fees            *fee.Calculator
	Recorder        Recorder

	// Now stamps ledger entries; it returns time in the configured zone
	Now func() time.Time

	logger *slog.Logger
}

// NewTransferService creates a new TransferService instance
func NewTransferService(
	transactionRepo domain.TransactionRepository,
	accounts *account.AccountService,
	transactor domain.Transactor,
	fees *fee.Calculator,
	location *time.Location,
	recorder Recorder,
	logger *slog.Logger,
) *TransferService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{
		TransactionRepo: transactionRepo,
		Accounts:        accounts,
		Transactor:      transactor,
		Fees:            fees,
		Recorder:        recorder,
		Now:             func() time.Time { return time.Now().In(location) },
		logger:          logger,
	}
}

// ProcessTransfer runs a transfer request through the pipeline and persists exactly one
// terminal ledger entry for it. Business-rule failures come back as an unsuccessful
// result with a nil error. A non-nil error means invalid input, a reused reference
// or a store fault.
func (s *TransferService) ProcessTransfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	started := time.Now()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With(slog.String("reference", in.Reference))
	log.InfoContext(ctx, "Processing transfer",
		slog.String("source", in.SourceAccountNumber),
		slog.String("destination", in.DestinationAccountNumber),
		slog.String("amount", in.Amount.String()),
		slog.String("currency", string(in.Currency)))

	if err := s.ensureUniqueReference(ctx, in.Reference); err != nil {
		return nil, err
	}

	entry := s.newEntry(in)

	source, err := s.Accounts.Enquiry(ctx, in.SourceAccountNumber)
	if err != nil {
		return s.rejectLookup(ctx, entry, started, in.SourceAccountNumber, err)
	}

	destination, err := s.Accounts.Enquiry(ctx, in.DestinationAccountNumber)
	if err != nil {
		return s.rejectLookup(ctx, entry, started, in.DestinationAccountNumber, err)
	}

	if source.AccountNumber == destination.AccountNumber {
		return s.reject(ctx, entry, started, domain.TransactionStatusFailed, domain.MessageSameAccount, domain.ErrSameAccount)
	}

	if source.Currency != in.Currency {
		return s.reject(ctx, entry, started, domain.TransactionStatusFailed, domain.MessageSourceCurrency, domain.ErrCurrencyMismatch)
	}
	if destination.Currency != in.Currency {
		return s.reject(ctx, entry, started, domain.TransactionStatusFailed, domain.MessageDestinationCurrency, domain.ErrCurrencyMismatch)
	}

	quote, err := s.Fees.Quote(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to quote fee: %w", err)
	}
	entry.Fee = quote.Fee
	entry.BilledAmount = quote.BilledAmount

	log.InfoContext(ctx, "Fee computed",
		slog.String("fee", quote.Fee.String()),
		slog.String("billed_amount", quote.BilledAmount.String()))

	if source.Balance.LessThan(quote.BilledAmount) {
		return s.reject(ctx, entry, started, domain.TransactionStatusInsufficientFund, domain.MessageInsufficientFunds, domain.ErrInsufficientFunds)
	}

	return s.execute(ctx, entry, started)
}

// execute debits, credits and records the entry as one unit of work while both
// account locks are held
func (s *TransferService) execute(ctx context.Context, entry *domain.Transaction, started time.Time) (*TransferResult, error) {
	unlock := s.Accounts.LockAccounts(entry.SourceAccountNumber, entry.DestinationAccountNumber)
	defer unlock()

	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		source, err := s.Accounts.Enquiry(ctx, entry.SourceAccountNumber)
		if err != nil {
			return err
		}
		destination, err := s.Accounts.Enquiry(ctx, entry.DestinationAccountNumber)
		if err != nil {
			return err
		}

		if _, err := s.Accounts.Debit(ctx, source, entry.BilledAmount); err != nil {
			return err
		}
		if _, err := s.Accounts.Credit(ctx, destination, entry.Amount); err != nil {
			return err
		}

		entry.Settle(domain.TransactionStatusSuccessful, domain.MessageSuccessful)
		return s.persist(ctx, entry)
	})

	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "Transfer completed", slog.String("reference", entry.Reference))
		s.observe(entry.Status, started)
		return &TransferResult{Transaction: entry, Success: true, Message: domain.MessageSuccessful}, nil

	case errors.Is(err, domain.ErrDuplicateReference):
		s.logger.WarnContext(ctx, "Reference taken by a concurrent transfer", slog.String("reference", entry.Reference))
		return nil, err

	case errors.Is(err, domain.ErrInsufficientFunds):
		return s.reject(ctx, entry, started, domain.TransactionStatusInsufficientFund, domain.MessageInsufficientFunds, domain.ErrInsufficientFunds)

	default:
		s.logger.ErrorContext(ctx, "Transfer execution failed, changes rolled back",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
		return s.reject(ctx, entry, started, domain.TransactionStatusFailed, domain.MessageProcessingError,
			fmt.Errorf("%w: %v", domain.ErrTransferExecution, err))
	}
}

// rejectLookup records a FAILED entry for a missing account; store faults are returned as is
func (s *TransferService) rejectLookup(ctx context.Context, entry *domain.Transaction, started time.Time, accountNumber string, err error) (*TransferResult, error) {
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	message := fmt.Sprintf("No active account found with number: %s", accountNumber)
	return s.reject(ctx, entry, started, domain.TransactionStatusFailed, message, err)
}

// reject settles the entry with a failure status and records it
func (s *TransferService) reject(ctx context.Context, entry *domain.Transaction, started time.Time, status domain.TransactionStatus, message string, reason error) (*TransferResult, error) {
	entry.Settle(status, message)

	s.logger.WarnContext(ctx, "Transfer rejected",
		slog.String("reference", entry.Reference),
		slog.String("status", string(status)),
		slog.String("message", message))

	if err := s.persist(ctx, entry); err != nil {
		return nil, err
	}

	s.observe(status, started)
	return &TransferResult{Transaction: entry, Success: false, Message: message, Reason: reason}, nil
}

func (s *TransferService) persist(ctx context.Context, entry *domain.Transaction) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}
	if err := s.TransactionRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return err
		}
		return fmt.Errorf("failed to record transaction %s: %w", entry.Reference, err)
	}
	return nil
}

func (s *TransferService) ensureUniqueReference(ctx context.Context, reference string) error {
	_, err := s.TransactionRepo.GetByReference(ctx, reference)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, reference)
	case errors.Is(err, domain.ErrTransactionNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check reference %s: %w", reference, err)
	}
}

func (s *TransferService) newEntry(in TransferInput) *domain.Transaction {
	return &domain.Transaction{
		ID:                       uuid.New(),
		Reference:                in.Reference,
		Amount:                   in.Amount,
		Currency:                 in.Currency,
		Fee:                      decimal.Zero,
		BilledAmount:             in.Amount,
		Description:              in.Description,
		CreatedAt:                s.Now(),
		Commission:               decimal.Zero,
		SourceAccountNumber:      in.SourceAccountNumber,
		DestinationAccountNumber: in.DestinationAccountNumber,
	}
}

func (s *TransferService) observe(status domain.TransactionStatus, started time.Time) {
	if s.Recorder == nil {
		return
	}
	s.Recorder.ObserveTransfer(status, time.Since(started))
}
