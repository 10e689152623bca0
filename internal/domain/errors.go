package domain

import "errors"

var (
	// ErrValidation marks malformed input rejected before the engine runs
	ErrValidation = errors.New("validation failure")

	// ErrAccountNotFound means no active account matches an account number
	ErrAccountNotFound = errors.New("account not found")

	ErrSameAccount       = errors.New("source and destination accounts are the same")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateReference means a ledger entry with the same reference already exists
	ErrDuplicateReference = errors.New("duplicate transaction reference")

	// ErrTransferExecution wraps unexpected failures while moving money or persisting
	ErrTransferExecution = errors.New("transfer execution failure")

	ErrTransactionNotFound = errors.New("transaction not found")
)
