package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

// SearchInput holds the optional ledger filters. Zero values mean "not filtered".
type SearchInput struct {
	Status                   domain.TransactionStatus
	SourceAccountNumber      string
	DestinationAccountNumber string
	StartDate                *time.Time
	EndDate                  *time.Time
	Page                     int
	Size                     int
}

// Validate checks the filter values that reach the store
func (in SearchInput) Validate() error {
	if in.Status != "" && !in.Status.IsTerminal() {
		return fmt.Errorf("%w: invalid status. Allowed values: SUCCESSFUL, INSUFFICIENT_FUND, FAILED", domain.ErrValidation)
	}
	if in.SourceAccountNumber != "" && !domain.ValidAccountNumber(in.SourceAccountNumber) {
		return fmt.Errorf("%w: source account number must be between %d and %d characters",
			domain.ErrValidation, domain.MinAccountNumberLength, domain.MaxAccountNumberLength)
	}
	if in.DestinationAccountNumber != "" && !domain.ValidAccountNumber(in.DestinationAccountNumber) {
		return fmt.Errorf("%w: destination account number must be between %d and %d characters",
			domain.ErrValidation, domain.MinAccountNumberLength, domain.MaxAccountNumberLength)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	return nil
}

// Filter composes the conjunctive ledger filter for the input
func (in SearchInput) Filter() *domain.TransactionFilter {
	return domain.NewTransactionFilter().
		WithStatus(in.Status).
		WithSourceAccountNumber(in.SourceAccountNumber).
		WithDestinationAccountNumber(in.DestinationAccountNumber).
		CreatedBetween(in.StartDate, in.EndDate)
}

// QueryService answers filtered, paginated ledger lookups
type QueryService struct {
	TransactionRepo domain.TransactionRepository

	logger *slog.Logger
}

// NewQueryService creates a new QueryService instance
func NewQueryService(transactionRepo domain.TransactionRepository, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		TransactionRepo: transactionRepo,
		logger:          logger,
	}
}

// Search returns one page of matching entries, newest first. No match is an empty page.
func (s *QueryService) Search(ctx context.Context, in SearchInput) (*domain.TransactionPage, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	page := domain.PageRequest{Page: in.Page, Size: in.Size}.Normalize()
	filter := in.Filter()

	s.logger.DebugContext(ctx, "Searching transactions",
		slog.Int("predicates", len(filter.Predicates())),
		slog.Int("page", page.Page),
		slog.Int("size", page.Size))

	items, total, err := s.TransactionRepo.Search(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}

	return domain.NewTransactionPage(items, total, page), nil
}
