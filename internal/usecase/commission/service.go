package commission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// Entry outcomes reported to the Recorder
const (
	ResultProcessed = "processed"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
)

// Recorder counts per-entry outcomes of a commission run
type Recorder interface {
	ObserveCommissionEntry(result string)
}

// RunResult reports what a single commission run did
type RunResult struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Processed   int
	Skipped     int
	Failed      int
}

// CommissionService tags yesterday's successful transfers as commission-worthy
type CommissionService struct {
	TransactionRepo domain.TransactionRepository
	Rate            decimal.Decimal
	Recorder        Recorder

	location *time.Location
	logger   *slog.Logger
}

// NewCommissionService creates a new CommissionService instance
func NewCommissionService(
	transactionRepo domain.TransactionRepository,
	rate decimal.Decimal,
	location *time.Location,
	recorder Recorder,
	logger *slog.Logger,
) (*CommissionService, error) {
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: commission rate cannot be negative", domain.ErrValidation)
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommissionService{
		TransactionRepo: transactionRepo,
		Rate:            rate,
		Recorder:        recorder,
		location:        location,
		logger:          logger,
	}, nil
}

// ProcessCommissions accrues commission on every SUCCESSFUL entry created on the
// calendar day before now. Entries already tagged are skipped, so reruns are safe.
// A failing entry is logged and counted; it never aborts the run.
func (s *CommissionService) ProcessCommissions(ctx context.Context, now time.Time) (*RunResult, error) {
	start, end := domain.DayWindow(now.In(s.location).AddDate(0, 0, -1), s.location)

	s.logger.InfoContext(ctx, "Starting commission processing",
		slog.Time("window_start", start),
		slog.Time("window_end", end))

	transactions, err := s.TransactionRepo.ListByStatusAndCreatedAtBetween(ctx, domain.TransactionStatusSuccessful, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list successful transactions: %w", err)
	}

	result := &RunResult{WindowStart: start, WindowEnd: end}

	for _, tx := range transactions {
		if tx.CommissionWorthy {
			result.Skipped++
			s.observe(ResultSkipped)
			continue
		}

		if err := s.accrue(ctx, tx); err != nil {
			result.Failed++
			s.observe(ResultFailed)
			s.logger.ErrorContext(ctx, "Failed to process commission",
				slog.String("reference", tx.Reference),
				slog.String("error", err.Error()))
			continue
		}

		result.Processed++
		s.observe(ResultProcessed)
	}

	s.logger.InfoContext(ctx, "Commission processing completed",
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))

	return result, nil
}

func (s *CommissionService) accrue(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.MarkCommission(s.Rate); err != nil {
		return err
	}

	if err := s.TransactionRepo.Update(ctx, tx); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Commission accrued",
		slog.String("reference", tx.Reference),
		slog.String("fee", tx.Fee.String()),
		slog.String("commission", tx.Commission.String()))

	return nil
}

func (s *CommissionService) observe(result string) {
	if s.Recorder != nil {
		s.Recorder.ObserveCommissionEntry(result)
	}
}
