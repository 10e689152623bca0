package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// Notifier delivers a generated daily summary to whoever needs it
type Notifier interface {
	NotifyDailySummary(ctx context.Context, summary *domain.Summary) error
}

// Recorder counts completed daily summary runs
type Recorder interface {
	ObserveSummaryRun()
}

// SummaryService aggregates ledger windows
type SummaryService struct {
	TransactionRepo domain.TransactionRepository
	Notifier        Notifier
	Recorder        Recorder

	location *time.Location
	logger   *slog.Logger
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(
	transactionRepo domain.TransactionRepository,
	notifier Notifier,
	location *time.Location,
	recorder Recorder,
	logger *slog.Logger,
) *SummaryService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryService{
		TransactionRepo: transactionRepo,
		Notifier:        notifier,
		Recorder:        recorder,
		location:        location,
		logger:          logger,
	}
}

// Summarize aggregates every ledger entry created in [start, end].
// Logic:
//   - TotalAmount: sum of amounts over all entries, whatever their status
//   - TotalCommission: sum of commission over commission-worthy entries
//   - FailedTransactions: FAILED plus INSUFFICIENT_FUND
func (s *SummaryService) Summarize(ctx context.Context, start, end time.Time) (*domain.Summary, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: summary window ends before it starts", domain.ErrValidation)
	}

	s.logger.InfoContext(ctx, "Starting transaction summary",
		slog.Time("start", start),
		slog.Time("end", end))

	transactions, err := s.TransactionRepo.ListByCreatedAtBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	summary := &domain.Summary{
		StartDate:       start,
		EndDate:         end,
		TotalAmount:     decimal.Zero,
		TotalCommission: decimal.Zero,
	}

	for _, tx := range transactions {
		summary.TotalTransactions++
		summary.TotalAmount = summary.TotalAmount.Add(tx.Amount)

		if tx.CommissionWorthy {
			summary.TotalCommission = summary.TotalCommission.Add(tx.Commission)
		}

		switch tx.Status {
		case domain.TransactionStatusSuccessful:
			summary.SuccessfulTransactions++
		case domain.TransactionStatusInsufficientFund:
			summary.InsufficientFundTransactions++
			summary.FailedTransactions++
		case domain.TransactionStatusFailed:
			summary.FailedTransactions++
		}
	}

	s.logger.InfoContext(ctx, "Transaction summary computed",
		slog.Int("total", summary.TotalTransactions),
		slog.Int("successful", summary.SuccessfulTransactions),
		slog.Int("failed", summary.FailedTransactions),
		slog.String("total_amount", summary.TotalAmount.String()),
		slog.String("total_commission", summary.TotalCommission.String()))

	return summary, nil
}

// DailySummary aggregates the calendar day containing date in the configured zone
func (s *SummaryService) DailySummary(ctx context.Context, date time.Time) (*domain.Summary, error) {
	start, end := domain.DayWindow(date, s.location)
	return s.Summarize(ctx, start, end)
}

// GenerateDailySummary summarizes the day before now and hands it to the notifier
func (s *SummaryService) GenerateDailySummary(ctx context.Context, now time.Time) (*domain.Summary, error) {
	yesterday := now.In(s.location).AddDate(0, 0, -1)

	summary, err := s.DailySummary(ctx, yesterday)
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		if err := s.Notifier.NotifyDailySummary(ctx, summary); err != nil {
			return summary, fmt.Errorf("failed to deliver daily summary: %w", err)
		}
	}

	if s.Recorder != nil {
		s.Recorder.ObserveSummaryRun()
	}

	s.logger.InfoContext(ctx, "Daily summary generated", slog.Time("date", summary.StartDate))
	return summary, nil
}
