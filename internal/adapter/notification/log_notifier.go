package notification

import (
	"context"
	"log/slog"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

// LogNotifier delivers daily summaries to the structured log.
// It stands in for email delivery, which is not wired up.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDailySummary(ctx context.Context, summary *domain.Summary) error {
	n.logger.InfoContext(ctx, "Daily transaction summary",
		slog.String("date", summary.StartDate.Format("2006-01-02")),
		slog.Int("total", summary.TotalTransactions),
		slog.Int("successful", summary.SuccessfulTransactions),
		slog.Int("failed", summary.FailedTransactions),
		slog.Int("insufficient_fund", summary.InsufficientFundTransactions),
		slog.String("total_amount", summary.TotalAmount.String()),
		slog.String("total_commission", summary.TotalCommission.String()))
	return nil
}
