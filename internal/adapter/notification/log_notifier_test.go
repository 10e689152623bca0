package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_WritesSummary(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := notifier.NotifyDailySummary(context.Background(), &domain.Summary{
		StartDate:              time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		TotalTransactions:      3,
		SuccessfulTransactions: 2,
		FailedTransactions:     1,
		TotalAmount:            decimal.RequireFromString("100.00"),
		TotalCommission:        decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Daily transaction summary", record["msg"])
	assert.Equal(t, "2024-05-01", record["date"])
	assert.Equal(t, float64(3), record["total"])
	assert.Equal(t, "100", record["total_amount"])
}
