package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/commission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_CountsTransfersByStatus(t *testing.T) {
	c := NewCollector(nil)

	c.ObserveTransfer(domain.TransactionStatusSuccessful, 10*time.Millisecond)
	c.ObserveTransfer(domain.TransactionStatusSuccessful, 20*time.Millisecond)
	c.ObserveTransfer(domain.TransactionStatusInsufficientFund, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transfers.WithLabelValues("SUCCESSFUL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transfers.WithLabelValues("INSUFFICIENT_FUND")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.transfers.WithLabelValues("FAILED")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.transferDuration))
}

func TestCollector_CommissionAndSummary(t *testing.T) {
	c := NewCollector(nil)

	c.ObserveCommissionEntry(commission.ResultProcessed)
	c.ObserveCommissionEntry(commission.ResultFailed)
	c.ObserveCommissionEntry(commission.ResultProcessed)
	c.ObserveSummaryRun()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.commissions.WithLabelValues(commission.ResultProcessed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commissions.WithLabelValues(commission.ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.summaryRuns))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.ObserveTransfer(domain.TransactionStatusFailed, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `transfers_total{status="FAILED"} 1`)
	assert.Contains(t, string(body), "transfer_duration_seconds_count 1")
}
