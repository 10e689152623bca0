package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

// Collector records transfer, commission and summary activity on a private registry
type Collector struct {
	registry         *prometheus.Registry
	transfers        *prometheus.CounterVec
	transferDuration prometheus.Histogram
	commissions      *prometheus.CounterVec
	summaryRuns      prometheus.Counter
	logger           *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		transfers: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total number of transfer attempts by terminal status",
		}, []string{"status"}),
		transferDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "transfer_duration_seconds",
			Help:    "Time taken to process a transfer request",
			Buckets: prometheus.DefBuckets,
		}),
		commissions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "commission_entries_total",
			Help: "Ledger entries seen by the commission job by outcome",
		}, []string{"result"}),
		summaryRuns: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "daily_summary_runs_total",
			Help: "Total number of completed daily summary runs",
		}),
		logger: logger,
	}
}

func (c *Collector) ObserveTransfer(status domain.TransactionStatus, elapsed time.Duration) {
	c.transfers.WithLabelValues(string(status)).Inc()
	c.transferDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ObserveCommissionEntry(result string) {
	c.commissions.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveSummaryRun() {
	c.summaryRuns.Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr in the background
func (c *Collector) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		c.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}
