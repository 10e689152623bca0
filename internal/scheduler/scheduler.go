package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/commission"
)

// CommissionJob is the entry point of the nightly commission run
type CommissionJob interface {
	ProcessCommissions(ctx context.Context, now time.Time) (*commission.RunResult, error)
}

// SummaryJob is the entry point of the nightly summary run
type SummaryJob interface {
	GenerateDailySummary(ctx context.Context, now time.Time) (*domain.Summary, error)
}

// Scheduler triggers the batch jobs on cron specs evaluated in the configured zone
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	logger   *slog.Logger
}

func New(location *time.Location, logger *slog.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		location: location,
		logger:   logger,
	}
}

// RegisterCommission schedules the commission job on spec
func (s *Scheduler) RegisterCommission(spec string, job CommissionJob) error {
	return s.register("commission", spec, func(ctx context.Context, now time.Time) error {
		_, err := job.ProcessCommissions(ctx, now)
		return err
	})
}

// RegisterSummary schedules the daily summary job on spec
func (s *Scheduler) RegisterSummary(spec string, job SummaryJob) error {
	return s.register("daily_summary", spec, func(ctx context.Context, now time.Time) error {
		_, err := job.GenerateDailySummary(ctx, now)
		return err
	})
}

func (s *Scheduler) register(name, spec string, run func(ctx context.Context, now time.Time) error) error {
	_, err := s.cron.AddFunc(spec, func() { s.runJob(name, run) })
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for %s job: %w", spec, name, err)
	}
	s.logger.Info("Scheduled job", slog.String("job", name), slog.String("spec", spec))
	return nil
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context, now time.Time) error) {
	started := time.Now()
	s.logger.Info("Job started", slog.String("job", name))

	if err := run(context.Background(), started.In(s.location)); err != nil {
		s.logger.Error("Job failed",
			slog.String("job", name),
			slog.String("error", err.Error()))
		return
	}

	s.logger.Info("Job finished",
		slog.String("job", name),
		slog.Duration("elapsed", time.Since(started)))
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
}
