package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/transferflow-backend/internal/adapter/grpc"
	"github.com/simaogato/transferflow-backend/internal/adapter/metrics"
	"github.com/simaogato/transferflow-backend/internal/adapter/notification"
	"github.com/simaogato/transferflow-backend/internal/adapter/repository/memory"
	"github.com/simaogato/transferflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/transferflow-backend/internal/adapter/rest"
	"github.com/simaogato/transferflow-backend/internal/config"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/scheduler"
	"github.com/simaogato/transferflow-backend/internal/usecase/account"
	"github.com/simaogato/transferflow-backend/internal/usecase/commission"
	"github.com/simaogato/transferflow-backend/internal/usecase/fee"
	"github.com/simaogato/transferflow-backend/internal/usecase/query"
	"github.com/simaogato/transferflow-backend/internal/usecase/seeder"
	"github.com/simaogato/transferflow-backend/internal/usecase/summary"
	"github.com/simaogato/transferflow-backend/internal/usecase/transfer"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

type storage struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	transactor   domain.Transactor
	close        func() error
}

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// 2. Setup storage
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.close()

	if cfg.SeedDemoAccounts {
		if err := seeder.NewAccountSeeder(store.accounts, logger).Seed(ctx); err != nil {
			logger.Error("Failed to seed demo accounts", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Demo accounts seeded successfully")
	}

	// 3. Initialize services
	collector := metrics.NewCollector(logger)

	fees, err := fee.NewCalculator(cfg.FeePercentage, cfg.FeeCap)
	if err != nil {
		logger.Error("Invalid fee configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	accountService := account.NewAccountService(store.accounts, logger)
	transferService := transfer.NewTransferService(store.transactions, accountService, store.transactor, fees, cfg.Location, collector, logger)
	queryService := query.NewQueryService(store.transactions, logger)
	summaryService := summary.NewSummaryService(store.transactions, notification.NewLogNotifier(logger), cfg.Location, collector, logger)

	commissionService, err := commission.NewCommissionService(store.transactions, cfg.CommissionPercentage, cfg.Location, collector, logger)
	if err != nil {
		logger.Error("Invalid commission configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Schedule batch jobs
	jobs := scheduler.New(cfg.Location, logger)
	if err := jobs.RegisterCommission(cfg.CommissionCron, commissionService); err != nil {
		logger.Error("Failed to schedule commission job", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := jobs.RegisterSummary(cfg.SummaryCron, summaryService); err != nil {
		logger.Error("Failed to schedule summary job", slog.String("error", err.Error()))
		os.Exit(1)
	}
	jobs.Start()

	// 5. Start servers
	metricsServer := collector.StartServer(cfg.MetricsAddr)

	app := rest.NewApp(rest.NewHandler(transferService, queryService, summaryService, cfg.Location, logger), logger)
	go func() {
		addr := ":" + cfg.HTTPPort
		logger.Info("HTTP server listening", slog.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Error("Failed to serve HTTP", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.LoggingInterceptor(logger)),
	)
	grpcadapter.RegisterTransferServiceServer(grpcServer, grpcadapter.NewServer(transferService, queryService, summaryService, cfg.Location, logger))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Error("Failed to listen", slog.String("port", cfg.GRPCPort), slog.String("error", err.Error()))
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC server listening", slog.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	waitForShutdown(logger, app, grpcServer, metricsServer, jobs)
}

// openStorage selects the backing store named by the configuration
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Info("Using in-memory storage")
		s := memory.NewStore()
		return &storage{
			accounts:     memory.NewAccountRepository(s),
			transactions: memory.NewTransactionRepository(s),
			transactor:   memory.NewTransactor(s),
			close:        func() error { return nil },
		}, nil

	case config.StoragePostgres:
		db, err := connect(cfg.DBConnStr, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			accounts:     postgres.NewAccountRepository(db),
			transactions: postgres.NewTransactionRepository(db),
			transactor:   postgres.NewTransactor(db),
			close:        db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// connect retries while Postgres is still starting up
func connect(connStr string, logger *slog.Logger) (*postgres.DB, error) {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var db *postgres.DB
		if db, err = postgres.NewDB(connStr); err == nil {
			return db, nil
		}
		logger.Warn("Database not ready",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		time.Sleep(connectBackoff)
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, err)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down every server
func waitForShutdown(logger *slog.Logger, app *fiber.App, grpcServer *grpclib.Server, metricsServer *http.Server, jobs *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Shutting down gracefully", slog.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	jobs.Stop(ctx)

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("HTTP shutdown failed", slog.String("error", err.Error()))
	}

	grpcServer.GracefulStop()

	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Servers stopped")
}
