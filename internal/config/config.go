package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Env         string
	HTTPPort    string
	GRPCPort    string
	MetricsAddr string
	LogLevel    slog.Level

	StorageDriver string
	DBConnStr     string

	FeePercentage        decimal.Decimal
	CommissionPercentage decimal.Decimal
	FeeCap               decimal.Decimal
	Location             *time.Location
	SeedDemoAccounts     bool

	CommissionCron string
	SummaryCron    string
}

// Load reads .env if present and builds the Config from the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on System Env Variables")
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "9090"),
		MetricsAddr:    getEnv("METRICS_ADDR", ":9100"),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		DBConnStr:      dbConnectionString(),
		CommissionCron: getEnv("COMMISSION_CRON", "0 1 * * *"),
		SummaryCron:    getEnv("SUMMARY_CRON", "0 2 * * *"),
	}

	var err error
	if cfg.FeePercentage, err = getDecimal("APP_FEE_PERCENTAGE", "0.005"); err != nil {
		return nil, err
	}
	if cfg.CommissionPercentage, err = getDecimal("APP_COMMISSION_PERCENTAGE", "0.2"); err != nil {
		return nil, err
	}
	if cfg.FeeCap, err = getDecimal("APP_FEE_CAP", "100"); err != nil {
		return nil, err
	}

	zone := getEnv("APP_TIME_ZONE", "Africa/Lagos")
	if cfg.Location, err = time.LoadLocation(zone); err != nil {
		return nil, fmt.Errorf("invalid APP_TIME_ZONE %q: %w", zone, err)
	}

	if cfg.SeedDemoAccounts, err = strconv.ParseBool(getEnv("APP_SEED_DEMO_ACCOUNTS", "false")); err != nil {
		return nil, fmt.Errorf("invalid APP_SEED_DEMO_ACCOUNTS: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: expected %s or %s", cfg.StorageDriver, StoragePostgres, StorageMemory)
	}

	return cfg, nil
}

// dbConnectionString prefers DB_CONN_STR and otherwise assembles one from DB_* parts
func dbConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "transferflow"),
	)
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	raw := getEnv(key, fallback)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return value, nil
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
