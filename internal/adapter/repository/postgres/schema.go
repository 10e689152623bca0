package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		account_number VARCHAR(20) NOT NULL UNIQUE,
		account_name VARCHAR(255) NOT NULL,
		balance NUMERIC(19, 5) NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL,
		account_status VARCHAR(16) NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		reference VARCHAR(255) NOT NULL UNIQUE,
		amount NUMERIC(19, 5) NOT NULL,
		fee NUMERIC(19, 5) NOT NULL DEFAULT 0,
		billed_amount NUMERIC(19, 5) NOT NULL,
		currency VARCHAR(3) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		status VARCHAR(32) NOT NULL,
		status_message TEXT NOT NULL DEFAULT '',
		commission_worthy BOOLEAN NOT NULL DEFAULT FALSE,
		commission NUMERIC(19, 5) NOT NULL DEFAULT 0,
		source_account_number VARCHAR(20) NOT NULL,
		destination_account_number VARCHAR(20) NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_reference_amount_created_status
		ON transactions (reference, amount, created_at, status)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_source_destination
		ON transactions (source_account_number, destination_account_number)`,
}

// Migrate creates the tables and indexes if they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
