package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// InitDB initializes the database connection pool.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	DB, err = pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := DB.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}

// Migrate creates the schema if it does not exist. The partial unique index on
// shifts is the storage-level backstop for the single-open-shift invariant.
func Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			username text UNIQUE NOT NULL,
			password_hash text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS currencies (
			code text PRIMARY KEY,
			name text NOT NULL,
			symbol text NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			currency_code text PRIMARY KEY REFERENCES currencies(code),
			amount numeric(20,8) NOT NULL DEFAULT 0,
			reserved numeric(20,8) NOT NULL DEFAULT 0,
			updated_at timestamptz NOT NULL DEFAULT now(),
			CHECK (amount >= reserved),
			CHECK (reserved >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS shifts (
			id uuid PRIMARY KEY,
			start_time timestamptz NOT NULL,
			end_time timestamptz,
			starting_balances jsonb,
			ending_balances jsonb,
			gross_profit numeric(20,4) NOT NULL DEFAULT 0,
			total_expenses numeric(20,4) NOT NULL DEFAULT 0,
			net_profit numeric(20,4) NOT NULL DEFAULT 0
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_shifts_single_open
			ON shifts ((true)) WHERE end_time IS NULL`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id uuid PRIMARY KEY,
			seq bigserial UNIQUE NOT NULL,
			shift_id uuid REFERENCES shifts(id),
			kind text NOT NULL,
			currency_code text NOT NULL REFERENCES currencies(code),
			amount numeric(20,8) NOT NULL,
			rate numeric(20,8),
			total_amount numeric(20,4),
			payment_currency text,
			uzs_rate numeric(20,4),
			total_amount_uzs numeric(20,4),
			paid_amount_usd numeric(20,4),
			paid_amount_uzs numeric(20,4),
			profit numeric(20,4),
			remaining_amount numeric(20,8),
			note text,
			wallet_address text,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_open_lots
			ON transactions (currency_code, created_at, seq)
			WHERE remaining_amount > 0`,
		`CREATE TABLE IF NOT EXISTS expense_categories (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id uuid PRIMARY KEY,
			shift_id uuid NOT NULL REFERENCES shifts(id),
			category_id uuid NOT NULL REFERENCES expense_categories(id),
			amount numeric(20,4) NOT NULL,
			currency_code text NOT NULL,
			amount_usd numeric(20,4) NOT NULL,
			uzs_rate numeric(20,4),
			note text,
			created_at timestamptz NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
