package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// GetTransactions retrieves operation history, newest first.
func GetTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	transactions := make([]*models.Transaction, 0)
	query := `SELECT ` + transactionColumns + `
			  FROM transactions
			  ORDER BY created_at DESC, seq DESC
			  LIMIT $1`

	rows, err := DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return transactions, nil
}

// GetTransactionByID retrieves one transaction.
// Returns nil, nil if it does not exist.
func GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(DB.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // transaction not found
		}
		return nil, fmt.Errorf("error getting transaction %s: %w", id, err)
	}
	return t, nil
}

// GetOpenLots retrieves a currency's unconsumed FIFO lots in consumption
// order. Read-only view; the matcher locks its own rows inside the unit of
// work.
func GetOpenLots(ctx context.Context, code string) ([]*models.Transaction, error) {
	lots := make([]*models.Transaction, 0)
	query := `SELECT ` + transactionColumns + `
			  FROM transactions
			  WHERE currency_code = $1
			    AND kind IN ('buy', 'deposit')
			    AND remaining_amount > 0
			  ORDER BY created_at ASC, seq ASC`

	rows, err := DB.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("error querying open lots for %s: %w", code, err)
	}
	defer rows.Close()

	for rows.Next() {
		lot, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning lot row for %s: %w", code, err)
		}
		lots = append(lots, lot)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating lot rows for %s: %w", code, rows.Err())
	}
	return lots, nil
}
