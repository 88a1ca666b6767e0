package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// GetBalance retrieves the booth's balance for one currency.
// Returns nil, nil if no balance row exists for the code.
func GetBalance(ctx context.Context, code string) (*models.Balance, error) {
	balance := &models.Balance{}
	query := `SELECT currency_code, amount, reserved, updated_at
			  FROM balances WHERE currency_code = $1`

	err := DB.QueryRow(ctx, query, code).
		Scan(&balance.CurrencyCode, &balance.Amount, &balance.Reserved, &balance.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no balance record for this currency
		}
		return nil, fmt.Errorf("error getting balance for %s: %w", code, err)
	}
	return balance, nil
}

// GetBalances retrieves every currency's balance, ordered by code.
func GetBalances(ctx context.Context) ([]*models.Balance, error) {
	balances := make([]*models.Balance, 0)
	query := `SELECT currency_code, amount, reserved, updated_at
			  FROM balances ORDER BY currency_code`

	rows, err := DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		balance := &models.Balance{}
		err := rows.Scan(&balance.CurrencyCode, &balance.Amount, &balance.Reserved, &balance.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning balance row: %w", err)
		}
		balances = append(balances, balance)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", rows.Err())
	}
	return balances, nil
}
