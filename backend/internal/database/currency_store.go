package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// GetCurrency retrieves a currency by code.
// Returns nil, nil if the code is not in the catalog.
func GetCurrency(ctx context.Context, code string) (*models.Currency, error) {
	currency := &models.Currency{}
	query := `SELECT code, name, symbol FROM currencies WHERE code = $1`

	err := DB.QueryRow(ctx, query, code).
		Scan(&currency.Code, &currency.Name, &currency.Symbol)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // currency not found
		}
		return nil, fmt.Errorf("error getting currency %s: %w", code, err)
	}
	return currency, nil
}

// GetCurrencies retrieves the currency catalog ordered by code.
func GetCurrencies(ctx context.Context) ([]*models.Currency, error) {
	currencies := make([]*models.Currency, 0)
	query := `SELECT code, name, symbol FROM currencies ORDER BY code`

	rows, err := DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying currencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &models.Currency{}
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol); err != nil {
			return nil, fmt.Errorf("error scanning currency row: %w", err)
		}
		currencies = append(currencies, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating currency rows: %w", rows.Err())
	}
	return currencies, nil
}
