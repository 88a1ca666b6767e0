package database

import (
	"context"
	"fmt"

	"github.com/Jamshid777/exwebfullstack/backend/internal/auth"
	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// Seed ensures the reference data the booth needs at startup: the admin
// operator, the currency catalog and a zero balance row per currency.
// Idempotent; safe to run on every boot.
func Seed(ctx context.Context, adminUsername, adminPassword string) error {
	if err := seedAdmin(ctx, adminUsername, adminPassword); err != nil {
		return err
	}
	return seedCurrenciesAndBalances(ctx)
}

func seedAdmin(ctx context.Context, username, password string) error {
	existing, err := GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}
	if _, err := CreateUser(ctx, username, hash); err != nil {
		return fmt.Errorf("error creating admin user: %w", err)
	}
	return nil
}

func seedCurrenciesAndBalances(ctx context.Context) error {
	currencies := []models.Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$"},
		{Code: "UZS", Name: "Uzbek So'm", Symbol: "so'm"},
		{Code: "USDT", Name: "Tether", Symbol: "₮"},
	}

	for _, c := range currencies {
		_, err := DB.Exec(ctx,
			`INSERT INTO currencies (code, name, symbol) VALUES ($1, $2, $3)
			 ON CONFLICT (code) DO NOTHING`,
			c.Code, c.Name, c.Symbol)
		if err != nil {
			return fmt.Errorf("error seeding currency %s: %w", c.Code, err)
		}

		_, err = DB.Exec(ctx,
			`INSERT INTO balances (currency_code) VALUES ($1)
			 ON CONFLICT (currency_code) DO NOTHING`,
			c.Code)
		if err != nil {
			return fmt.Errorf("error seeding balance for %s: %w", c.Code, err)
		}
	}
	return nil
}
