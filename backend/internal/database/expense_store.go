package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// GetExpenses retrieves expense history, newest first.
func GetExpenses(ctx context.Context) ([]*models.Expense, error) {
	expenses := make([]*models.Expense, 0)
	query := `SELECT id, shift_id, category_id, amount, currency_code, amount_usd,
				uzs_rate, note, created_at
			  FROM expenses ORDER BY created_at DESC`

	rows, err := DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e := &models.Expense{}
		err := rows.Scan(&e.ID, &e.ShiftID, &e.CategoryID, &e.Amount, &e.CurrencyCode,
			&e.AmountUSD, &e.UZSRate, &e.Note, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning expense row: %w", err)
		}
		expenses = append(expenses, e)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}
	return expenses, nil
}

// ErrDuplicateCategory is returned when a category name is already taken.
var ErrDuplicateCategory = errors.New("expense category already exists")

// CreateExpenseCategory inserts a new category with a unique name.
func CreateExpenseCategory(ctx context.Context, name string) (*models.ExpenseCategory, error) {
	category := &models.ExpenseCategory{Name: name}
	query := `INSERT INTO expense_categories (name) VALUES ($1) RETURNING id`

	err := DB.QueryRow(ctx, query, name).Scan(&category.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("error creating expense category %q: %w", name, err)
	}
	return category, nil
}

// GetExpenseCategories retrieves all categories ordered by name.
func GetExpenseCategories(ctx context.Context) ([]*models.ExpenseCategory, error) {
	categories := make([]*models.ExpenseCategory, 0)
	query := `SELECT id, name FROM expense_categories ORDER BY name`

	rows, err := DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying expense categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &models.ExpenseCategory{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning expense category row: %w", err)
		}
		categories = append(categories, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense category rows: %w", rows.Err())
	}
	return categories, nil
}
