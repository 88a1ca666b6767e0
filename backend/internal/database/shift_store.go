package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

const shiftColumns = `id, start_time, end_time, starting_balances, ending_balances,
	gross_profit, total_expenses, net_profit`

// GetShifts retrieves shift history, newest first.
func GetShifts(ctx context.Context) ([]*models.Shift, error) {
	shifts := make([]*models.Shift, 0)
	query := `SELECT ` + shiftColumns + ` FROM shifts ORDER BY start_time DESC`

	rows, err := DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying shifts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning shift row: %w", err)
		}
		shifts = append(shifts, shift)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating shift rows: %w", rows.Err())
	}
	return shifts, nil
}

// GetActiveShift retrieves the open shift.
// Returns nil, nil when no shift is open.
func GetActiveShift(ctx context.Context) (*models.Shift, error) {
	query := `SELECT ` + shiftColumns + `
			  FROM shifts WHERE end_time IS NULL
			  ORDER BY start_time DESC LIMIT 1`

	shift, err := scanShift(DB.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no open shift
		}
		return nil, fmt.Errorf("error getting active shift: %w", err)
	}
	return shift, nil
}
