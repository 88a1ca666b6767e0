package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/ledger"
	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// LedgerStore adapts the pgx pool to the ledger's unit-of-work contract.
type LedgerStore struct{}

func NewLedgerStore() *LedgerStore { return &LedgerStore{} }

func (*LedgerStore) Begin(ctx context.Context) (ledger.Tx, error) {
	tx, err := DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

// ledgerTx runs one engine operation inside a single pgx transaction with
// row-level locks on every balance, lot and shift row it touches.
type ledgerTx struct {
	tx pgx.Tx
}

func (l *ledgerTx) Commit(ctx context.Context) error {
	return l.tx.Commit(ctx)
}

func (l *ledgerTx) Rollback(ctx context.Context) error {
	err := l.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil // already committed, deferred rollback is a no-op
	}
	return err
}

func (l *ledgerTx) BalanceForUpdate(ctx context.Context, code string) (*models.Balance, error) {
	balance := &models.Balance{}
	query := `SELECT currency_code, amount, reserved, updated_at
			  FROM balances WHERE currency_code = $1 FOR UPDATE`

	err := l.tx.QueryRow(ctx, query, code).
		Scan(&balance.CurrencyCode, &balance.Amount, &balance.Reserved, &balance.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no balance row for this currency
		}
		return nil, fmt.Errorf("error locking balance for %s: %w", code, err)
	}
	return balance, nil
}

func (l *ledgerTx) AdjustBalance(ctx context.Context, code string, delta decimal.Decimal) error {
	query := `UPDATE balances
			  SET amount = amount + $1, updated_at = now()
			  WHERE currency_code = $2 AND amount + $1 >= reserved`

	cmdTag, err := l.tx.Exec(ctx, query, delta, code)
	if err != nil {
		return fmt.Errorf("error adjusting %s balance: %w", code, err)
	}

	// The engine checks sufficiency under the row lock before adjusting, so a
	// miss here means the balance row is gone or the guard was bypassed.
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("adjust %s by %s: %w", code, delta, ledger.ErrInsufficientBalance)
	}
	return nil
}

func (l *ledgerTx) ReserveFunds(ctx context.Context, code string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("reserve amount must be positive")
	}

	query := `UPDATE balances
			  SET reserved = reserved + $1, updated_at = now()
			  WHERE currency_code = $2 AND amount - reserved >= $1`

	cmdTag, err := l.tx.Exec(ctx, query, amount, code)
	if err != nil {
		return fmt.Errorf("error reserving %s funds: %w", code, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("reserve %s %s: %w", amount, code, ledger.ErrInsufficientBalance)
	}
	return nil
}

func (l *ledgerTx) ReleaseFunds(ctx context.Context, code string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("release amount must be positive")
	}

	query := `UPDATE balances
			  SET reserved = reserved - $1, updated_at = now()
			  WHERE currency_code = $2 AND reserved >= $1`

	cmdTag, err := l.tx.Exec(ctx, query, amount, code)
	if err != nil {
		return fmt.Errorf("error releasing %s funds: %w", code, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("failed to release %s %s: more than reserved", amount, code)
	}
	return nil
}

func (l *ledgerTx) BalanceSnapshot(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := l.tx.Query(ctx, `SELECT currency_code, amount FROM balances`)
	if err != nil {
		return nil, fmt.Errorf("error querying balance snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code string
		var amount decimal.Decimal
		if err := rows.Scan(&code, &amount); err != nil {
			return nil, fmt.Errorf("error scanning balance snapshot row: %w", err)
		}
		snapshot[code] = amount
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating balance snapshot: %w", rows.Err())
	}
	return snapshot, nil
}

const transactionColumns = `id, seq, shift_id, kind, currency_code, amount, rate,
	total_amount, payment_currency, uzs_rate, total_amount_uzs,
	paid_amount_usd, paid_amount_uzs, profit, remaining_amount,
	note, wallet_address, created_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID, &t.Seq, &t.ShiftID, &t.Kind, &t.CurrencyCode, &t.Amount, &t.Rate,
		&t.TotalAmount, &t.PaymentCurrency, &t.UZSRate, &t.TotalAmountUZS,
		&t.PaidUSD, &t.PaidUZS, &t.Profit, &t.Remaining,
		&t.Note, &t.WalletAddress, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (l *ledgerTx) OpenLots(ctx context.Context, code string) ([]*models.Transaction, error) {
	// Oldest lot first; seq breaks created_at ties so FIFO order is
	// deterministic under coarse clock resolution.
	query := `SELECT ` + transactionColumns + `
			  FROM transactions
			  WHERE currency_code = $1
			    AND kind IN ('buy', 'deposit')
			    AND remaining_amount > 0
			  ORDER BY created_at ASC, seq ASC
			  FOR UPDATE`

	rows, err := l.tx.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("error querying open lots for %s: %w", code, err)
	}
	defer rows.Close()

	lots := make([]*models.Transaction, 0)
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

func (l *ledgerTx) SetLotRemaining(ctx context.Context, id uuid.UUID, remaining decimal.Decimal) error {
	cmdTag, err := l.tx.Exec(ctx,
		`UPDATE transactions SET remaining_amount = $1 WHERE id = $2`, remaining, id)
	if err != nil {
		return fmt.Errorf("error updating lot %s remaining: %w", id, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("lot %s not found for remaining update", id)
	}
	return nil
}

func (l *ledgerTx) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	query := `INSERT INTO transactions (
				id, shift_id, kind, currency_code, amount, rate, total_amount,
				payment_currency, uzs_rate, total_amount_uzs, paid_amount_usd,
				paid_amount_uzs, profit, remaining_amount, note, wallet_address, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			  RETURNING seq`

	err := l.tx.QueryRow(ctx, query,
		t.ID, t.ShiftID, t.Kind, t.CurrencyCode, t.Amount, t.Rate, t.TotalAmount,
		t.PaymentCurrency, t.UZSRate, t.TotalAmountUZS, t.PaidUSD,
		t.PaidUZS, t.Profit, t.Remaining, t.Note, t.WalletAddress, t.CreatedAt,
	).Scan(&t.Seq)

	if err != nil {
		return fmt.Errorf("error inserting %s transaction: %w", t.Kind, err)
	}
	return nil
}

func (l *ledgerTx) ActiveShiftForUpdate(ctx context.Context) (*models.Shift, error) {
	query := `SELECT id, start_time, end_time, starting_balances, ending_balances,
				gross_profit, total_expenses, net_profit
			  FROM shifts WHERE end_time IS NULL
			  ORDER BY start_time DESC LIMIT 1
			  FOR UPDATE`

	shift, err := scanShift(l.tx.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no open shift
		}
		return nil, fmt.Errorf("error locking active shift: %w", err)
	}
	return shift, nil
}

func scanShift(row pgx.Row) (*models.Shift, error) {
	s := &models.Shift{}
	var starting, ending []byte
	err := row.Scan(&s.ID, &s.StartTime, &s.EndTime, &starting, &ending,
		&s.GrossProfit, &s.TotalExpenses, &s.NetProfit)
	if err != nil {
		return nil, err
	}
	if starting != nil {
		if err := json.Unmarshal(starting, &s.StartingBalances); err != nil {
			return nil, fmt.Errorf("error decoding starting balances: %w", err)
		}
	}
	if ending != nil {
		if err := json.Unmarshal(ending, &s.EndingBalances); err != nil {
			return nil, fmt.Errorf("error decoding ending balances: %w", err)
		}
	}
	return s, nil
}

func (l *ledgerTx) InsertShift(ctx context.Context, s *models.Shift) error {
	starting, err := json.Marshal(s.StartingBalances)
	if err != nil {
		return fmt.Errorf("error encoding starting balances: %w", err)
	}

	_, err = l.tx.Exec(ctx,
		`INSERT INTO shifts (id, start_time, starting_balances) VALUES ($1, $2, $3)`,
		s.ID, s.StartTime, starting)
	if err != nil {
		return fmt.Errorf("error inserting shift: %w", err)
	}
	return nil
}

func (l *ledgerTx) UpdateShift(ctx context.Context, s *models.Shift) error {
	ending, err := json.Marshal(s.EndingBalances)
	if err != nil {
		return fmt.Errorf("error encoding ending balances: %w", err)
	}

	cmdTag, err := l.tx.Exec(ctx,
		`UPDATE shifts
		 SET end_time = $1, ending_balances = $2, gross_profit = $3,
			 total_expenses = $4, net_profit = $5
		 WHERE id = $6`,
		s.EndTime, ending, s.GrossProfit, s.TotalExpenses, s.NetProfit, s.ID)
	if err != nil {
		return fmt.Errorf("error updating shift %s: %w", s.ID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("shift %s not found for update", s.ID)
	}
	return nil
}

func (l *ledgerTx) ShiftProfit(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := l.tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(profit), 0) FROM transactions
		 WHERE shift_id = $1 AND kind = 'sell'`, shiftID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error summing shift %s profit: %w", shiftID, err)
	}
	return total, nil
}

func (l *ledgerTx) ShiftExpenses(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := l.tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_usd), 0) FROM expenses WHERE shift_id = $1`,
		shiftID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error summing shift %s expenses: %w", shiftID, err)
	}
	return total, nil
}

func (l *ledgerTx) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := l.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM expense_categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking expense category %s: %w", id, err)
	}
	return exists, nil
}

func (l *ledgerTx) InsertExpense(ctx context.Context, e *models.Expense) error {
	_, err := l.tx.Exec(ctx,
		`INSERT INTO expenses (id, shift_id, category_id, amount, currency_code,
			amount_usd, uzs_rate, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.ShiftID, e.CategoryID, e.Amount, e.CurrencyCode,
		e.AmountUSD, e.UZSRate, e.Note, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting expense: %w", err)
	}
	return nil
}

func (l *ledgerTx) ExpenseForUpdate(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	e := &models.Expense{}
	query := `SELECT id, shift_id, category_id, amount, currency_code, amount_usd,
				uzs_rate, note, created_at
			  FROM expenses WHERE id = $1 FOR UPDATE`

	err := l.tx.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.ShiftID, &e.CategoryID, &e.Amount, &e.CurrencyCode, &e.AmountUSD,
		&e.UZSRate, &e.Note, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // expense not found
		}
		return nil, fmt.Errorf("error locking expense %s: %w", id, err)
	}
	return e, nil
}

func (l *ledgerTx) UpdateExpense(ctx context.Context, e *models.Expense) error {
	cmdTag, err := l.tx.Exec(ctx,
		`UPDATE expenses
		 SET category_id = $1, amount = $2, currency_code = $3, amount_usd = $4,
			 uzs_rate = $5, note = $6
		 WHERE id = $7`,
		e.CategoryID, e.Amount, e.CurrencyCode, e.AmountUSD, e.UZSRate, e.Note, e.ID)
	if err != nil {
		return fmt.Errorf("error updating expense %s: %w", e.ID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("expense %s not found for update", e.ID)
	}
	return nil
}
