package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// ExpenseParams describes a shift-scoped cash outflow.
type ExpenseParams struct {
	CategoryID   uuid.UUID
	Amount       decimal.Decimal
	CurrencyCode string // USD or UZS
	UZSRate      decimal.NullDecimal
	Note         *string
}

// amountUSD validates the params and returns the USD-converted amount.
func (p ExpenseParams) amountUSD() (decimal.Decimal, error) {
	if !p.Amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrInvalidOperation)
	}
	switch p.CurrencyCode {
	case models.PaymentUSD:
		return p.Amount, nil
	case models.PaymentUZS:
		if !p.UZSRate.Valid || !p.UZSRate.Decimal.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: uzs_rate required for UZS expenses", ErrMissingRate)
		}
		return p.Amount.Div(p.UZSRate.Decimal), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: expense currency must be USD or UZS", ErrInvalidPayment)
	}
}

// AddExpense records an expense against the open shift and debits the paying
// currency.
func (e *Engine) AddExpense(ctx context.Context, p ExpenseParams) (*models.Expense, error) {
	amountUSD, err := p.amountUSD()
	if err != nil {
		return nil, err
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	shift, err := requireOpenShift(ctx, tx)
	if err != nil {
		return nil, err
	}

	ok, err := tx.CategoryExists(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: expense category", ErrNotFound)
	}

	if err := e.debit(ctx, tx, p.CurrencyCode, p.Amount); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:           uuid.New(),
		ShiftID:      shift.ID,
		CategoryID:   p.CategoryID,
		Amount:       p.Amount,
		CurrencyCode: p.CurrencyCode,
		AmountUSD:    amountUSD,
		UZSRate:      p.UZSRate,
		Note:         p.Note,
		CreatedAt:    e.now(),
	}
	if err := tx.InsertExpense(ctx, expense); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("currency", p.CurrencyCode).
		Str("amount", p.Amount.String()).
		Str("amount_usd", amountUSD.String()).
		Msg("Expense recorded")
	return expense, nil
}

// UpdateExpense atomically reverses the prior expense's balance effect, then
// validates and applies the new one. If the new debit cannot be satisfied the
// whole operation, reversal included, rolls back and balances stay exactly as
// before the call.
func (e *Engine) UpdateExpense(ctx context.Context, id uuid.UUID, p ExpenseParams) (*models.Expense, error) {
	amountUSD, err := p.amountUSD()
	if err != nil {
		return nil, err
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := requireOpenShift(ctx, tx); err != nil {
		return nil, err
	}

	expense, err := tx.ExpenseForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %s", ErrNotFound, id)
	}

	ok, err := tx.CategoryExists(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: expense category", ErrNotFound)
	}

	// Refund the old debit, then apply the new one with a fresh sufficiency
	// check. Same-currency updates see the refunded amount, so shrinking an
	// expense always succeeds even on a tight balance.
	if err := e.credit(ctx, tx, expense.CurrencyCode, expense.Amount); err != nil {
		return nil, err
	}
	if err := e.debit(ctx, tx, p.CurrencyCode, p.Amount); err != nil {
		return nil, err
	}

	expense.CategoryID = p.CategoryID
	expense.Amount = p.Amount
	expense.CurrencyCode = p.CurrencyCode
	expense.AmountUSD = amountUSD
	expense.UZSRate = p.UZSRate
	expense.Note = p.Note

	if err := tx.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("expense_id", id.String()).
		Str("currency", p.CurrencyCode).
		Str("amount", p.Amount.String()).
		Msg("Expense updated")
	return expense, nil
}
