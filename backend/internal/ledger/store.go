package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// Store is the persistence boundary: it opens one serializable unit of work
// per engine operation.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one atomic unit of work. Every read used for a sufficiency check and
// the write it guards happen through the same Tx, with row-level exclusivity
// on each Balance, lot and Shift row touched. Rollback after Commit is a no-op
// so it can sit in a defer.
//
// Lookup methods return (nil, nil) when the row does not exist; the engine
// translates that into its typed errors.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// BalanceForUpdate loads and locks the balance row for a currency.
	BalanceForUpdate(ctx context.Context, code string) (*models.Balance, error)

	// AdjustBalance applies delta to the balance amount. It fails rather than
	// let the available amount go negative; the engine pre-checks under the
	// row lock, so a failure here is a programming defect surfacing.
	AdjustBalance(ctx context.Context, code string, delta decimal.Decimal) error

	// ReserveFunds and ReleaseFunds move value between the spendable amount
	// and the reserved slot. No engine operation places holds today; the slot
	// exists so reservations can be added without reshaping callers.
	ReserveFunds(ctx context.Context, code string, amount decimal.Decimal) error
	ReleaseFunds(ctx context.Context, code string, amount decimal.Decimal) error

	// BalanceSnapshot returns every currency's current amount keyed by code.
	BalanceSnapshot(ctx context.Context) (map[string]decimal.Decimal, error)

	// OpenLots loads and locks the open lots of a currency in FIFO order:
	// created_at ascending, ties broken by seq.
	OpenLots(ctx context.Context, code string) ([]*models.Transaction, error)

	// SetLotRemaining overwrites a lot's unconsumed quantity.
	SetLotRemaining(ctx context.Context, id uuid.UUID, remaining decimal.Decimal) error

	// InsertTransaction persists a new record and assigns its Seq.
	InsertTransaction(ctx context.Context, t *models.Transaction) error

	// ActiveShiftForUpdate loads and locks the open shift, if any.
	ActiveShiftForUpdate(ctx context.Context) (*models.Shift, error)

	InsertShift(ctx context.Context, s *models.Shift) error

	// UpdateShift persists close-time fields: end time, snapshots, aggregates.
	UpdateShift(ctx context.Context, s *models.Shift) error

	// ShiftProfit sums profit over a shift's sell transactions, nulls as zero.
	ShiftProfit(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)

	// ShiftExpenses sums amount_usd over a shift's expenses.
	ShiftExpenses(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)

	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)

	InsertExpense(ctx context.Context, e *models.Expense) error

	// ExpenseForUpdate loads and locks an expense row.
	ExpenseForUpdate(ctx context.Context, id uuid.UUID) (*models.Expense, error)

	UpdateExpense(ctx context.Context, e *models.Expense) error
}
