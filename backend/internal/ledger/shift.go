package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// OpenShift starts a new operator session, snapshotting every currency's
// current amount. Fails with ErrShiftAlreadyOpen if a shift is still open; the
// check runs under the unit of work so two concurrent opens cannot both
// succeed.
func (e *Engine) OpenShift(ctx context.Context) (*models.Shift, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := tx.ActiveShiftForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrShiftAlreadyOpen
	}

	snapshot, err := tx.BalanceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	shift := &models.Shift{
		ID:               uuid.New(),
		StartTime:        e.now(),
		StartingBalances: snapshot,
	}
	if err := tx.InsertShift(ctx, shift); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().Str("shift_id", shift.ID.String()).Msg("Shift opened")
	return shift, nil
}

// CloseShift settles the open shift: aggregates the shift's sell profits and
// expense totals, snapshots ending balances and stamps the end time. The shift
// is immutable afterwards.
func (e *Engine) CloseShift(ctx context.Context) (*models.Shift, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	shift, err := requireOpenShift(ctx, tx)
	if err != nil {
		return nil, err
	}

	gross, err := tx.ShiftProfit(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	expenses, err := tx.ShiftExpenses(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	snapshot, err := tx.BalanceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	end := e.now()
	shift.EndTime = &end
	shift.EndingBalances = snapshot
	shift.GrossProfit = gross
	shift.TotalExpenses = expenses
	shift.NetProfit = gross.Sub(expenses)

	if err := tx.UpdateShift(ctx, shift); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("shift_id", shift.ID.String()).
		Str("gross_profit", shift.GrossProfit.String()).
		Str("total_expenses", shift.TotalExpenses.String()).
		Str("net_profit", shift.NetProfit.String()).
		Msg("Shift closed")
	return shift, nil
}
