package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// consumeLots matches a sold quantity against the currency's open lots oldest
// first and returns the realized profit: proceeds minus the accumulated cost
// basis of the consumed quantity.
//
// Lots are buy/deposit records with remaining quantity, ordered by creation
// time with seq breaking ties, locked for the duration of the unit of work so
// two concurrent sells cannot consume the same unit.
func (e *Engine) consumeLots(ctx context.Context, tx Tx, code string, quantity, proceeds decimal.Decimal) (decimal.Decimal, error) {
	lots, err := tx.OpenLots(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}

	toMatch := quantity
	cost := decimal.Zero
	for _, lot := range lots {
		if !toMatch.IsPositive() {
			break
		}
		open := lot.Remaining.Decimal
		if !open.IsPositive() {
			continue
		}
		take := decimal.Min(toMatch, open)
		rate := decimal.Zero
		if lot.Rate.Valid {
			rate = lot.Rate.Decimal
		}
		cost = cost.Add(take.Mul(rate))
		if err := tx.SetLotRemaining(ctx, lot.ID, open.Sub(take)); err != nil {
			return decimal.Zero, err
		}
		toMatch = toMatch.Sub(take)
	}

	if toMatch.IsPositive() {
		if e.shortfall == ShortfallReject {
			return decimal.Zero, fmt.Errorf("%w: %s short by %s", ErrInsufficientLots, code, toMatch)
		}
		// ShortfallZeroCost: the unmatched tail carries no cost basis.
		e.log.Warn().
			Str("currency", code).
			Str("unmatched", toMatch.String()).
			Msg("Lot inventory exhausted, costing tail at zero")
	}

	return proceeds.Sub(cost), nil
}
