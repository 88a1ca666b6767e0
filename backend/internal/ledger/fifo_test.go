package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

func depositLot(t *testing.T, e *Engine, qty, rate string) *models.Transaction {
	t.Helper()
	rec, err := e.Deposit(context.Background(), MovementParams{
		CurrencyCode: "USDT",
		Quantity:     d(qty),
		Rate:         nd(rate),
	})
	require.NoError(t, err)
	return rec
}

func sellUSDT(t *testing.T, e *Engine, qty, rate string) (*models.Transaction, error) {
	t.Helper()
	return e.Sell(context.Background(), TradeParams{
		CurrencyCode: "USDT",
		Quantity:     d(qty),
		Rate:         d(rate),
		Payment:      PayUSD{},
	})
}

func TestSellConsumesLotsOldestFirst(t *testing.T) {
	store := newMemStore()
	store.seedBalance("USD", decimal.Zero)
	store.seedBalance("USDT", decimal.Zero)
	e := newTestEngine(store, Config{})
	openShift(t, e)

	lot1 := depositLot(t, e, "10", "1.00")
	lot2 := depositLot(t, e, "10", "1.20")

	rec, err := sellUSDT(t, e, "15", "1.50")
	require.NoError(t, err)

	// proceeds 22.50, cost 10*1.00 + 5*1.20 = 16.00
	require.True(t, rec.Profit.Valid)
	assert.True(t, rec.Profit.Decimal.Equal(d("6.5")), "profit = %s", rec.Profit.Decimal)
	assert.True(t, store.balance("USD").Equal(d("22.5")))
	assert.True(t, store.balance("USDT").Equal(d("5")))

	assert.True(t, store.lot(lot1.ID).Remaining.Decimal.IsZero())
	assert.True(t, store.lot(lot2.ID).Remaining.Decimal.Equal(d("5")))
}

func TestPartialSellsMatchOneShot(t *testing.T) {
	run := func(quantities ...string) (decimal.Decimal, decimal.Decimal) {
		store := newMemStore()
		store.seedBalance("USD", decimal.Zero)
		store.seedBalance("USDT", decimal.Zero)
		e := newTestEngine(store, Config{})
		openShift(t, e)
		depositLot(t, e, "10", "1.00")
		depositLot(t, e, "10", "1.20")

		profit := decimal.Zero
		for _, q := range quantities {
			rec, err := sellUSDT(t, e, q, "1.50")
			require.NoError(t, err)
			profit = profit.Add(rec.Profit.Decimal)
		}
		return profit, store.balance("USDT")
	}

	oneShotProfit, oneShotLeft := run("10")
	splitProfit, splitLeft := run("4", "6")

	assert.True(t, oneShotProfit.Equal(splitProfit),
		"one-shot %s vs split %s", oneShotProfit, splitProfit)
	assert.True(t, oneShotLeft.Equal(splitLeft))
}

func TestSellShortfallCostsTailAtZero(t *testing.T) {
	store := newMemStore()
	store.seedBalance("USD", decimal.Zero)
	// Inventory predating lot records: balance covers the sell, lots do not.
	store.seedBalance("USDT", d("3"))
	e := newTestEngine(store, Config{Shortfall: ShortfallZeroCost})
	openShift(t, e)
	lot := depositLot(t, e, "5", "1.00")

	rec, err := sellUSDT(t, e, "8", "2.00")
	require.NoError(t, err)

	// proceeds 16.00, cost basis only covers the matched 5 units
	assert.True(t, rec.Profit.Decimal.Equal(d("11")))
	assert.True(t, store.lot(lot.ID).Remaining.Decimal.IsZero())
	assert.True(t, store.balance("USDT").IsZero())
}

func TestSellShortfallRejectLeavesStateUnchanged(t *testing.T) {
	store := newMemStore()
	store.seedBalance("USD", decimal.Zero)
	store.seedBalance("USDT", d("3"))
	e := newTestEngine(store, Config{Shortfall: ShortfallReject})
	openShift(t, e)
	lot := depositLot(t, e, "5", "1.00")
	before := store.transactionCount()

	_, err := sellUSDT(t, e, "8", "2.00")
	require.ErrorIs(t, err, ErrInsufficientLots)

	assert.True(t, store.balance("USDT").Equal(d("8")))
	assert.True(t, store.balance("USD").IsZero())
	assert.True(t, store.lot(lot.ID).Remaining.Decimal.Equal(d("5")))
	assert.Equal(t, before, store.transactionCount())
}

func TestSellUntrackedCurrencySkipsLots(t *testing.T) {
	store := newMemStore()
	store.seedBalance("USD", decimal.Zero)
	store.seedBalance("EUR", d("100"))
	e := newTestEngine(store, Config{})
	openShift(t, e)

	rec, err := e.Sell(context.Background(), TradeParams{
		CurrencyCode: "EUR",
		Quantity:     d("40"),
		Rate:         d("1.10"),
		Payment:      PayUSD{},
	})
	require.NoError(t, err)

	assert.False(t, rec.Profit.Valid)
	assert.True(t, store.balance("EUR").Equal(d("60")))
	assert.True(t, store.balance("USD").Equal(d("44")))
}

func TestBuyLotsOutrankDepositLotsByAge(t *testing.T) {
	store := newMemStore()
	store.seedBalance("USD", d("100"))
	store.seedBalance("USDT", decimal.Zero)
	e := newTestEngine(store, Config{})
	openShift(t, e)

	buyLot, err := e.Buy(context.Background(), TradeParams{
		CurrencyCode: "USDT",
		Quantity:     d("6"),
		Rate:         d("1.00"),
		Payment:      PayUSD{},
	})
	require.NoError(t, err)
	depLot := depositLot(t, e, "6", "1.30")

	_, err = sellUSDT(t, e, "8", "1.50")
	require.NoError(t, err)

	assert.True(t, store.lot(buyLot.ID).Remaining.Decimal.IsZero())
	assert.True(t, store.lot(depLot.ID).Remaining.Decimal.Equal(d("4")))
}
