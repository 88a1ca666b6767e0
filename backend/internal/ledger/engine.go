package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// ShortfallPolicy decides what happens when a sell of a lot-tracked currency
// exhausts the lot inventory before the full quantity is matched.
type ShortfallPolicy int

const (
	// ShortfallZeroCost treats the unmatched tail as acquired at zero cost.
	ShortfallZeroCost ShortfallPolicy = iota
	// ShortfallReject fails the sell with ErrInsufficientLots.
	ShortfallReject
)

// Config tunes the engine.
type Config struct {
	// LotTracked lists the currencies whose acquisitions form FIFO cost-basis
	// lots. Defaults to USDT.
	LotTracked []string
	Shortfall  ShortfallPolicy
}

// Engine validates and atomically applies ledger operations. Each operation
// runs in one Store unit of work: it either commits completely or has no
// effect.
type Engine struct {
	store      Store
	lotTracked map[string]bool
	shortfall  ShortfallPolicy
	log        zerolog.Logger
	now        func() time.Time
}

// New creates an engine on top of a Store.
func New(store Store, cfg Config, log zerolog.Logger) *Engine {
	tracked := cfg.LotTracked
	if len(tracked) == 0 {
		tracked = []string{"USDT"}
	}
	lotTracked := make(map[string]bool, len(tracked))
	for _, code := range tracked {
		lotTracked[code] = true
	}
	return &Engine{
		store:      store,
		lotTracked: lotTracked,
		shortfall:  cfg.Shortfall,
		log:        log,
		now:        time.Now,
	}
}

// LotTracked reports whether a currency's acquisitions are tracked as lots.
func (e *Engine) LotTracked(code string) bool { return e.lotTracked[code] }

// TradeParams describes a buy or sell.
type TradeParams struct {
	CurrencyCode  string
	Quantity      decimal.Decimal
	Rate          decimal.Decimal // price per unit in USD
	Payment       Payment
	Note          *string
	WalletAddress *string
}

func (p TradeParams) validate() error {
	if !p.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOperation)
	}
	if !p.Rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", ErrMissingRate)
	}
	if p.Payment == nil {
		return fmt.Errorf("%w: payment required", ErrInvalidPayment)
	}
	return nil
}

// Buy purchases quantity of a currency at rate, paying in USD, UZS or a mix.
// Requires an open shift. If the currency is lot-tracked the record becomes a
// new FIFO lot with the full quantity remaining.
func (e *Engine) Buy(ctx context.Context, p TradeParams) (*models.Transaction, error) {
	if err := p.validate(); err != nil {
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

	target, err := tx.BalanceForUpdate(ctx, p.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, p.CurrencyCode)
	}

	totalUSD := p.Quantity.Mul(p.Rate)
	paidUSD, paidUZS := p.Payment.split(totalUSD)

	if err := e.debit(ctx, tx, models.PaymentUSD, paidUSD); err != nil {
		return nil, err
	}
	if err := e.debit(ctx, tx, models.PaymentUZS, paidUZS); err != nil {
		return nil, err
	}
	if err := tx.AdjustBalance(ctx, p.CurrencyCode, p.Quantity); err != nil {
		return nil, err
	}

	record := e.newTrade(models.KindBuy, shift.ID, p, totalUSD, paidUSD, paidUZS)
	if e.lotTracked[p.CurrencyCode] {
		record.Remaining = decimal.NullDecimal{Decimal: p.Quantity, Valid: true}
	}
	if err := tx.InsertTransaction(ctx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("kind", models.KindBuy).
		Str("currency", p.CurrencyCode).
		Str("quantity", p.Quantity.String()).
		Str("rate", p.Rate.String()).
		Msg("Transaction recorded")
	return record, nil
}

// Sell disposes of quantity of a currency at rate, crediting the proceeds in
// USD, UZS or a mix. Requires an open shift. Sells of a lot-tracked currency
// consume FIFO lots to compute realized profit.
func (e *Engine) Sell(ctx context.Context, p TradeParams) (*models.Transaction, error) {
	if err := p.validate(); err != nil {
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

	if err := e.debit(ctx, tx, p.CurrencyCode, p.Quantity); err != nil {
		return nil, err
	}

	totalUSD := p.Quantity.Mul(p.Rate)
	paidUSD, paidUZS := p.Payment.split(totalUSD)

	if err := e.credit(ctx, tx, models.PaymentUSD, paidUSD); err != nil {
		return nil, err
	}
	if err := e.credit(ctx, tx, models.PaymentUZS, paidUZS); err != nil {
		return nil, err
	}

	record := e.newTrade(models.KindSell, shift.ID, p, totalUSD, paidUSD, paidUZS)
	if e.lotTracked[p.CurrencyCode] {
		profit, err := e.consumeLots(ctx, tx, p.CurrencyCode, p.Quantity, totalUSD)
		if err != nil {
			return nil, err
		}
		record.Profit = decimal.NullDecimal{Decimal: profit, Valid: true}
	}
	if err := tx.InsertTransaction(ctx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("kind", models.KindSell).
		Str("currency", p.CurrencyCode).
		Str("quantity", p.Quantity.String()).
		Str("rate", p.Rate.String()).
		Msg("Transaction recorded")
	return record, nil
}

// MovementParams describes a safe deposit or withdrawal. Rate is mandatory on
// deposits of a lot-tracked currency (it fixes the FIFO cost basis) and
// informational otherwise.
type MovementParams struct {
	CurrencyCode string
	Quantity     decimal.Decimal
	Rate         decimal.NullDecimal
	Note         *string
}

// Deposit credits cash into the safe. Shift-independent. A deposit of a
// lot-tracked currency establishes a new FIFO lot and requires a positive rate.
func (e *Engine) Deposit(ctx context.Context, p MovementParams) (*models.Transaction, error) {
	if !p.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidOperation)
	}
	if e.lotTracked[p.CurrencyCode] && (!p.Rate.Valid || !p.Rate.Decimal.IsPositive()) {
		return nil, fmt.Errorf("%w: rate required for %s deposit", ErrMissingRate, p.CurrencyCode)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := e.credit(ctx, tx, p.CurrencyCode, p.Quantity); err != nil {
		return nil, err
	}

	record := &models.Transaction{
		ID:           uuid.New(),
		Kind:         models.KindDeposit,
		CurrencyCode: p.CurrencyCode,
		Amount:       p.Quantity,
		Rate:         p.Rate,
		Note:         p.Note,
		CreatedAt:    e.now(),
	}
	if e.lotTracked[p.CurrencyCode] {
		record.Remaining = decimal.NullDecimal{Decimal: p.Quantity, Valid: true}
	}
	if err := tx.InsertTransaction(ctx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("kind", models.KindDeposit).
		Str("currency", p.CurrencyCode).
		Str("quantity", p.Quantity.String()).
		Msg("Safe movement recorded")
	return record, nil
}

// Withdraw debits cash from the safe. Shift-independent. Withdrawals never
// consume lots: they are not disposals needing profit recognition.
func (e *Engine) Withdraw(ctx context.Context, p MovementParams) (*models.Transaction, error) {
	if !p.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidOperation)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := e.debit(ctx, tx, p.CurrencyCode, p.Quantity); err != nil {
		return nil, err
	}

	record := &models.Transaction{
		ID:           uuid.New(),
		Kind:         models.KindWithdrawal,
		CurrencyCode: p.CurrencyCode,
		Amount:       p.Quantity,
		Rate:         p.Rate,
		Note:         p.Note,
		CreatedAt:    e.now(),
	}
	if err := tx.InsertTransaction(ctx, record); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("kind", models.KindWithdrawal).
		Str("currency", p.CurrencyCode).
		Str("quantity", p.Quantity.String()).
		Msg("Safe movement recorded")
	return record, nil
}

// debit locks a balance, checks sufficiency and applies the negative delta.
// Zero legs are skipped so MIX payments with an empty portion do not touch the
// other currency's row.
func (e *Engine) debit(ctx context.Context, tx Tx, code string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	bal, err := tx.BalanceForUpdate(ctx, code)
	if err != nil {
		return err
	}
	if bal == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	if bal.Available().LessThan(amount) {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, code)
	}
	return tx.AdjustBalance(ctx, code, amount.Neg())
}

// credit locks a balance and applies the positive delta.
func (e *Engine) credit(ctx context.Context, tx Tx, code string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	bal, err := tx.BalanceForUpdate(ctx, code)
	if err != nil {
		return err
	}
	if bal == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return tx.AdjustBalance(ctx, code, amount)
}

func (e *Engine) newTrade(kind string, shiftID uuid.UUID, p TradeParams, totalUSD, paidUSD, paidUZS decimal.Decimal) *models.Transaction {
	label := p.Payment.Label()
	return &models.Transaction{
		ID:              uuid.New(),
		ShiftID:         uuid.NullUUID{UUID: shiftID, Valid: true},
		Kind:            kind,
		CurrencyCode:    p.CurrencyCode,
		Amount:          p.Quantity,
		Rate:            decimal.NullDecimal{Decimal: p.Rate, Valid: true},
		TotalAmount:     decimal.NullDecimal{Decimal: totalUSD, Valid: true},
		PaymentCurrency: &label,
		UZSRate:         uzsRateOf(p.Payment),
		TotalAmountUZS:  positiveOrNull(paidUZS),
		PaidUSD:         positiveOrNull(paidUSD),
		PaidUZS:         positiveOrNull(paidUZS),
		Note:            p.Note,
		WalletAddress:   p.WalletAddress,
		CreatedAt:       e.now(),
	}
}

func positiveOrNull(d decimal.Decimal) decimal.NullDecimal {
	if d.IsPositive() {
		return decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return decimal.NullDecimal{}
}

func requireOpenShift(ctx context.Context, tx Tx) (*models.Shift, error) {
	shift, err := tx.ActiveShiftForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, ErrNoOpenShift
	}
	return shift, nil
}
