package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation kinds recorded on a Transaction.
const (
	KindBuy        = "buy"
	KindSell       = "sell"
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
)

// Payment currency labels recorded on a Transaction.
const (
	PaymentUSD = "USD"
	PaymentUZS = "UZS"
	PaymentMix = "MIX"
)

// User represents an operator account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Store hash, exclude from JSON responses
	CreatedAt time.Time `json:"created_at"`
}

// Currency is an immutable reference entity seeded at bootstrap.
type Currency struct {
	Code   string `json:"code"` // e.g. "USD", "UZS", "USDT"
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Balance holds the booth's cash position for one currency.
// Amount is the single ledger value; Reserved is the hold slot for a future
// reservation feature and is always zero today.
type Balance struct {
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
	Reserved     decimal.Decimal `json:"reserved"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Available returns the spendable portion of the balance.
func (b *Balance) Available() decimal.Decimal {
	return b.Amount.Sub(b.Reserved)
}

// Transaction is one recorded operation. Buy and deposit records of a
// lot-tracked currency double as FIFO lots: Remaining starts at the acquired
// quantity and is decremented as later sells consume it. Remaining is the only
// field mutated after creation.
type Transaction struct {
	ID              uuid.UUID           `json:"id"`
	Seq             int64               `json:"seq"` // insertion order, breaks created_at ties
	ShiftID         uuid.NullUUID       `json:"shift_id"`
	Kind            string              `json:"kind"`
	CurrencyCode    string              `json:"currency_code"`
	Amount          decimal.Decimal     `json:"amount"`
	Rate            decimal.NullDecimal `json:"rate"` // price per unit in USD
	TotalAmount     decimal.NullDecimal `json:"total_amount"`
	PaymentCurrency *string             `json:"payment_currency"` // USD, UZS or MIX
	UZSRate         decimal.NullDecimal `json:"uzs_rate"`
	TotalAmountUZS  decimal.NullDecimal `json:"total_amount_uzs"`
	PaidUSD         decimal.NullDecimal `json:"paid_amount_usd"`
	PaidUZS         decimal.NullDecimal `json:"paid_amount_uzs"`
	Profit          decimal.NullDecimal `json:"profit"`           // FIFO-matched sells only
	Remaining       decimal.NullDecimal `json:"remaining_amount"` // open lot quantity
	Note            *string             `json:"note"`
	WalletAddress   *string             `json:"wallet_address"`
	CreatedAt       time.Time           `json:"created_at"`
}

// IsOpenLot reports whether the record still has unconsumed lot quantity.
func (t *Transaction) IsOpenLot() bool {
	return t.Remaining.Valid && t.Remaining.Decimal.IsPositive()
}

// Shift bounds one operator session. EndTime is nil while the shift is open;
// at most one shift is open at any time. Aggregates stay zero until close.
type Shift struct {
	ID               uuid.UUID                  `json:"id"`
	StartTime        time.Time                  `json:"start_time"`
	EndTime          *time.Time                 `json:"end_time"`
	StartingBalances map[string]decimal.Decimal `json:"starting_balances"` // currency code -> amount
	EndingBalances   map[string]decimal.Decimal `json:"ending_balances"`
	GrossProfit      decimal.Decimal            `json:"gross_profit"`
	TotalExpenses    decimal.Decimal            `json:"total_expenses"`
	NetProfit        decimal.Decimal            `json:"net_profit"`
}

// Open reports whether the shift has not been closed yet.
func (s *Shift) Open() bool { return s.EndTime == nil }

// ExpenseCategory is an immutable reference entity with a unique name.
type ExpenseCategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Expense is a shift-scoped cash outflow in USD or UZS. AmountUSD is the
// converted value used in shift settlement.
type Expense struct {
	ID           uuid.UUID           `json:"id"`
	ShiftID      uuid.UUID           `json:"shift_id"`
	CategoryID   uuid.UUID           `json:"category_id"`
	Amount       decimal.Decimal     `json:"amount"`
	CurrencyCode string              `json:"currency"` // USD or UZS
	AmountUSD    decimal.Decimal     `json:"amount_usd"`
	UZSRate      decimal.NullDecimal `json:"uzs_rate"`
	Note         *string             `json:"note"`
	CreatedAt    time.Time           `json:"created_at"`
}
