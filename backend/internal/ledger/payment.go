package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// Payment is the closed set of ways a trade can be settled. Constructing one
// through ParsePayment guarantees the combination is valid, so the engine never
// re-validates payment input.
type Payment interface {
	// Label returns the payment currency label recorded on the transaction.
	Label() string

	// split resolves how much USD and UZS cash changes hands for a trade whose
	// USD value is totalUSD.
	split(totalUSD decimal.Decimal) (paidUSD, paidUZS decimal.Decimal)
}

// PayUSD settles the full USD value in dollars.
type PayUSD struct{}

func (PayUSD) Label() string { return models.PaymentUSD }

func (PayUSD) split(totalUSD decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	return totalUSD, decimal.Zero
}

// PayUZS settles the full USD value in so'm at the given USD/UZS rate.
type PayUZS struct {
	Rate decimal.Decimal
}

func (PayUZS) Label() string { return models.PaymentUZS }

func (p PayUZS) split(totalUSD decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	return decimal.Zero, totalUSD.Mul(p.Rate)
}

// PayMix settles with explicit USD and UZS portions.
type PayMix struct {
	USD decimal.Decimal
	UZS decimal.Decimal
}

func (PayMix) Label() string { return models.PaymentMix }

func (p PayMix) split(decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	return p.USD, p.UZS
}

// ParsePayment builds a Payment from wire-level fields. currency must be one of
// USD, UZS or MIX; UZS requires a positive uzsRate; MIX requires at least one of
// the paid amounts.
func ParsePayment(currency string, uzsRate, paidUSD, paidUZS decimal.NullDecimal) (Payment, error) {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case models.PaymentUSD:
		return PayUSD{}, nil
	case models.PaymentUZS:
		if !uzsRate.Valid || !uzsRate.Decimal.IsPositive() {
			return nil, fmt.Errorf("%w: uzs_rate required for UZS payments", ErrMissingRate)
		}
		return PayUZS{Rate: uzsRate.Decimal}, nil
	case models.PaymentMix:
		if !paidUSD.Valid && !paidUZS.Valid {
			return nil, fmt.Errorf("%w: paid_amount_usd or paid_amount_uzs required for MIX", ErrInvalidPayment)
		}
		mix := PayMix{}
		if paidUSD.Valid {
			mix.USD = paidUSD.Decimal
		}
		if paidUZS.Valid {
			mix.UZS = paidUZS.Decimal
		}
		if mix.USD.IsNegative() || mix.UZS.IsNegative() {
			return nil, fmt.Errorf("%w: MIX portions cannot be negative", ErrInvalidPayment)
		}
		return mix, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayment, currency)
	}
}

// uzsRateOf returns the conversion rate a payment carries, if any, for
// recording on the transaction.
func uzsRateOf(p Payment) decimal.NullDecimal {
	if uzs, ok := p.(PayUZS); ok {
		return decimal.NullDecimal{Decimal: uzs.Rate, Valid: true}
	}
	return decimal.NullDecimal{}
}
