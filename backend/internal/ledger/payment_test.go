package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayment(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		uzsRate  decimal.NullDecimal
		paidUSD  decimal.NullDecimal
		paidUZS  decimal.NullDecimal
		want     Payment
		wantErr  error
	}{
		{
			name:     "usd",
			currency: "USD",
			want:     PayUSD{},
		},
		{
			name:     "usd lowercase with spaces",
			currency: " usd ",
			want:     PayUSD{},
		},
		{
			name:     "uzs with rate",
			currency: "UZS",
			uzsRate:  nd("12600"),
			want:     PayUZS{Rate: d("12600")},
		},
		{
			name:     "uzs missing rate",
			currency: "UZS",
			wantErr:  ErrMissingRate,
		},
		{
			name:     "uzs zero rate",
			currency: "UZS",
			uzsRate:  decimal.NullDecimal{Valid: true},
			wantErr:  ErrMissingRate,
		},
		{
			name:     "mix both portions",
			currency: "MIX",
			paidUSD:  nd("5"),
			paidUZS:  nd("63000"),
			want:     PayMix{USD: d("5"), UZS: d("63000")},
		},
		{
			name:     "mix usd only",
			currency: "MIX",
			paidUSD:  nd("5"),
			want:     PayMix{USD: d("5")},
		},
		{
			name:     "mix without portions",
			currency: "MIX",
			wantErr:  ErrInvalidPayment,
		},
		{
			name:     "mix negative portion",
			currency: "MIX",
			paidUSD:  nd("-1"),
			wantErr:  ErrInvalidPayment,
		},
		{
			name:     "unknown label",
			currency: "EUR",
			wantErr:  ErrInvalidPayment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayment(tt.currency, tt.uzsRate, tt.paidUSD, tt.paidUZS)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentSplit(t *testing.T) {
	total := d("10")

	usd, uzs := PayUSD{}.split(total)
	assert.True(t, usd.Equal(total))
	assert.True(t, uzs.IsZero())

	usd, uzs = PayUZS{Rate: d("12600")}.split(total)
	assert.True(t, usd.IsZero())
	assert.True(t, uzs.Equal(d("126000")))

	usd, uzs = PayMix{USD: d("4"), UZS: d("75600")}.split(total)
	assert.True(t, usd.Equal(d("4")))
	assert.True(t, uzs.Equal(d("75600")))
}
