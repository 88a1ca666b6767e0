package ledger

import "errors"

// Typed failures returned by engine operations. Every failure rolls back the
// whole unit of work; callers decide whether to resubmit with corrected input.
var (
	// ErrUnknownCurrency means the referenced currency code is not in the catalog.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrInsufficientBalance means the requested debit exceeds the available amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrMissingRate means a UZS-denominated or lot-establishing operation omitted
	// a mandatory positive rate.
	ErrMissingRate = errors.New("missing required rate")

	// ErrInvalidOperation means the operation kind or amount is outside the
	// accepted range.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidPayment means the payment currency is outside the closed USD/UZS/MIX set.
	ErrInvalidPayment = errors.New("invalid payment currency")

	// ErrNoOpenShift means a shift-scoped operation was attempted with no open shift.
	ErrNoOpenShift = errors.New("no open shift")

	// ErrShiftAlreadyOpen means open was attempted while a shift is already open.
	ErrShiftAlreadyOpen = errors.New("shift already open")

	// ErrNotFound means a referenced transaction, expense, shift or category
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientLots means FIFO matching ran out of lot inventory before the
	// full sold quantity was matched, under the ShortfallReject policy.
	ErrInsufficientLots = errors.New("insufficient lot inventory")
)
