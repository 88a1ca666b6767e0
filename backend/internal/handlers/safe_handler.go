package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/ledger"
)

// SafeMovementRequest defines the expected JSON body for a safe deposit or
// withdrawal. Rate is required for deposits of a lot-tracked currency.
type SafeMovementRequest struct {
	CurrencyCode string              `json:"currency_code"`
	Amount       decimal.Decimal     `json:"amount"`
	Rate         decimal.NullDecimal `json:"rate"`
	Note         *string             `json:"note"`
}

func (r *SafeMovementRequest) params() ledger.MovementParams {
	return ledger.MovementParams{
		CurrencyCode: strings.ToUpper(strings.TrimSpace(r.CurrencyCode)),
		Quantity:     r.Amount,
		Rate:         r.Rate,
		Note:         r.Note,
	}
}

// Deposit credits cash into the safe. Shift-independent.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	req := new(SafeMovementRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	record, err := h.Engine.Deposit(c.Context(), req.params())
	if err != nil {
		return h.respondError(c, err)
	}

	publish("transaction", record)
	return c.Status(fiber.StatusCreated).JSON(record)
}

// Withdraw debits cash from the safe. Shift-independent.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	req := new(SafeMovementRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	record, err := h.Engine.Withdraw(c.Context(), req.params())
	if err != nil {
		return h.respondError(c, err)
	}

	publish("transaction", record)
	return c.Status(fiber.StatusCreated).JSON(record)
}
