package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/database"
	"github.com/Jamshid777/exwebfullstack/backend/internal/ledger"
	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// CreateTransactionRequest defines the expected JSON body for a buy or sell.
type CreateTransactionRequest struct {
	Kind            string              `json:"kind"` // "buy" or "sell"
	CurrencyCode    string              `json:"currency_code"`
	Amount          decimal.Decimal     `json:"amount"`
	Rate            decimal.Decimal     `json:"rate"` // price per unit in USD
	PaymentCurrency string              `json:"payment_currency"`
	UZSRate         decimal.NullDecimal `json:"uzs_rate"`
	PaidUSD         decimal.NullDecimal `json:"paid_amount_usd"`
	PaidUZS         decimal.NullDecimal `json:"paid_amount_uzs"`
	Note            *string             `json:"note"`
	WalletAddress   *string             `json:"wallet_address"`
}

// CreateTransaction records a buy or sell against the open shift.
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	req := new(CreateTransactionRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	payment, err := ledger.ParsePayment(req.PaymentCurrency, req.UZSRate, req.PaidUSD, req.PaidUZS)
	if err != nil {
		return h.respondError(c, err)
	}

	params := ledger.TradeParams{
		CurrencyCode:  strings.ToUpper(strings.TrimSpace(req.CurrencyCode)),
		Quantity:      req.Amount,
		Rate:          req.Rate,
		Payment:       payment,
		Note:          req.Note,
		WalletAddress: req.WalletAddress,
	}

	var record *models.Transaction
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case models.KindBuy:
		record, err = h.Engine.Buy(c.Context(), params)
	case models.KindSell:
		record, err = h.Engine.Sell(c.Context(), params)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid kind, must be 'buy' or 'sell'"})
	}
	if err != nil {
		return h.respondError(c, err)
	}

	publish("transaction", record)
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetTransactions retrieves operation history, newest first.
func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	transactions, err := database.GetTransactions(c.Context(), limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching transactions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	return c.Status(fiber.StatusOK).JSON(transactions)
}

// GetTransactionByID retrieves a single transaction.
func (h *Handler) GetTransactionByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID format"})
	}

	record, err := database.GetTransactionByID(c.Context(), id)
	if err != nil {
		h.Log.Error().Err(err).Str("id", id.String()).Msg("Error fetching transaction")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transaction"})
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return c.Status(fiber.StatusOK).JSON(record)
}

// GetOpenLots lists a currency's unconsumed FIFO lots in consumption order.
func (h *Handler) GetOpenLots(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Currency code parameter is required"})
	}

	lots, err := database.GetOpenLots(c.Context(), code)
	if err != nil {
		h.Log.Error().Err(err).Str("currency", code).Msg("Error fetching open lots")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve lot inventory"})
	}
	return c.Status(fiber.StatusOK).JSON(lots)
}
