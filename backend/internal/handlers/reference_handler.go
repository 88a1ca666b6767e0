package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jamshid777/exwebfullstack/backend/internal/database"
)

// GetCurrencies retrieves the currency catalog.
func (h *Handler) GetCurrencies(c *fiber.Ctx) error {
	currencies, err := database.GetCurrencies(c.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching currencies")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve currencies"})
	}
	return c.Status(fiber.StatusOK).JSON(currencies)
}

// GetBalances retrieves every currency's balance.
func (h *Handler) GetBalances(c *fiber.Ctx) error {
	balances, err := database.GetBalances(c.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching balances")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve balances"})
	}
	return c.Status(fiber.StatusOK).JSON(balances)
}
