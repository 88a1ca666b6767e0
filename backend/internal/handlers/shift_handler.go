package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jamshid777/exwebfullstack/backend/internal/database"
)

// GetShifts retrieves shift history, newest first.
func (h *Handler) GetShifts(c *fiber.Ctx) error {
	shifts, err := database.GetShifts(c.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching shifts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve shifts"})
	}
	return c.Status(fiber.StatusOK).JSON(shifts)
}

// GetActiveShift returns the open shift, or null if none.
func (h *Handler) GetActiveShift(c *fiber.Ctx) error {
	shift, err := database.GetActiveShift(c.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching active shift")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve active shift"})
	}
	return c.Status(fiber.StatusOK).JSON(shift)
}

// StartShift opens a new operator session.
func (h *Handler) StartShift(c *fiber.Ctx) error {
	shift, err := h.Engine.OpenShift(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}

	publish("shift", shift)
	return c.Status(fiber.StatusCreated).JSON(shift)
}

// EndShift settles and closes the open shift.
func (h *Handler) EndShift(c *fiber.Ctx) error {
	shift, err := h.Engine.CloseShift(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}

	publish("shift", shift)
	return c.Status(fiber.StatusOK).JSON(shift)
}
