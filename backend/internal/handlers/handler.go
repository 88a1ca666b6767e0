package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Jamshid777/exwebfullstack/backend/internal/events"
	"github.com/Jamshid777/exwebfullstack/backend/internal/ledger"
)

// Handler carries the dependencies the HTTP layer needs.
type Handler struct {
	Engine *ledger.Engine
	Log    zerolog.Logger
}

func New(engine *ledger.Engine, log zerolog.Logger) *Handler {
	return &Handler{Engine: engine, Log: log}
}

// respondError maps a ledger failure to an HTTP response. Typed rejections go
// back verbatim with 400/404; anything else is logged and hidden behind a
// generic 500.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnknownCurrency),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrMissingRate),
		errors.Is(err, ledger.ErrInvalidOperation),
		errors.Is(err, ledger.ErrInvalidPayment),
		errors.Is(err, ledger.ErrNoOpenShift),
		errors.Is(err, ledger.ErrShiftAlreadyOpen),
		errors.Is(err, ledger.ErrInsufficientLots):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		h.Log.Error().Err(err).Str("path", c.Path()).Msg("Operation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

// publish pushes a committed change onto the dashboard feed, if it is running.
func publish(eventType string, payload interface{}) {
	if events.GlobalHub != nil {
		events.GlobalHub.Publish(eventType, payload)
	}
}
