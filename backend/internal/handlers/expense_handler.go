package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/database"
	"github.com/Jamshid777/exwebfullstack/backend/internal/ledger"
)

// ExpenseRequest defines the expected JSON body for creating or updating an
// expense.
type ExpenseRequest struct {
	CategoryID uuid.UUID           `json:"category_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Currency   string              `json:"currency"` // USD or UZS
	UZSRate    decimal.NullDecimal `json:"uzs_rate"`
	Note       *string             `json:"note"`
}

func (r *ExpenseRequest) params() ledger.ExpenseParams {
	return ledger.ExpenseParams{
		CategoryID:   r.CategoryID,
		Amount:       r.Amount,
		CurrencyCode: strings.ToUpper(strings.TrimSpace(r.Currency)),
		UZSRate:      r.UZSRate,
		Note:         r.Note,
	}
}

// CreateExpense records an expense against the open shift.
func (h *Handler) CreateExpense(c *fiber.Ctx) error {
	req := new(ExpenseRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	expense, err := h.Engine.AddExpense(c.Context(), req.params())
	if err != nil {
		return h.respondError(c, err)
	}

	publish("expense", expense)
	return c.Status(fiber.StatusCreated).JSON(expense)
}

// UpdateExpense reverses an expense's prior balance effect and applies the new
// one atomically.
func (h *Handler) UpdateExpense(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID format"})
	}

	req := new(ExpenseRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	expense, err := h.Engine.UpdateExpense(c.Context(), id, req.params())
	if err != nil {
		return h.respondError(c, err)
	}

	publish("expense", expense)
	return c.Status(fiber.StatusOK).JSON(expense)
}

// GetExpenses retrieves expense history, newest first.
func (h *Handler) GetExpenses(c *fiber.Ctx) error {
	expenses, err := database.GetExpenses(c.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching expenses")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve expenses"})
	}
	return c.Status(fiber.StatusOK).JSON(expenses)
}

// CreateCategoryRequest defines the expected JSON body for a new category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateExpenseCategory adds a new expense category.
func (h *Handler) CreateExpenseCategory(c *fiber.Ctx) error {
	req := new(CreateCategoryRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Category name cannot be empty"})
	}

	category, err := database.CreateExpenseCategory(c.Context(), name)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateCategory) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Category already exists"})
		}
		h.Log.Error().Err(err).Str("name", name).Msg("Error creating expense category")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create category"})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetExpenseCategories retrieves all categories ordered by name.
func (h *Handler) GetExpenseCategories(c *fiber.Ctx) error {
	categories, err := database.GetExpenseCategories(c.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("Error fetching expense categories")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve categories"})
	}
	return c.Status(fiber.StatusOK).JSON(categories)
}
