package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Jamshid777/exwebfullstack/backend/internal/auth"
	"github.com/Jamshid777/exwebfullstack/backend/internal/database"
	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// LoginRequest defines the expected JSON body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse defines the JSON response for successful auth
type AuthResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	IssuedAt time.Time    `json:"issued_at"`
}

// Login handles operator authentication.
func (h *Handler) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password cannot be empty"})
	}

	user, err := database.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		h.Log.Error().Err(err).Str("username", req.Username).Msg("Error finding user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error finding user"})
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	token, err := auth.GenerateJWT(user.ID, user.Username)
	if err != nil {
		h.Log.Error().Err(err).Str("username", user.Username).Msg("Error generating JWT")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	// Don't send password hash back
	user.Password = ""

	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Token:    token,
		User:     user,
		IssuedAt: time.Now(),
	})
}

// Me returns the authenticated operator's identity.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	username, ok2 := c.Locals("username").(string)
	if !ok || !ok2 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get user info from context"})
	}

	return c.JSON(fiber.Map{
		"user_id":  userID,
		"username": username,
	})
}
