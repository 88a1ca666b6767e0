package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Jamshid777/exwebfullstack/backend/internal/auth"
	"github.com/Jamshid777/exwebfullstack/backend/internal/config"
	"github.com/Jamshid777/exwebfullstack/backend/internal/database"
	"github.com/Jamshid777/exwebfullstack/backend/internal/events"
	"github.com/Jamshid777/exwebfullstack/backend/internal/handlers"
	"github.com/Jamshid777/exwebfullstack/backend/internal/ledger"
	"github.com/Jamshid777/exwebfullstack/backend/internal/middleware"
	"github.com/Jamshid777/exwebfullstack/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.Pretty,
	})
	log.Info().Msg("Starting exchange booth backend")

	auth.Configure(cfg.JWTSecret, cfg.TokenTTL)

	ctx := context.Background()
	if err := database.InitDB(ctx, cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.CloseDB()

	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	if err := database.Seed(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed reference data")
	}

	// Dashboard feed: committed operations plus periodic balance snapshots
	events.InitializeGlobalHub(log)
	events.InitFeed(5*time.Second, database.GetBalances, log)

	shortfall := ledger.ShortfallZeroCost
	if cfg.RejectLotGaps {
		shortfall = ledger.ShortfallReject
	}
	engine := ledger.New(database.NewLedgerStore(), ledger.Config{
		LotTracked: cfg.LotTracked,
		Shortfall:  shortfall,
	}, log)

	h := handlers.New(engine, log)

	app := fiber.New()

	// --- WebSocket Routes ---
	// Needs to be defined before the /api group if it shouldn't inherit middleware
	wsGroup := app.Group("/ws")
	wsGroup.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	wsGroup.Get("/feed", websocket.New(h.FeedEndpoint))

	// --- API Routes ---
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Login)

	// --- Protected Routes ---
	api.Use(middleware.Protected())

	authGroup.Get("/me", h.Me)

	api.Get("/currencies", h.GetCurrencies)
	api.Get("/balances", h.GetBalances)

	api.Post("/transactions", h.CreateTransaction)
	api.Get("/transactions", h.GetTransactions)
	api.Get("/transactions/:id", h.GetTransactionByID)
	api.Get("/lots/:code", h.GetOpenLots)

	safeGroup := api.Group("/safe")
	safeGroup.Post("/deposit", h.Deposit)
	safeGroup.Post("/withdrawal", h.Withdraw)

	shiftsGroup := api.Group("/shifts")
	shiftsGroup.Get("/", h.GetShifts)
	shiftsGroup.Get("/active", h.GetActiveShift)
	shiftsGroup.Post("/start", h.StartShift)
	shiftsGroup.Post("/end", h.EndShift)

	api.Post("/expenses", h.CreateExpense)
	api.Put("/expenses/:id", h.UpdateExpense)
	api.Get("/expenses", h.GetExpenses)

	api.Post("/expense-categories", h.CreateExpenseCategory)
	api.Get("/expense-categories", h.GetExpenseCategories)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("Listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
