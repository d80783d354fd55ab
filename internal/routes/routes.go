package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/delux-wallet/delux_ledger/internal/config"
	"github.com/delux-wallet/delux_ledger/internal/invest"
	"github.com/delux-wallet/delux_ledger/internal/ledger"
	"github.com/delux-wallet/delux_ledger/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes. Ledger and Book
// are constructed in main so the maturity scheduler can share them.
type Deps struct {
	Cfg    config.Config
	Ledger *ledger.Service
	Book   *invest.Book
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	RegisterAccountRoutes(api, ledger.NewHandler(d.Ledger, d.Cfg.OpeningBonus))
	RegisterInvestmentRoutes(api, invest.NewHandler(d.Book))
}
