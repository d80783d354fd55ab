package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delux-wallet/delux_ledger/internal/invest"
)

// RegisterInvestmentRoutes wires investment endpoints, including the manual
// maturity sweep trigger.
func RegisterInvestmentRoutes(r fiber.Router, h *invest.Handler) {
	r.Post("/accounts/:accountId/investments", h.Open)
	r.Get("/accounts/:accountId/investments", h.List)
	r.Post("/investments/sweep", h.Sweep)
}
