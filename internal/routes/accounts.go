package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delux-wallet/delux_ledger/internal/ledger"
)

// RegisterAccountRoutes wires account ledger endpoints.
func RegisterAccountRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts/:accountId", h.Get)
	r.Get("/accounts/:accountId/transactions", h.Transactions)
	r.Post("/accounts/:accountId/deposits", h.Deposit)
	r.Post("/accounts/:accountId/withdrawals", h.Withdraw)
	r.Post("/wires", h.Wire)
}
