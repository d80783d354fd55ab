package invest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/delux-wallet/delux_ledger/internal/ledger"
)

// Handler exposes investment HTTP endpoints.
type Handler struct {
	book *Book
}

// NewHandler builds an investment HTTP handler.
func NewHandler(book *Book) *Handler {
	return &Handler{book: book}
}

type openRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	DurationDays int             `json:"duration_days"`
}

type investmentResponse struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Principal    decimal.Decimal `json:"principal"`
	ReturnAmount decimal.Decimal `json:"return_amount"`
	DurationDays int             `json:"duration_days"`
	StartTime    time.Time       `json:"start_time"`
	MaturityTime time.Time       `json:"maturity_time"`
	Status       Status          `json:"status"`
}

// Open starts an investment for the account.
func (h *Handler) Open(c *fiber.Ctx) error {
	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.book.Open(c.UserContext(), c.Params("accountId"), req.Amount, req.DurationDays)
	if err != nil {
		return errorResponse(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(inv))
}

// List returns the account's investments.
func (h *Handler) List(c *fiber.Ctx) error {
	investments, err := h.book.ListFor(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return errorResponse(err)
	}
	out := make([]investmentResponse, len(investments))
	for i, inv := range investments {
		out[i] = toResponse(inv)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"investments": out})
}

// Sweep triggers the maturity sweep manually.
func (h *Handler) Sweep(c *fiber.Ctx) error {
	matured, err := h.book.SweepMatured(c.UserContext(), time.Now().UTC())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"matured": matured})
}

func toResponse(inv Investment) investmentResponse {
	return investmentResponse{
		ID:           inv.ID,
		OwnerID:      inv.OwnerID,
		Principal:    inv.Principal,
		ReturnAmount: inv.ReturnAmount,
		DurationDays: inv.DurationDays,
		StartTime:    inv.StartTime,
		MaturityTime: inv.MaturityTime,
		Status:       inv.Status,
	}
}

func errorResponse(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrBelowMinimum),
		errors.Is(err, ErrInvalidDuration):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
