package ledger

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes account ledger HTTP endpoints.
type Handler struct {
	service      *Service
	openingBonus decimal.Decimal
}

// NewHandler builds a ledger HTTP handler. openingBonus is used when a create
// request does not specify one.
func NewHandler(service *Service, openingBonus decimal.Decimal) *Handler {
	return &Handler{service: service, openingBonus: openingBonus}
}

type createRequest struct {
	ID           string           `json:"id"`
	OpeningBonus *decimal.Decimal `json:"opening_bonus"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type wireRequest struct {
	SenderID    string          `json:"sender_id"`
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
}

type transactionResponse struct {
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	Description  string          `json:"description,omitempty"`
	Timestamp    string          `json:"timestamp"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

type accountResponse struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// Create opens an account with the opening bonus.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ID == "" {
		return fiber.NewError(http.StatusBadRequest, "account id is required")
	}

	bonus := h.openingBonus
	if req.OpeningBonus != nil {
		bonus = *req.OpeningBonus
	}

	acc, err := h.service.OpenAccount(c.UserContext(), req.ID, bonus)
	if err != nil {
		return errorResponse(err)
	}
	return c.Status(http.StatusCreated).JSON(accountResponse{ID: acc.ID, Balance: acc.Balance})
}

// Get returns the account snapshot.
func (h *Handler) Get(c *fiber.Ctx) error {
	acc, err := h.service.Get(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return errorResponse(err)
	}
	return c.Status(http.StatusOK).JSON(accountResponse{ID: acc.ID, Balance: acc.Balance})
}

// Transactions returns the account's transaction history.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	txs, err := h.service.Transactions(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return errorResponse(err)
	}
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = transactionResponse{
			Kind:         tx.Kind,
			Amount:       tx.Amount,
			Counterparty: tx.Counterparty,
			Description:  tx.Description,
			Timestamp:    tx.Timestamp.UTC().Format(time.RFC3339Nano),
			BalanceAfter: tx.BalanceAfter,
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

// Deposit credits the account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	balance, err := h.service.Credit(c.UserContext(), c.Params("accountId"), req.Amount, KindCredit, "")
	if err != nil {
		return errorResponse(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"balance": balance})
}

// Withdraw debits the account subject to the withdrawal floor.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	balance, err := h.service.Withdraw(c.UserContext(), c.Params("accountId"), req.Amount)
	if err != nil {
		return errorResponse(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"balance": balance})
}

// Wire transfers funds between two accounts.
func (h *Handler) Wire(c *fiber.Ctx) error {
	var req wireRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Transfer(c.UserContext(), req.SenderID, req.RecipientID, req.Amount)
	if err != nil {
		return errorResponse(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"sender_balance":    res.SenderBalance,
		"recipient_balance": res.RecipientBalance,
		"timestamp":         res.Timestamp,
	})
}

// errorResponse maps domain errors to HTTP status codes.
func errorResponse(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateAccount):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrBelowMinimum):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
