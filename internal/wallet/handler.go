package wallet

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quillpay/quillpay/internal/ledger"
	"github.com/quillpay/quillpay/internal/notification"
)

// Handler exposes wallet HTTP endpoints over the balance engine.
type Handler struct {
	service  *Service
	notifier notification.Notifier
}

// NewHandler builds a wallet HTTP handler. notifier may be nil.
func NewHandler(service *Service, notifier notification.Notifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

type operationRequest struct {
	OperationType string `json:"operation_type"`
	Amount        int64  `json:"amount"`
}

type createRequest struct {
	InitialBalance int64 `json:"initial_balance"`
}

type operationResponse struct {
	ID        string `json:"id"`
	WalletID  string `json:"wallet_id"`
	Type      string `json:"operation_type"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// Balance returns the wallet balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	balance, err := h.service.Balance(c.UserContext(), walletID)
	if err != nil {
		return fiber.NewError(statusForError(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id": balance.WalletID,
		"balance":   balance.Amount,
		"as_of":     balance.AsOf,
	})
}

// ApplyOperation validates and applies a deposit or withdrawal.
func (h *Handler) ApplyOperation(c *fiber.Ctx) error {
	var req operationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	walletID := c.Params("walletId")
	receipt, err := h.service.Apply(c.UserContext(), walletID, OperationInput{
		Type:   req.OperationType,
		Amount: req.Amount,
	})
	if err != nil {
		return fiber.NewError(statusForError(err), err.Error())
	}

	if h.notifier != nil {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        notification.KindOperationCommitted,
			Destination: walletID,
			Body:        fmt.Sprintf("%s of %d committed, new balance %d", receipt.Type, receipt.Amount, receipt.NewBalance),
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"operation_id":   receipt.OperationID,
		"status":         "SUCCESS",
		"operation_type": receipt.Type,
		"amount":         receipt.Amount,
		"new_balance":    receipt.NewBalance,
	})
}

// Create provisions a wallet with an initial balance.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Create(c.UserContext(), req.InitialBalance)
	if err != nil {
		return fiber.NewError(statusForError(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         w.ID,
		"balance":    w.Balance,
		"created_at": w.CreatedAt,
	})
}

// Operations lists the wallet's ledger entries, newest first.
func (h *Handler) Operations(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	ops, err := h.service.Operations(c.UserContext(), walletID)
	if err != nil {
		return fiber.NewError(statusForError(err), err.Error())
	}
	resp := make([]operationResponse, 0, len(ops))
	for _, op := range ops {
		resp = append(resp, operationResponse{
			ID:        op.ID,
			WalletID:  op.WalletID,
			Type:      string(op.Type),
			Amount:    op.Amount,
			CreatedAt: op.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"wallet_id": walletID, "operations": resp})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidOperationType), errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrBalanceOverflow):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrWalletNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
