package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quillpay/quillpay/internal/middleware"
	"github.com/quillpay/quillpay/internal/wallet"
)

// RegisterWalletRoutes wires the wallet read and mutation endpoints plus the
// admin provisioning surface.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, d Deps) {
	bearer := middleware.BearerAuth(d.Cfg.TokenSecret)

	r.Get("/wallets/:walletId", bearer, h.Balance)

	// The mutation path carries the full guard stack: auth, per-wallet rate
	// limit, then idempotent replay before the engine is reached.
	operation := r.Group("/wallets/:walletId/operation", bearer)
	if d.Cache != nil {
		operation.Use(middleware.OperationRateLimit(d.Cache, d.Cfg.OperationRateLimit))
		operation.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	operation.Post("/", h.ApplyOperation)

	admin := middleware.AdminAuth(d.Cfg.AdminTokenHash)
	r.Post("/wallets", admin, h.Create)
	r.Get("/wallets/:walletId/operations", admin, h.Operations)
}
