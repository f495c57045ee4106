package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenHeader = "X-Admin-Token"

// AdminAuth guards the wallet provisioning surface with a bcrypt-hashed
// shared token. An empty hash disables the surface entirely.
func AdminAuth(tokenHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenHash == "" {
			return fiber.NewError(http.StatusForbidden, "admin surface disabled")
		}

		token := strings.TrimSpace(c.Get(adminTokenHeader))
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing admin token")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin token")
		}

		return c.Next()
	}
}
