package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quillpay/quillpay/internal/auth"
)

// BearerAuth validates HS256 bearer tokens on wallet endpoints. An empty
// secret disables the check, which is only acceptable in development.
func BearerAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}

		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := auth.Verify(tokenStr, []byte(secret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			c.Locals("client_id", sub)
		}
		return c.Next()
	}
}
