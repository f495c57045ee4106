package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpay/quillpay/internal/auth"
)

func protectedApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(h)
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestBearerAuth(t *testing.T) {
	const secret = "token-secret"
	app := protectedApp(BearerAuth(secret))

	token, err := auth.Issue("client-1", time.Hour, []byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// missing header
	req = httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// token signed with another secret
	other, err := auth.Issue("client-1", time.Hour, []byte("other"))
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+other)
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerAuthDisabledWithoutSecret(t *testing.T) {
	app := protectedApp(BearerAuth(""))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-admin"), bcrypt.MinCost)
	require.NoError(t, err)
	app := protectedApp(AdminAuth(string(hash)))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(adminTokenHeader, "s3cret-admin")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(adminTokenHeader, "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuthDisabledWithoutHash(t *testing.T) {
	app := protectedApp(AdminAuth(""))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(adminTokenHeader, "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
