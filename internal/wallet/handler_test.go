package wallet

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quillpay/quillpay/internal/ledger"
)

func setupHandlerApp(t *testing.T) (*fiber.App, ledger.Store) {
	t.Helper()
	store := ledger.NewInMemory()
	h := NewHandler(NewService(store), nil)

	app := fiber.New()
	app.Get("/wallets/:walletId", h.Balance)
	app.Post("/wallets/:walletId/operation", h.ApplyOperation)
	app.Post("/wallets", h.Create)
	app.Get("/wallets/:walletId/operations", h.Operations)
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := map[string]any{}
	if len(payload) > 0 && strings.HasPrefix(strings.TrimSpace(string(payload)), "{") {
		require.NoError(t, json.Unmarshal(payload, &decoded))
	}
	return resp, decoded
}

func TestHandlerApplyDeposit(t *testing.T) {
	app, store := setupHandlerApp(t)
	walletID := uuid.NewString()
	ledger.SeedWallet(store, walletID, 1_000)

	resp, body := postJSON(t, app, "/wallets/"+walletID+"/operation",
		`{"operation_type":"DEPOSIT","amount":100}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "SUCCESS", body["status"])
	require.Equal(t, "DEPOSIT", body["operation_type"])
	require.EqualValues(t, 100, body["amount"])
	require.EqualValues(t, 1_100, body["new_balance"])
	require.NotEmpty(t, body["operation_id"])
}

func TestHandlerInsufficientFunds(t *testing.T) {
	app, store := setupHandlerApp(t)
	walletID := uuid.NewString()
	ledger.SeedWallet(store, walletID, 1_000)

	resp, _ := postJSON(t, app, "/wallets/"+walletID+"/operation",
		`{"operation_type":"WITHDRAW","amount":1500}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// balance unchanged
	req := httptest.NewRequest(fiber.MethodGet, "/wallets/"+walletID, nil)
	getResp, err := app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	getResp.Body.Close()

	var balance map[string]any
	require.NoError(t, json.Unmarshal(payload, &balance))
	require.EqualValues(t, 1_000, balance["balance"])
}

func TestHandlerInvalidOperationType(t *testing.T) {
	app, store := setupHandlerApp(t)
	walletID := uuid.NewString()
	ledger.SeedWallet(store, walletID, 1_000)

	resp, _ := postJSON(t, app, "/wallets/"+walletID+"/operation",
		`{"operation_type":"TEST","amount":500}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerUnknownWallet(t *testing.T) {
	app, _ := setupHandlerApp(t)

	resp, _ := postJSON(t, app, "/wallets/"+uuid.NewString()+"/operation",
		`{"operation_type":"DEPOSIT","amount":100}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/wallets/"+uuid.NewString(), nil)
	getResp, err := app.Test(req)
	require.NoError(t, err)
	getResp.Body.Close()
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestHandlerCreateAndListOperations(t *testing.T) {
	app, _ := setupHandlerApp(t)

	resp, created := postJSON(t, app, "/wallets", `{"initial_balance":1000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	walletID, _ := created["id"].(string)
	require.NotEmpty(t, walletID)

	for i := 0; i < 3; i++ {
		opResp, _ := postJSON(t, app, "/wallets/"+walletID+"/operation",
			fmt.Sprintf(`{"operation_type":"DEPOSIT","amount":%d}`, (i+1)*10))
		require.Equal(t, http.StatusCreated, opResp.StatusCode)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/wallets/"+walletID+"/operations", nil)
	listResp, err := app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(listResp.Body)
	require.NoError(t, err)
	listResp.Body.Close()

	var list struct {
		WalletID   string `json:"wallet_id"`
		Operations []struct {
			Type   string `json:"operation_type"`
			Amount int64  `json:"amount"`
		} `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(payload, &list))
	require.Equal(t, walletID, list.WalletID)
	require.Len(t, list.Operations, 3)
}
