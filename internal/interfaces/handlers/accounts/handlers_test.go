package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	acctsvc "carbon-exchange/internal/application/accounts"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAccountsTest(t *testing.T) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	h := &Handlers{
		Service: &acctsvc.Service{DB: testdb.Open(t)},
		Rdb:     rdb,
		Config:  middleware.SessionConfig{Secret: "accounts-test-secret"},
	}
	app := fiber.New()
	app.Use(middleware.SessionStore(rdb, h.Config))
	app.Post("/create-account", h.CreateAccount)
	app.Get("/view-account", h.ViewAccount)
	return app, rdb
}

func createAccount(t *testing.T, app *fiber.App, body map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/create-account", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

var validBody = map[string]string{
	"address":      "0x1111111111111111111111111111111111111111",
	"email":        "fund@example.com",
	"display_name": "Green Fund",
	"password":     "s3cret!pass",
}

func TestCreateAccount_MissingFields(t *testing.T) {
	app, _ := setupAccountsTest(t)
	resp, _ := createAccount(t, app, map[string]string{"email": "a@b.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateAccount_InvalidAddress(t *testing.T) {
	app, _ := setupAccountsTest(t)
	body := map[string]string{}
	for k, v := range validBody {
		body[k] = v
	}
	body["address"] = "0x0000000000000000000000000000000000000000"
	resp, out := createAccount(t, app, body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid address", out["error"].(map[string]interface{})["message"])
}

func TestCreateAccount_StartsSession(t *testing.T) {
	app, rdb := setupAccountsTest(t)
	resp, out := createAccount(t, app, validBody)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	account := out["data"].(map[string]interface{})["account"].(map[string]interface{})
	assert.Equal(t, "fund@example.com", account["email"])
	assert.Nil(t, account["password_hash"])

	var sid string
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName {
			sid = ck.Value
		}
	}
	require.NotEmpty(t, sid)

	keys, err := rdb.Keys(context.Background(), middleware.AccountSessionsPrefix+"*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	req := httptest.NewRequest("GET", "/view-account", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+sid)
	viewResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, viewResp.StatusCode)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	app, _ := setupAccountsTest(t)
	resp, _ := createAccount(t, app, validBody)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = createAccount(t, app, validBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestViewAccount_NoSession(t *testing.T) {
	app, _ := setupAccountsTest(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/view-account", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
