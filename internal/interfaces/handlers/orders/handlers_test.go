package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	ordersvc "carbon-exchange/internal/application/orders"
	"carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/application/projects"
	"carbon-exchange/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	seller = "0x1111111111111111111111111111111111111111"
	other  = "0x2222222222222222222222222222222222222222"
)

// setupOrdersTest registers one 1000-credit project issued to seller and serves
// the order routes with caller in the session.
func setupOrdersTest(t *testing.T, caller string) *fiber.App {
	db := testdb.Open(t)
	ctx := context.Background()
	_, err := (&platform.Service{DB: db}).Ensure(ctx, owner, 200, 1000)
	require.NoError(t, err)
	_, err = (&projects.Service{DB: db}).CreateProject(ctx, seller, projects.CreateProjectInput{
		Name:           "Rimba Raya",
		Location:       "Indonesia",
		ProjectType:    "REDD+",
		TotalCredits:   1000,
		PricePerCredit: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	h := &Handlers{Service: &ordersvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		addr := caller
		if h := c.Get("X-Test-Address"); h != "" {
			addr = h
		}
		c.Locals("user", map[string]interface{}{"account_id": "acc-1", "address": addr})
		return c.Next()
	})
	app.Post("/create-order", h.CreateOrder)
	app.Post("/cancel-order", h.CancelOrder)
	app.Get("/get-order/:order_id", h.GetOrder)
	app.Get("/get-active-orders", h.GetActiveOrders)
	app.Get("/get-all-orders", h.GetAllOrders)
	app.Get("/get-total-orders", h.GetTotalOrders)
	app.Get("/get-seller-orders/:address", h.GetSellerOrders)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	return doAs(t, app, "", method, path, body)
}

func doAs(t *testing.T, app *fiber.App, caller, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set("X-Test-Address", caller)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestCreateOrder_ThenListed(t *testing.T) {
	app := setupOrdersTest(t, seller)
	code, out := do(t, app, "POST", "/create-order", map[string]interface{}{
		"project_id": 1, "amount": 100, "price_per_credit": "0.01",
	})
	require.Equal(t, 201, code)
	assert.Equal(t, float64(1), out["data"].(map[string]interface{})["order_id"])

	code, out = do(t, app, "GET", "/get-active-orders", nil)
	assert.Equal(t, 200, code)
	list := out["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Rimba Raya", list[0].(map[string]interface{})["project_name"])

	code, out = do(t, app, "GET", "/get-total-orders", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, float64(1), out["data"].(map[string]interface{})["total_orders"])

	code, out = do(t, app, "GET", "/get-seller-orders/"+seller, nil)
	assert.Equal(t, 200, code)
	assert.Len(t, out["data"], 1)
}

func TestCreateOrder_InsufficientBalance(t *testing.T) {
	app := setupOrdersTest(t, seller)
	code, out := do(t, app, "POST", "/create-order", map[string]interface{}{
		"project_id": 1, "amount": 5000, "price_per_credit": "0.01",
	})
	assert.Equal(t, 400, code)
	assert.Equal(t, "Insufficient balance", out["error"].(map[string]interface{})["message"])
}

func TestCreateOrder_UnknownProject(t *testing.T) {
	app := setupOrdersTest(t, seller)
	code, _ := do(t, app, "POST", "/create-order", map[string]interface{}{
		"project_id": 7, "amount": 1, "price_per_credit": "1",
	})
	assert.Equal(t, 404, code)
}

func TestCancelOrder_NotSeller(t *testing.T) {
	app := setupOrdersTest(t, seller)
	code, _ := do(t, app, "POST", "/create-order", map[string]interface{}{
		"project_id": 1, "amount": 10, "price_per_credit": "0.5",
	})
	require.Equal(t, 201, code)

	code, _ = doAs(t, app, other, "POST", "/cancel-order", map[string]interface{}{"order_id": 1})
	assert.Equal(t, 403, code)

	code, out := do(t, app, "GET", "/get-order/1", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, true, out["data"].(map[string]interface{})["is_active"])
}

func TestCancelOrder_Twice(t *testing.T) {
	app := setupOrdersTest(t, seller)
	code, _ := do(t, app, "POST", "/create-order", map[string]interface{}{
		"project_id": 1, "amount": 10, "price_per_credit": "0.5",
	})
	require.Equal(t, 201, code)

	code, out := do(t, app, "POST", "/cancel-order", map[string]interface{}{"order_id": 1})
	assert.Equal(t, 200, code)
	assert.Equal(t, false, out["data"].(map[string]interface{})["is_active"])

	code, _ = do(t, app, "POST", "/cancel-order", map[string]interface{}{"order_id": 1})
	assert.Equal(t, 400, code)
}

func TestGetOrder_BadID(t *testing.T) {
	app := setupOrdersTest(t, seller)
	code, _ := do(t, app, "GET", "/get-order/zero", nil)
	assert.Equal(t, 400, code)
	code, _ = do(t, app, "GET", "/get-order/3", nil)
	assert.Equal(t, 404, code)
}
