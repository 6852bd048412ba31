package trading

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"carbon-exchange/internal/application/orders"
	"carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/application/projects"
	tradesvc "carbon-exchange/internal/application/trading"
	"carbon-exchange/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	issuer = "0x1111111111111111111111111111111111111111"
	buyer  = "0x2222222222222222222222222222222222222222"
)

// setupTradingTest registers project 1 (1000 credits, issuer) with order 1
// selling 100 of them at 0.01.
func setupTradingTest(t *testing.T) *fiber.App {
	db := testdb.Open(t)
	ctx := context.Background()
	cent := decimal.RequireFromString("0.01")
	_, err := (&platform.Service{DB: db}).Ensure(ctx, owner, 200, 1000)
	require.NoError(t, err)
	p, err := (&projects.Service{DB: db}).CreateProject(ctx, issuer, projects.CreateProjectInput{
		Name:           "Katingan Mentaya",
		Location:       "Indonesia",
		ProjectType:    "Peatland",
		TotalCredits:   1000,
		PricePerCredit: cent,
	})
	require.NoError(t, err)
	_, err = (&orders.Service{DB: db}).CreateSellOrder(ctx, issuer, p.ProjectID, 100, cent)
	require.NoError(t, err)

	h := &Handlers{Service: &tradesvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"account_id": "acc-1", "address": c.Get("X-Test-Address")})
		return c.Next()
	})
	app.Post("/purchase-credits", h.PurchaseCredits)
	app.Post("/retire-credits", h.RetireCredits)
	app.Post("/transfer-credits", h.TransferCredits)
	return app
}

func post(t *testing.T, app *fiber.App, caller, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Address", caller)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestPurchaseCredits_MissingOrder(t *testing.T) {
	app := setupTradingTest(t)
	code, _ := post(t, app, buyer, "/purchase-credits", map[string]interface{}{})
	assert.Equal(t, 400, code)
}

func TestPurchaseCredits_Settles(t *testing.T) {
	app := setupTradingTest(t)
	code, out := post(t, app, buyer, "/purchase-credits", map[string]interface{}{
		"order_id": 1, "amount": 30, "payment": "0.5",
	})
	require.Equal(t, 200, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "0.006", data["fee"])
	assert.Equal(t, "0.294", data["seller_proceeds"])
	assert.Equal(t, "0.2", data["refund"])
	assert.Equal(t, buyer, data["buyer"])
}

func TestPurchaseCredits_Rejections(t *testing.T) {
	app := setupTradingTest(t)

	code, out := post(t, app, issuer, "/purchase-credits", map[string]interface{}{
		"order_id": 1, "amount": 1, "payment": "1",
	})
	assert.Equal(t, 400, code)
	assert.Equal(t, "Cannot buy own credits", out["error"].(map[string]interface{})["message"])

	code, _ = post(t, app, buyer, "/purchase-credits", map[string]interface{}{
		"order_id": 1, "amount": 30, "payment": "0.1",
	})
	assert.Equal(t, 400, code)

	code, _ = post(t, app, buyer, "/purchase-credits", map[string]interface{}{
		"order_id": 5, "amount": 1, "payment": "1",
	})
	assert.Equal(t, 404, code)
}

func TestRetireCredits_IssuesCertificate(t *testing.T) {
	app := setupTradingTest(t)
	code, out := post(t, app, issuer, "/retire-credits", map[string]interface{}{
		"project_id": 1, "amount": 25,
	})
	require.Equal(t, 201, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "Carbon offset", data["reason"])
	assert.Regexp(t, `^CERT-000001-[0-9A-F]{8}$`, data["certificate_number"])

	code, _ = post(t, app, buyer, "/retire-credits", map[string]interface{}{
		"project_id": 1, "amount": 1,
	})
	assert.Equal(t, 400, code)
}

func TestTransferCredits(t *testing.T) {
	app := setupTradingTest(t)
	code, out := post(t, app, issuer, "/transfer-credits", map[string]interface{}{
		"to": buyer, "project_id": 1, "amount": 40,
	})
	require.Equal(t, 200, code)
	assert.Equal(t, "transfer", out["data"].(map[string]interface{})["type"])

	code, _ = post(t, app, issuer, "/transfer-credits", map[string]interface{}{
		"to": issuer, "project_id": 1, "amount": 1,
	})
	assert.Equal(t, 400, code)

	code, _ = post(t, app, issuer, "/transfer-credits", map[string]interface{}{"project_id": 1, "amount": 1})
	assert.Equal(t, 400, code)
}
