package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	platsvc "carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	owner    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	stranger = "0x1111111111111111111111111111111111111111"
	heir     = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func setupPlatformTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testdb.Open(t)
	svc := &platsvc.Service{DB: db}
	_, err := svc.Ensure(context.Background(), owner, 200, 1000)
	require.NoError(t, err)

	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"account_id": "acc-1", "address": c.Get("X-Test-Address")})
		return c.Next()
	})
	app.Get("/fee", h.GetFee)
	app.Get("/accumulated-fees", h.GetAccumulatedFees)
	app.Get("/stats", h.GetStats)
	app.Get("/owner", h.GetOwner)
	app.Patch("/update-fee", h.UpdateFee)
	app.Post("/withdraw-fees", h.WithdrawFees)
	app.Patch("/transfer-ownership", h.TransferOwnership)
	return app, db
}

func call(t *testing.T, app *fiber.App, caller, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Address", caller)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestReads(t *testing.T) {
	app, _ := setupPlatformTest(t)

	code, out := call(t, app, "", "GET", "/fee", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, float64(200), out["data"].(map[string]interface{})["fee_bps"])

	code, out = call(t, app, "", "GET", "/owner", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, owner, out["data"].(map[string]interface{})["owner_address"])

	code, out = call(t, app, "", "GET", "/stats", nil)
	assert.Equal(t, 200, code)
	stats := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1000), stats["fee_cap_bps"])
	assert.Equal(t, float64(0), stats["total_projects"])
}

func TestUpdateFee(t *testing.T) {
	app, _ := setupPlatformTest(t)

	code, _ := call(t, app, owner, "PATCH", "/update-fee", map[string]interface{}{})
	assert.Equal(t, 400, code)

	code, out := call(t, app, owner, "PATCH", "/update-fee", map[string]interface{}{"fee_bps": 1001})
	assert.Equal(t, 400, code)
	assert.Equal(t, "Fee too high", out["error"].(map[string]interface{})["message"])

	code, _ = call(t, app, stranger, "PATCH", "/update-fee", map[string]interface{}{"fee_bps": 100})
	assert.Equal(t, 403, code)

	code, out = call(t, app, owner, "PATCH", "/update-fee", map[string]interface{}{"fee_bps": 0})
	assert.Equal(t, 200, code)
	assert.Equal(t, float64(0), out["data"].(map[string]interface{})["fee_bps"])
}

func TestWithdrawFees(t *testing.T) {
	app, db := setupPlatformTest(t)

	code, _ := call(t, app, owner, "POST", "/withdraw-fees", nil)
	assert.Equal(t, 400, code)

	require.NoError(t, db.Model(&domain.PlatformState{}).Where("id = ?", 1).
		Update("accumulated_fees", decimal.RequireFromString("0.5")).Error)

	code, out := call(t, app, owner, "POST", "/withdraw-fees", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, owner, out["data"].(map[string]interface{})["recipient"])

	code, out = call(t, app, "", "GET", "/accumulated-fees", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "0", out["data"].(map[string]interface{})["accumulated_fees"])
}

func TestTransferOwnership(t *testing.T) {
	app, _ := setupPlatformTest(t)

	code, _ := call(t, app, owner, "PATCH", "/transfer-ownership", map[string]interface{}{"new_owner": "0x0000000000000000000000000000000000000000"})
	assert.Equal(t, 400, code)

	code, _ = call(t, app, owner, "PATCH", "/transfer-ownership", map[string]interface{}{"new_owner": heir})
	assert.Equal(t, 200, code)

	code, _ = call(t, app, owner, "PATCH", "/update-fee", map[string]interface{}{"fee_bps": 10})
	assert.Equal(t, 403, code)
	code, _ = call(t, app, heir, "PATCH", "/update-fee", map[string]interface{}{"fee_bps": 10})
	assert.Equal(t, 200, code)
}
