package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"carbon-exchange/internal/application/platform"
	projsvc "carbon-exchange/internal/application/projects"
	retsvc "carbon-exchange/internal/application/retirements"
	"carbon-exchange/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	issuer = "0x1111111111111111111111111111111111111111"
	other  = "0x2222222222222222222222222222222222222222"
)

func setupProjectsTest(t *testing.T, caller string) *fiber.App {
	db := testdb.Open(t)
	_, err := (&platform.Service{DB: db}).Ensure(context.Background(), owner, 200, 1000)
	require.NoError(t, err)
	h := &Handlers{
		Service:     &projsvc.Service{DB: db},
		Retirements: &retsvc.Service{DB: db},
	}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if caller != "" {
			c.Locals("user", map[string]interface{}{"account_id": "acc-1", "address": caller})
		}
		return c.Next()
	})
	app.Post("/create-project", h.CreateProject)
	app.Post("/verify-project", h.VerifyProject)
	app.Post("/deactivate-project", h.DeactivateProject)
	app.Get("/get-project/:project_id", h.GetProject)
	app.Get("/get-all-projects", h.GetAllProjects)
	app.Get("/get-total-projects", h.GetTotalProjects)
	app.Get("/get-user-projects/:address", h.GetUserProjects)
	app.Get("/get-project-retirements/:project_id", h.GetProjectRetirements)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

var validProject = map[string]interface{}{
	"name":             "Kasigau Corridor",
	"location":         "Kenya",
	"project_type":     "REDD+",
	"total_credits":    1000,
	"price_per_credit": "0.01",
	"metadata_uri":     "ipfs://kasigau",
}

func TestCreateProject_Created(t *testing.T) {
	app := setupProjectsTest(t, issuer)
	code, out := postJSON(t, app, "/create-project", validProject)
	assert.Equal(t, 201, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["project_id"])
	assert.Equal(t, issuer, data["issuer"])

	code, out = get(t, app, "/get-user-projects/"+issuer)
	assert.Equal(t, 200, code)
	ids := out["data"].(map[string]interface{})["project_ids"].([]interface{})
	assert.Len(t, ids, 1)
}

func TestCreateProject_ZeroCredits(t *testing.T) {
	app := setupProjectsTest(t, issuer)
	body := map[string]interface{}{"name": "X", "location": "Y", "project_type": "Z", "total_credits": 0, "price_per_credit": "1"}
	code, out := postJSON(t, app, "/create-project", body)
	assert.Equal(t, 400, code)
	assert.Equal(t, "Total credits must be > 0", out["error"].(map[string]interface{})["message"])
}

func TestVerifyProject_OwnerOnly(t *testing.T) {
	app := setupProjectsTest(t, issuer)
	code, _ := postJSON(t, app, "/create-project", validProject)
	require.Equal(t, 201, code)

	code, _ = postJSON(t, app, "/verify-project", map[string]interface{}{"project_id": 1})
	assert.Equal(t, 403, code)
}

func TestVerifyProject_Twice(t *testing.T) {
	app := setupProjectsTest(t, owner)
	code, _ := postJSON(t, app, "/create-project", validProject)
	require.Equal(t, 201, code)

	code, out := postJSON(t, app, "/verify-project", map[string]interface{}{"project_id": 1})
	assert.Equal(t, 200, code)
	assert.Equal(t, true, out["data"].(map[string]interface{})["is_verified"])

	code, _ = postJSON(t, app, "/verify-project", map[string]interface{}{"project_id": 1})
	assert.Equal(t, 409, code)
}

func TestDeactivateProject_MissingID(t *testing.T) {
	app := setupProjectsTest(t, issuer)
	code, _ := postJSON(t, app, "/deactivate-project", map[string]interface{}{})
	assert.Equal(t, 400, code)
}

func TestGetProject_NotFound(t *testing.T) {
	app := setupProjectsTest(t, "")
	code, _ := get(t, app, "/get-project/42")
	assert.Equal(t, 404, code)

	code, _ = get(t, app, "/get-project/abc")
	assert.Equal(t, 400, code)
}

func TestGetTotalProjects_Empty(t *testing.T) {
	app := setupProjectsTest(t, "")
	code, out := get(t, app, "/get-total-projects")
	assert.Equal(t, 200, code)
	assert.Equal(t, float64(0), out["data"].(map[string]interface{})["total_projects"])

	code, out = get(t, app, "/get-all-projects")
	assert.Equal(t, 200, code)
	assert.Empty(t, out["data"])
}

func TestGetProjectRetirements_UnknownProject(t *testing.T) {
	app := setupProjectsTest(t, "")
	code, _ := get(t, app, "/get-project-retirements/9")
	assert.Equal(t, 404, code)
}
