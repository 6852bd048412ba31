package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errKnown = errors.New("Order not found")

func TestFromError(t *testing.T) {
	codes := map[error]int{errKnown: fiber.StatusNotFound}
	app := fiber.New()
	app.Get("/known", func(c *fiber.Ctx) error {
		return FromError(c, fmt.Errorf("lookup: %w", errKnown), codes)
	})
	app.Get("/unknown", func(c *fiber.Ctx) error {
		return FromError(c, errors.New("boom"), codes)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/known", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "lookup: Order not found", body.Error.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSuccess_DefaultsMetadata(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return Success(c, "ok", fiber.Map{"n": 1}, nil)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, map[string]interface{}{}, body["metadata"])
}
