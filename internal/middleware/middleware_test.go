package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"carbon-exchange/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

type fakeOwners struct {
	owner string
	err   error
}

func (f fakeOwners) IsOwner(ctx context.Context, address string) (bool, error) {
	return address == f.owner, f.err
}

func withUser(address string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if address != "" {
			c.Locals(userLocal, map[string]interface{}{"account_id": "acc-1", "address": address})
		}
		return c.Next()
	}
}

func statusOf(t *testing.T, app *fiber.App, method, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", withUser(""), RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(200) })
	app.Get("/user", withUser(ownerAddr), RequireAuth(), func(c *fiber.Ctx) error { return c.SendString(SessionAddress(c)) })

	assert.Equal(t, fiber.StatusUnauthorized, statusOf(t, app, "GET", "/anon"))
	assert.Equal(t, fiber.StatusOK, statusOf(t, app, "GET", "/user"))
}

func TestAuthorizePermission(t *testing.T) {
	owners := fakeOwners{owner: ownerAddr}
	ok := func(c *fiber.Ctx) error { return c.SendString(GetRole(c)) }

	app := fiber.New()
	app.Post("/fee/owner", withUser(ownerAddr), AuthorizePermission(owners, constants.ManageFees), ok)
	app.Post("/fee/holder", withUser("0x1111111111111111111111111111111111111111"), AuthorizePermission(owners, constants.ManageFees), ok)
	app.Post("/buy/holder", withUser("0x1111111111111111111111111111111111111111"), AuthorizePermission(owners, constants.BuyCredits), ok)
	app.Post("/anon", withUser(""), AuthorizePermission(owners, constants.BuyCredits), ok)
	app.Post("/unknown", withUser(ownerAddr), AuthorizePermission(owners, "launch_rockets"), ok)
	app.Post("/broken", withUser(ownerAddr), AuthorizePermission(fakeOwners{err: errors.New("db down")}, constants.ManageFees), ok)

	resp, err := app.Test(httptest.NewRequest("POST", "/fee/owner", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, constants.Owner, string(body))

	assert.Equal(t, fiber.StatusForbidden, statusOf(t, app, "POST", "/fee/holder"))
	assert.Equal(t, fiber.StatusOK, statusOf(t, app, "POST", "/buy/holder"))
	assert.Equal(t, fiber.StatusUnauthorized, statusOf(t, app, "POST", "/anon"))
	assert.Equal(t, fiber.StatusInternalServerError, statusOf(t, app, "POST", "/unknown"))
	assert.Equal(t, fiber.StatusInternalServerError, statusOf(t, app, "POST", "/broken"))
}

func TestSessionStore_PersistsUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New()
	app.Use(SessionStore(rdb, SessionConfig{}))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{AccountID: "acc-1", Address: ownerAddr, Email: "o@x.io", DisplayName: "Owner"})
		return c.SendString(sid)
	})
	app.Get("/who", func(c *fiber.Ctx) error { return c.SendString(SessionAddress(c)) })

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	sid, _ := io.ReadAll(resp.Body)

	raw, err := rdb.Get(context.Background(), SessionRedisPrefix+string(sid)).Bytes()
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, ownerAddr, stored["user"].(map[string]interface{})["address"])

	req := httptest.NewRequest("GET", "/who", nil)
	req.Header.Set("Cookie", SessionCookieName+"=s:"+string(sid))
	resp2, err := app.Test(req)
	require.NoError(t, err)
	who, _ := io.ReadAll(resp2.Body)
	assert.Equal(t, ownerAddr, string(who))
}

func TestSessionStore_RequiresValidSignature(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := SessionConfig{Secret: "s3cret"}
	app := fiber.New()
	app.Use(SessionStore(rdb, cfg))
	app.Post("/login", func(c *fiber.Ctx) error {
		_, err := StartSession(c, rdb, cfg, SessionUser{AccountID: "acc-1", Address: ownerAddr})
		return err
	})
	app.Get("/who", func(c *fiber.Ctx) error { return c.SendString(SessionAddress(c)) })

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	var cookie string
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookieName {
			cookie = ck.Value
		}
	}
	sid, ok := UnsignSessionCookie(cookie, cfg.Secret)
	require.True(t, ok)

	who := func(value string) string {
		req := httptest.NewRequest("GET", "/who", nil)
		req.Header.Set("Cookie", SessionCookieName+"="+value)
		resp, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		return string(b)
	}
	assert.Equal(t, ownerAddr, who(cookie))
	assert.Empty(t, who("s:"+sid))
	assert.Empty(t, who("s:"+sid+".forged"))
	assert.Empty(t, who(SignSessionCookie(sid, "other-secret")))
}

func TestUnsignSessionCookie(t *testing.T) {
	signed := SignSessionCookie("abc", "k")
	id, ok := UnsignSessionCookie(signed, "k")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = UnsignSessionCookie(signed, "other")
	assert.False(t, ok)
	_, ok = UnsignSessionCookie("abc", "k")
	assert.False(t, ok)

	id, ok = UnsignSessionCookie("s:abc", "")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestHealthMarker_RecordsErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(HealthMarker(rdb))
	app.Get("/api/ok", func(c *fiber.Ctx) error { return c.SendStatus(200) })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return errors.New("kaboom") })

	statusOf(t, app, "GET", "/api/ok")
	assert.Equal(t, fiber.StatusInternalServerError, statusOf(t, app, "GET", "/api/boom"))

	ctx := context.Background()
	total, _ := rdb.Get(ctx, KeyReqTotal).Int()
	failed, _ := rdb.Get(ctx, KeyReqErrors).Int()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, failed)

	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "kaboom")
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".carbon.exchange", DevPassword: "letmein"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://app.carbon.exchange")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.carbon.exchange", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req.Header.Set("dev-password", "letmein")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
