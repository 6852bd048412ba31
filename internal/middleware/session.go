package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for Redis-backed session. Secret signs the cookie value; an empty
// Secret issues and accepts unsigned "s:<id>" cookies (local development only).
type SessionConfig struct {
	Secret            string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	sessionCookieName  = "carbon.sid"
	SessionCookieName  = "carbon.sid" // exported for auth/me debug logging
	sessionPrefix      = "session:"
	SessionRedisPrefix = "session:" // exported for auth logout (Del key)
	sessionMaxAge      = 24 * time.Hour
)

// AccountSessionsPrefix keys the set of live session ids per account.
const AccountSessionsPrefix = "user_sessions:"

// SessionUser is the shape stored in session under "user".
type SessionUser struct {
	AccountID   string `json:"account_id"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// SessionStore returns a Fiber middleware that loads/saves the session from Redis.
// Cookie name "carbon.sid", Redis key prefix "session:". A cookie whose signature
// does not match cfg.Secret is ignored.
func SessionStore(rdb *redis.Client, cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, _ := UnsignSessionCookie(c.Cookies(sessionCookieName), cfg.Secret)
		key := sessionPrefix + sessionID

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(context.Background(), key).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		// Store in Locals for handlers
		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals("user", u)
		} else {
			c.Locals("user", nil)
		}
		c.Locals("session_id", sessionID)

		err := c.Next()
		if err != nil {
			return err
		}

		// Persist if we have a session id (e.g. after login)
		if sid, _ := c.Locals("session_id").(string); sid != "" {
			updated, _ := c.Locals("session_data").(map[string]interface{})
			if updated != nil {
				b, _ := json.Marshal(updated)
				rdb.Set(context.Background(), sessionPrefix+sid, b, sessionMaxAge)
			}
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}

// SetSessionUser sets the user in the session and marks session for save.
// Call after login/register; use RegenerateSessionID first to get a new id.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals("session_data").(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"account_id":   user.AccountID,
		"address":      user.Address,
		"email":        user.Email,
		"display_name": user.DisplayName,
	}
	c.Locals("session_data", data)
	c.Locals("user", data["user"])
}

// RegenerateSessionID creates a new session ID and sets it in Locals (cookie set by handler).
// Cookie value is "s:"+returned ID.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals("session_id", newID)
	return newID
}

// DestroySession clears user and session data from Locals so nothing is saved back;
// caller must clear cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals("session_data", make(map[string]interface{}))
	c.Locals("user", nil)
	c.Locals("session_id", "")
}

// SessionCookieConfig returns cookie options for SetCookie/ClearCookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	secure := cfg.IsProduction && cfg.AllowCrossSiteDev
	return fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// StartSession rotates the session id, stores user in it, records the id in the
// account's session set and sets the cookie.
func StartSession(c *fiber.Ctx, rdb *redis.Client, cfg SessionConfig, user SessionUser) (string, error) {
	sessionID := RegenerateSessionID(c)
	SetSessionUser(c, user)
	if rdb != nil {
		if err := rdb.SAdd(context.Background(), AccountSessionsPrefix+user.AccountID, sessionID).Err(); err != nil {
			return "", err
		}
	}
	cookie := SessionCookieConfig(cfg)
	cookie.Value = SignSessionCookie(sessionID, cfg.Secret)
	c.Cookie(&cookie)
	return sessionID, nil
}

// SignSessionCookie returns the cookie value for id: "s:<id>.<hmac-sha256>".
func SignSessionCookie(id, secret string) string {
	if secret == "" {
		return "s:" + id
	}
	return "s:" + id + "." + sessionSignature(id, secret)
}

// UnsignSessionCookie returns the session id carried by a cookie value, or false
// when the value is malformed or its signature does not match secret.
func UnsignSessionCookie(value, secret string) (string, bool) {
	if !strings.HasPrefix(value, "s:") {
		return "", false
	}
	value = value[2:]
	if secret == "" {
		id, _, _ := strings.Cut(value, ".")
		return id, id != ""
	}
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(sessionSignature(id, secret))) {
		return "", false
	}
	return id, true
}

func sessionSignature(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
