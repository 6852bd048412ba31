package auth

import (
	"context"
	"errors"

	"carbon-exchange/internal/application/accounts"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	AccountFinder accounts.AccountFinder
	Rdb           *redis.Client
	Config        middleware.SessionConfig
}

// Login POST /api/v1/auth/login: authenticate, start a session, track it per account, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.AccountFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req accounts.LoginInput
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, domain.ErrEmailPasswordRequired.Error())
	}

	acct, err := h.AccountFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailPasswordRequired):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrIncorrectPassword):
			return response.Unauthorized(c, err.Error())
		default:
			log.Error().Err(err).Msg("login lookup failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if _, err := middleware.StartSession(c, h.Rdb, h.Config, toSessionUser(acct)); err != nil {
		log.Error().Err(err).Str("account_id", acct.AccountID.String()).Msg("session tracking failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"account": sessionAccount(acct)}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	acct, err := accounts.VerifySession(sessionUser)
	if err != nil {
		log.Debug().Str("path", "/auth/me").
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Bool("session_user_nil", sessionUser == nil).
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, domain.ErrNotAuthenticated.Error())
	}
	return response.Success(c, "Authenticated", fiber.Map{"account": acct}, nil)
}

// Logout DELETE /api/v1/auth/logout: forget the session in Redis and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if sessionID != "" && h.Rdb != nil {
		if m, ok := middleware.GetUser(c).(map[string]interface{}); ok {
			if accountID, _ := m["account_id"].(string); accountID != "" {
				_ = h.Rdb.SRem(ctx, middleware.AccountSessionsPrefix+accountID, sessionID).Err()
			}
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}

	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

// toSessionUser is the session shape of an account.
func toSessionUser(a *domain.Account) middleware.SessionUser {
	return middleware.SessionUser{
		AccountID:   a.AccountID.String(),
		Address:     a.Address,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}

func sessionAccount(a *domain.Account) accounts.SessionAccount {
	return accounts.SessionAccount{
		AccountID:   a.AccountID.String(),
		Address:     a.Address,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}
