package accounts

import (
	acctsvc "carbon-exchange/internal/application/accounts"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds the account service and session wiring for create-account (session + cookie).
type Handlers struct {
	Service *acctsvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

var errorCodes = map[error]int{
	domain.ErrInvalidAddress:     fiber.StatusBadRequest,
	domain.ErrInvalidEmail:       fiber.StatusBadRequest,
	domain.ErrInvalidPassword:    fiber.StatusBadRequest,
	domain.ErrInvalidDisplayName: fiber.StatusBadRequest,
	domain.ErrAccountExists:      fiber.StatusConflict,
	domain.ErrAccountNotFound:    fiber.StatusNotFound,
}

// CreateAccount POST /api/v1/accounts/create-account: register, then log the new account in.
func (h *Handlers) CreateAccount(c *fiber.Ctx) error {
	var req acctsvc.CreateAccountInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Missing required fields")
	}
	if req.Address == "" || req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return response.BadRequest(c, "Missing required fields")
	}

	a, err := h.Service.CreateAccount(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}

	_, err = middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser{
		AccountID:   a.AccountID.String(),
		Address:     a.Address,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	})
	if err != nil {
		// the account exists; the client can still log in
		log.Warn().Err(err).Str("account_id", a.AccountID.String()).Msg("session start after signup failed")
	}
	return response.SuccessCreated(c, "Account created successfully", fiber.Map{"account": a}, nil)
}

// ViewAccount GET /api/v1/accounts/view-account returns the session's account.
func (h *Handlers) ViewAccount(c *fiber.Ctx) error {
	sess, err := acctsvc.VerifySession(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	a, err := h.Service.ViewAccount(c.UserContext(), sess.AccountID)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Account found", fiber.Map{"account": a}, nil)
}
