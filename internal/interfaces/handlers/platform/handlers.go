package platform

import (
	platsvc "carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *platsvc.Service
}

var errorCodes = map[error]int{
	domain.ErrInvalidAddress:         fiber.StatusBadRequest,
	domain.ErrInvalidAmount:          fiber.StatusBadRequest,
	domain.ErrFeeTooHigh:             fiber.StatusBadRequest,
	domain.ErrNoFees:                 fiber.StatusBadRequest,
	domain.ErrUnauthorized:           fiber.StatusForbidden,
	domain.ErrPlatformNotInitialized: fiber.StatusServiceUnavailable,
}

// GetFee GET /api/v1/platform/fee
func (h *Handlers) GetFee(c *fiber.Ctx) error {
	bps, err := h.Service.GetFee(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Platform fee fetched successfully", fiber.Map{"fee_bps": bps}, nil)
}

// GetAccumulatedFees GET /api/v1/platform/accumulated-fees
func (h *Handlers) GetAccumulatedFees(c *fiber.Ctx) error {
	fees, err := h.Service.GetAccumulatedFees(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Accumulated fees fetched successfully", fiber.Map{"accumulated_fees": fees}, nil)
}

// GetStats GET /api/v1/platform/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	st, err := h.Service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Platform stats fetched successfully", st, nil)
}

// GetOwner GET /api/v1/platform/owner
func (h *Handlers) GetOwner(c *fiber.Ctx) error {
	owner, err := h.Service.GetOwner(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Platform owner fetched successfully", fiber.Map{"owner_address": owner}, nil)
}

// UpdateFee PATCH /api/v1/platform/update-fee
func (h *Handlers) UpdateFee(c *fiber.Ctx) error {
	var body struct {
		FeeBps *int `json:"fee_bps"`
	}
	if err := c.BodyParser(&body); err != nil || body.FeeBps == nil {
		return response.BadRequest(c, "fee_bps is required")
	}
	st, err := h.Service.UpdatePlatformFee(c.UserContext(), middleware.SessionAddress(c), *body.FeeBps)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Platform fee updated successfully", st, nil)
}

// WithdrawFees POST /api/v1/platform/withdraw-fees
// Pays the whole accumulated balance to the current owner.
func (h *Handlers) WithdrawFees(c *fiber.Ctx) error {
	w, err := h.Service.WithdrawFees(c.UserContext(), middleware.SessionAddress(c))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Fees withdrawn successfully", w, nil)
}

// TransferOwnership PATCH /api/v1/platform/transfer-ownership
func (h *Handlers) TransferOwnership(c *fiber.Ctx) error {
	var body struct {
		NewOwner string `json:"new_owner"`
	}
	if err := c.BodyParser(&body); err != nil || body.NewOwner == "" {
		return response.BadRequest(c, "new_owner is required")
	}
	st, err := h.Service.TransferOwnership(c.UserContext(), middleware.SessionAddress(c), body.NewOwner)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Ownership transferred successfully", st, nil)
}
