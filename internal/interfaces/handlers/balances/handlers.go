package balances

import (
	balsvc "carbon-exchange/internal/application/balances"
	retsvc "carbon-exchange/internal/application/retirements"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/params"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service     *balsvc.Service
	Retirements *retsvc.Service
}

var errorCodes = map[error]int{
	domain.ErrInvalidAddress: fiber.StatusBadRequest,
	domain.ErrLengthMismatch: fiber.StatusBadRequest,
	domain.ErrBatchTooLarge:  fiber.StatusBadRequest,
}

// BalanceOf GET /api/v1/balances/balance-of/:address/:project_id
func (h *Handlers) BalanceOf(c *fiber.Ctx) error {
	pid, err := params.ID(c, "project_id")
	if err != nil {
		return response.BadRequest(c, "Invalid project_id")
	}
	address := c.Params("address")
	bal, err := h.Service.BalanceOf(c.UserContext(), address, pid)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Balance fetched successfully", fiber.Map{
		"address":    address,
		"project_id": pid,
		"balance":    bal,
	}, nil)
}

// BalanceOfBatch POST /api/v1/balances/balance-of-batch
// Entry i of the result is the balance of addresses[i] in project_ids[i].
func (h *Handlers) BalanceOfBatch(c *fiber.Ctx) error {
	var body struct {
		Addresses  []string `json:"addresses"`
		ProjectIDs []uint64 `json:"project_ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	out, err := h.Service.BalanceOfBatch(c.UserContext(), body.Addresses, body.ProjectIDs)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Balances fetched successfully", fiber.Map{"balances": out}, nil)
}

// ViewHoldings GET /api/v1/balances/view-holdings/:address
func (h *Handlers) ViewHoldings(c *fiber.Ctx) error {
	list, err := h.Service.Holdings(c.UserContext(), c.Params("address"))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Holdings fetched successfully", list, fiber.Map{"count": len(list)})
}

// RetiredCredits GET /api/v1/balances/retired-credits/:address
func (h *Handlers) RetiredCredits(c *fiber.Ctx) error {
	address := c.Params("address")
	n, err := h.Retirements.GetUserRetiredCredits(c.UserContext(), address)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Retired credits fetched successfully", fiber.Map{
		"address":         address,
		"retired_credits": n,
	}, nil)
}
