package transactions

import (
	txsvc "carbon-exchange/internal/application/transactions"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *txsvc.Service
}

var errorCodes = map[error]int{
	domain.ErrInvalidAddress: fiber.StatusBadRequest,
}

// GetTransactions GET /api/v1/transactions/get-transactions/:address
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	data, err := h.Service.ViewTransactions(c.UserContext(), c.Params("address"))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Transactions fetched successfully", data, fiber.Map{"count": len(data)})
}
