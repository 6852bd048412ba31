package trading

import (
	tradesvc "carbon-exchange/internal/application/trading"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *tradesvc.Service
}

var errorCodes = map[error]int{
	domain.ErrInvalidAddress:            fiber.StatusBadRequest,
	domain.ErrInvalidAmount:             fiber.StatusBadRequest,
	domain.ErrPrecision:                 fiber.StatusBadRequest,
	domain.ErrOrderInactive:             fiber.StatusBadRequest,
	domain.ErrProjectInactive:           fiber.StatusBadRequest,
	domain.ErrExceedsOrder:              fiber.StatusBadRequest,
	domain.ErrSelfTrade:                 fiber.StatusBadRequest,
	domain.ErrSelfTransfer:              fiber.StatusBadRequest,
	domain.ErrInsufficientPayment:       fiber.StatusBadRequest,
	domain.ErrInsufficientBalance:       fiber.StatusBadRequest,
	domain.ErrSellerInsufficientBalance: fiber.StatusConflict,
	domain.ErrCreditSupplyExceeded:      fiber.StatusConflict,
	domain.ErrOrderNotFound:             fiber.StatusNotFound,
	domain.ErrProjectNotFound:           fiber.StatusNotFound,
	domain.ErrPlatformNotInitialized:    fiber.StatusServiceUnavailable,
}

type purchaseBody struct {
	OrderID uint64          `json:"order_id"`
	Amount  int64           `json:"amount"`
	Payment decimal.Decimal `json:"payment"`
}

type retireBody struct {
	ProjectID uint64 `json:"project_id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

type transferBody struct {
	To        string `json:"to"`
	ProjectID uint64 `json:"project_id"`
	Amount    int64  `json:"amount"`
}

// PurchaseCredits POST /api/v1/trading/purchase-credits
// payment is the amount the buyer sends; anything above the order total is refunded.
func (h *Handlers) PurchaseCredits(c *fiber.Ctx) error {
	var body purchaseBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.OrderID == 0 {
		return response.BadRequest(c, "order_id is required")
	}
	s, err := h.Service.PurchaseCredits(c.UserContext(), middleware.SessionAddress(c), body.OrderID, body.Amount, body.Payment)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Credits purchased successfully", s, nil)
}

// RetireCredits POST /api/v1/trading/retire-credits
func (h *Handlers) RetireCredits(c *fiber.Ctx) error {
	var body retireBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.ProjectID == 0 {
		return response.BadRequest(c, "project_id is required")
	}
	r, err := h.Service.RetireCredits(c.UserContext(), middleware.SessionAddress(c), body.ProjectID, body.Amount, body.Reason)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.SuccessCreated(c, "Credits retired successfully", r, nil)
}

// TransferCredits POST /api/v1/trading/transfer-credits
func (h *Handlers) TransferCredits(c *fiber.Ctx) error {
	var body transferBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.ProjectID == 0 || body.To == "" {
		return response.BadRequest(c, "to and project_id are required")
	}
	tx, err := h.Service.TransferCredits(c.UserContext(), middleware.SessionAddress(c), body.To, body.ProjectID, body.Amount)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Credits transferred successfully", tx, nil)
}
