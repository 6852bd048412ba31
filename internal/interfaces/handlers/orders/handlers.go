package orders

import (
	ordersvc "carbon-exchange/internal/application/orders"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/params"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *ordersvc.Service
}

var errorCodes = map[error]int{
	domain.ErrInvalidAddress:      fiber.StatusBadRequest,
	domain.ErrInvalidAmount:       fiber.StatusBadRequest,
	domain.ErrZeroPrice:           fiber.StatusBadRequest,
	domain.ErrPrecision:           fiber.StatusBadRequest,
	domain.ErrInsufficientBalance: fiber.StatusBadRequest,
	domain.ErrProjectInactive:     fiber.StatusBadRequest,
	domain.ErrOrderInactive:       fiber.StatusBadRequest,
	domain.ErrProjectNotFound:     fiber.StatusNotFound,
	domain.ErrOrderNotFound:       fiber.StatusNotFound,
	domain.ErrNotOrderSeller:      fiber.StatusForbidden,
}

type createOrderBody struct {
	ProjectID      uint64          `json:"project_id"`
	Amount         int64           `json:"amount"`
	PricePerCredit decimal.Decimal `json:"price_per_credit"`
}

// CreateOrder POST /api/v1/orders/create-order
func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	var body createOrderBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.ProjectID == 0 {
		return response.BadRequest(c, "project_id is required")
	}
	o, err := h.Service.CreateSellOrder(c.UserContext(), middleware.SessionAddress(c), body.ProjectID, body.Amount, body.PricePerCredit)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.SuccessCreated(c, "Sell order created successfully", o, nil)
}

// CancelOrder POST /api/v1/orders/cancel-order
func (h *Handlers) CancelOrder(c *fiber.Ctx) error {
	var body struct {
		OrderID uint64 `json:"order_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.OrderID == 0 {
		return response.BadRequest(c, "order_id is required")
	}
	o, err := h.Service.CancelSellOrder(c.UserContext(), middleware.SessionAddress(c), body.OrderID)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Sell order cancelled successfully", o, nil)
}

// GetOrder GET /api/v1/orders/get-order/:order_id
func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	id, err := params.ID(c, "order_id")
	if err != nil {
		return response.BadRequest(c, "Invalid order_id")
	}
	o, err := h.Service.GetOrder(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Order fetched successfully", o, nil)
}

// GetActiveOrders GET /api/v1/orders/get-active-orders
func (h *Handlers) GetActiveOrders(c *fiber.Ctx) error {
	list, err := h.Service.GetActiveOrders(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Active orders fetched successfully", list, fiber.Map{"count": len(list)})
}

// GetAllOrders GET /api/v1/orders/get-all-orders
func (h *Handlers) GetAllOrders(c *fiber.Ctx) error {
	list, err := h.Service.GetAllOrders(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Orders fetched successfully", list, fiber.Map{"count": len(list)})
}

// GetTotalOrders GET /api/v1/orders/get-total-orders
func (h *Handlers) GetTotalOrders(c *fiber.Ctx) error {
	n, err := h.Service.GetTotalOrders(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Total orders fetched successfully", fiber.Map{"total_orders": n}, nil)
}

// GetSellerOrders GET /api/v1/orders/get-seller-orders/:address
func (h *Handlers) GetSellerOrders(c *fiber.Ctx) error {
	list, err := h.Service.GetSellerOrders(c.UserContext(), c.Params("address"))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Seller orders fetched successfully", list, fiber.Map{"count": len(list)})
}
