package ledgerevents

import (
	"strings"

	evsvc "carbon-exchange/internal/application/ledgerevents"
	"carbon-exchange/internal/pkg/params"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *evsvc.Service
}

// GetEvents GET /api/v1/events/get-events?type=&project_id=&order_id=&actor=&after_id=&limit=
// Consumers poll with after_id set to the last id they saw.
func (h *Handlers) GetEvents(c *fiber.Ctx) error {
	projectID, err := params.OptionalQueryID(c, "project_id")
	if err != nil {
		return response.BadRequest(c, "Invalid project_id")
	}
	orderID, err := params.OptionalQueryID(c, "order_id")
	if err != nil {
		return response.BadRequest(c, "Invalid order_id")
	}
	var afterID uint64
	if after, err := params.OptionalQueryID(c, "after_id"); err != nil {
		return response.BadRequest(c, "Invalid after_id")
	} else if after != nil {
		afterID = *after
	}

	events, err := h.Service.ListEvents(c.UserContext(), evsvc.Filter{
		EventType: c.Query("type"),
		ProjectID: projectID,
		OrderID:   orderID,
		Actor:     strings.ToLower(strings.TrimSpace(c.Query("actor"))),
		AfterID:   afterID,
		Limit:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return response.FromError(c, err, nil)
	}
	meta := fiber.Map{"count": len(events)}
	if len(events) > 0 {
		meta["last_id"] = events[len(events)-1].ID
	}
	return response.Success(c, "Events fetched successfully", events, meta)
}
