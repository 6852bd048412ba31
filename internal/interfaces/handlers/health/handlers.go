package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	healthsvc "carbon-exchange/internal/application/health"
	platsvc "carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// LedgerStats is the platform read the dashboard summarises.
type LedgerStats interface {
	Stats(ctx context.Context) (*platsvc.Stats, error)
}

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
	EventsChannel  string
	Ledger         LedgerStats
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := c.UserContext()
	keys := []string{middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime, middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog}
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns health data as JSON: service, status, runtime, traffic, dependencies.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.UserContext(), h.Rdb, h.DB, h.EventsChannel)
	out := map[string]interface{}{
		"service":      "carbon-exchange-api",
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	}
	return c.JSON(out)
}

// Errors returns the last 50 error log entries from Redis (LRANGE health:global:error_log 0 49).
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := h.Rdb.LRange(c.UserContext(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	errors := make([]map[string]interface{}, 0, len(entries))
	for _, s := range entries {
		var m map[string]interface{}
		if _ = json.Unmarshal([]byte(s), &m); m != nil {
			errors = append(errors, m)
		}
	}
	return c.JSON(errors)
}

// Dashboard returns the HTML status page: dependencies, ledger totals and traffic.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	result := healthsvc.CollectHealth(ctx, h.Rdb, h.DB, h.EventsChannel)

	var ledger *healthsvc.LedgerSummary
	if h.Ledger != nil {
		st, err := h.Ledger.Stats(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("dashboard: ledger stats unavailable")
		} else {
			ledger = &healthsvc.LedgerSummary{
				TotalProjects:   st.TotalProjects,
				ActiveOrders:    st.ActiveOrders,
				TotalOrders:     st.TotalOrders,
				TotalRetired:    st.TotalRetired,
				FeeBps:          st.FeeBps,
				AccumulatedFees: st.AccumulatedFees.String(),
				OwnerAddress:    st.OwnerAddress,
			}
		}
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(healthsvc.RenderDashboardHTML(result, ledger))
}
