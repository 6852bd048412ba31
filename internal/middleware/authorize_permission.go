package middleware

import (
	"context"

	"carbon-exchange/internal/pkg/constants"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const roleLocal = "role"

// OwnerResolver reports whether an address currently holds the platform owner role.
type OwnerResolver interface {
	IsOwner(ctx context.Context, address string) (bool, error)
}

// AuthorizePermission checks the session account's role against constants.PermissionRoles.
// The role is resolved per request so an ownership transfer takes effect immediately.
// Unconfigured permission -> 500 "Permission configuration error"; role not allowed -> 403.
func AuthorizePermission(owners OwnerResolver, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := SessionAddress(c)
		if address == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		roles, ok := constants.PermissionRoles[permission]
		if !ok || len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		role := constants.Holder
		if owners != nil {
			isOwner, err := owners.IsOwner(c.UserContext(), address)
			if err != nil {
				log.Error().Err(err).Str("trace_id", GetTraceID(c)).Msg("owner lookup failed")
				return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
			}
			if isOwner {
				role = constants.Owner
			}
		}
		if !constants.AllowedRole(permission, role) {
			return response.Forbidden(c, "User is Forbidden from performing this action")
		}
		c.Locals(roleLocal, role)
		return c.Next()
	}
}

// GetRole returns the role resolved by AuthorizePermission ("" before it ran).
func GetRole(c *fiber.Ctx) string {
	r, _ := c.Locals(roleLocal).(string)
	return r
}
