package middleware

import (
	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRole admits callers whose verified role claim is one of roles.
// It must run after JWTProtected.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		id, err := identity.FromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if _, ok := allowed[id.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Access denied for role " + string(id.Role),
			})
		}
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}
