// Package identity resolves the authenticated caller from verified JWT claims.
package identity

import (
	"errors"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextKey is the fiber Locals key the JWT middleware stores the token under.
const ContextKey = "user"

var ErrNoIdentity = errors.New("no authenticated identity")

type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// FromContext extracts the caller from the verified token placed in Locals.
func FromContext(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return Identity{}, ErrNoIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return FromClaims(claims)
}

func FromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, errors.New("missing sub claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, errors.New("invalid sub claim")
	}

	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return Identity{}, errors.New("invalid role claim")
	}
	email, _ := claims["email"].(string)

	return Identity{UserID: userID, Email: email, Role: models.Role(role)}, nil
}
