package identity

import (
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	userID := uuid.New()

	id, err := FromClaims(jwt.MapClaims{"sub": userID.String(), "email": "a@x.com", "role": "hospital"})
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
	assert.Equal(t, models.RoleHospital, id.Role)
	assert.False(t, id.IsAdmin())

	for _, claims := range []jwt.MapClaims{
		{"role": "donor"},
		{"sub": "nope", "role": "donor"},
		{"sub": userID.String()},
		{"sub": userID.String(), "role": "root"},
	} {
		_, err := FromClaims(claims)
		assert.Error(t, err, "claims %v", claims)
	}
}
