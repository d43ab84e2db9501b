package services_test

import (
	"context"
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSameEmailConflictsAcrossRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "d@x.com", models.RoleDonor)

	_, err := f.auth.Register(ctx, &dto.RegisterRequest{Email: "D@x.com ", Password: "pw", Role: "hospital"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []dto.RegisterRequest{
		{Email: "", Password: "pw", Role: "donor"},
		{Email: "no-at-sign", Password: "pw", Role: "donor"},
		{Email: "a@x.com", Password: "", Role: "donor"},
		{Email: "a@x.com", Password: "pw", Role: "admin"},
		{Email: "a@x.com", Password: "pw", Role: "nurse"},
	}
	for _, req := range cases {
		_, err := f.auth.Register(ctx, &req)
		var verr *services.ValidationError
		assert.ErrorAs(t, err, &verr, "request %+v", req)
	}
}

func TestLoginRequiresEmailPasswordAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "d@x.com", models.RoleDonor)

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "d@x.com", Password: "pw", Role: "donor"})
	require.NoError(t, err)
	assert.Equal(t, "donor", resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	for _, req := range []dto.LoginRequest{
		{Email: "x@x.com", Password: "pw", Role: "donor"},
		{Email: "d@x.com", Password: "nope", Role: "donor"},
		{Email: "d@x.com", Password: "pw", Role: "hospital"},
	} {
		_, err := f.auth.Login(ctx, &req)
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	}
}

func TestAccessTokenCarriesIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "h@x.com", models.RoleHospital)

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "h@x.com", Password: "pw", Role: "hospital"})
	require.NoError(t, err)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	id, err := identity.FromClaims(token.Claims.(jwt.MapClaims))
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id.UserID)
	assert.Equal(t, models.RoleHospital, id.Role)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "d@x.com", models.RoleDonor)

	login, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "d@x.com", Password: "pw", Role: "donor"})
	require.NoError(t, err)

	next, err := f.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, next.RefreshToken)

	_, err = f.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	require.NoError(t, f.auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: next.RefreshToken}))
	_, err = f.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: next.RefreshToken})
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.auth.EnsureAdmin(ctx, "admin@x.com", "secret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.auth.EnsureAdmin(ctx, "admin@x.com", "secret")
	require.NoError(t, err)
	assert.False(t, created)

	f.register(t, "d@x.com", models.RoleDonor)
	_, err = f.auth.EnsureAdmin(ctx, "d@x.com", "secret")
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}
