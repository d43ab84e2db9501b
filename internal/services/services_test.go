package services_test

import (
	"context"
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/bloodbank/bloodbank-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *store.GormStore
	auth     *services.AuthService
	donors   *services.DonorService
	hospital *services.HospitalService
	admin    *services.AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStore(t)
	cfg := testutil.Config(t)
	return &fixture{
		store:    s,
		auth:     services.NewAuthService(s, cfg),
		donors:   services.NewDonorService(s),
		hospital: services.NewHospitalService(s),
		admin:    services.NewAdminService(s),
	}
}

// register creates an account and returns the identity its token would carry.
func (f *fixture) register(t *testing.T, email string, role models.Role) identity.Identity {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Email: email, Password: "pw", Role: string(role),
	})
	require.NoError(t, err)
	return identity.Identity{UserID: resp.User.ID, Email: resp.User.Email, Role: role}
}

func (f *fixture) adminIdentity(t *testing.T) identity.Identity {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.EnsureAdmin(ctx, "admin@x.com", "secret")
	require.NoError(t, err)
	u, err := f.store.UserByEmail(ctx, "admin@x.com")
	require.NoError(t, err)
	return identity.Identity{UserID: u.ID, Email: u.Email, Role: models.RoleAdmin}
}
