package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/bloodbank/bloodbank-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, s store.UserStore, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "hash", Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	newUser(t, s, "a@x.com", models.RoleDonor)
	err := s.CreateUser(ctx, &models.User{Email: "a@x.com", Password: "hash", Role: models.RoleHospital})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.UserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnsureDonorIsIdempotent(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "d@x.com", models.RoleDonor)

	first, err := s.EnsureDonor(ctx, u.ID)
	require.NoError(t, err)
	second, err := s.EnsureDonor(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	donors, err := s.ListDonors(ctx)
	require.NoError(t, err)
	assert.Len(t, donors, 1)
}

func TestDonationLifecycle(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "d@x.com", models.RoleDonor)
	donor, err := s.EnsureDonor(ctx, u.ID)
	require.NoError(t, err)

	d := &models.Donation{BloodType: models.OPositive, Units: 2, Date: time.Now().UTC()}
	require.NoError(t, s.AppendDonation(ctx, donor.ID, d))
	require.NotEqual(t, uuid.Nil, d.ID)

	owner, found, err := s.FindDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, donor.ID, owner.ID)
	assert.Equal(t, 2, found.Units)

	units := 3
	updated, err := s.UpdateDonation(ctx, donor.ID, d.ID, models.DonationPatch{Units: &units})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Units)
	assert.Equal(t, models.OPositive, updated.BloodType)

	_, err = s.UpdateDonation(ctx, donor.ID, uuid.New(), models.DonationPatch{Units: &units})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteDonation(ctx, donor.ID, d.ID))
	assert.ErrorIs(t, s.DeleteDonation(ctx, donor.ID, d.ID), store.ErrNotFound)

	loaded, err := s.DonorByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Donations)
}

func TestConcurrentAppendsKeepEveryEntry(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "d@x.com", models.RoleDonor)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			donor, err := s.EnsureDonor(ctx, u.ID)
			if err != nil {
				errs <- err
				return
			}
			errs <- s.AppendDonation(ctx, donor.ID, &models.Donation{
				BloodType: models.APositive,
				Units:     1,
				Date:      time.Now().UTC(),
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	donor, err := s.DonorByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, donor.Donations, n)
}

func TestGuardedRequestUpdate(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "h@x.com", models.RoleHospital)
	hospital, err := s.EnsureHospital(ctx, u.ID)
	require.NoError(t, err)

	r := &models.BloodRequest{BloodType: models.BNegative, Units: 4, Status: models.StatusPending, Date: time.Now().UTC()}
	require.NoError(t, s.AppendRequest(ctx, hospital.ID, r))

	pending := models.StatusPending
	approved := models.StatusApproved
	updated, err := s.UpdateRequest(ctx, hospital.ID, r.ID, models.RequestPatch{Status: &approved}, &pending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	rejected := models.StatusRejected
	_, err = s.UpdateRequest(ctx, hospital.ID, r.ID, models.RequestPatch{Status: &rejected}, &pending)
	assert.ErrorIs(t, err, store.ErrStale)

	_, err = s.UpdateRequest(ctx, hospital.ID, uuid.New(), models.RequestPatch{Status: &rejected}, &pending)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteRequest(ctx, hospital.ID, r.ID, &pending), store.ErrStale)
	require.NoError(t, s.DeleteRequest(ctx, hospital.ID, r.ID, nil))
}

func TestRefreshTokenRevokeOnce(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "d@x.com", models.RoleDonor)

	tok := &models.RefreshToken{UserID: u.ID, TokenHash: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateRefreshToken(ctx, tok))

	first, err := s.RevokeRefreshToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := s.RevokeRefreshToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.False(t, second)

	_, err = s.RefreshTokenByHash(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSystemLogsPurge(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.WriteSystemLogs(ctx, []models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -60), Level: "ERROR", Message: "old"},
		{Timestamp: now, Level: "ERROR", Message: "new"},
	}))

	deleted, err := s.PurgeSystemLogs(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestListAuditNewestFirst(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	actor := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.WriteAudit(ctx, &models.AuditLog{
			ActorID:    actor,
			ActorRole:  models.RoleAdmin,
			EntityType: "donation",
			EntityID:   uuid.New(),
			Action:     models.AuditCreate,
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	logs, total, err := s.ListAudit(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))
}
