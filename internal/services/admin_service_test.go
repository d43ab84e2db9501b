package services_test

import (
	"context"
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryIsComputedFromEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.register(t, "d@x.com", models.RoleDonor)
	hospital := f.register(t, "h@x.com", models.RoleHospital)
	admin := f.adminIdentity(t)

	_, err := f.donors.AddDonation(ctx, donor, &dto.DonateRequest{BloodType: "O+", Units: 5})
	require.NoError(t, err)
	_, err = f.donors.AddDonation(ctx, donor, &dto.DonateRequest{BloodType: "O+", Units: 2})
	require.NoError(t, err)

	_, err = f.hospital.AddRequest(ctx, hospital, &dto.BloodRequestInput{BloodType: "O+", Units: 3})
	require.NoError(t, err)
	list, err := f.hospital.AddRequest(ctx, hospital, &dto.BloodRequestInput{BloodType: "O+", Units: 1})
	require.NoError(t, err)
	_, err = f.hospital.SetStatus(ctx, admin, list[0].ID, "Approved")
	require.NoError(t, err)

	items, err := f.admin.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(models.BloodTypes))

	var oPos dto.InventoryItem
	for _, item := range items {
		if item.BloodType == "O+" {
			oPos = item
		}
	}
	assert.Equal(t, 7, oPos.Donated)
	assert.Equal(t, 3, oPos.Approved)
	assert.Equal(t, 1, oPos.Pending)
	assert.Equal(t, 4, oPos.Available)
}

func TestDeleteUserKeepsRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.register(t, "d@x.com", models.RoleDonor)
	admin := f.adminIdentity(t)

	_, err := f.donors.AddDonation(ctx, donor, &dto.DonateRequest{BloodType: "A+", Units: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, f.admin.DeleteUser(ctx, admin, admin.UserID), services.ErrSelfDelete)
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, admin, uuid.New()), services.ErrUserNotFound)
	require.NoError(t, f.admin.DeleteUser(ctx, admin, donor.UserID))

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "d@x.com", Password: "pw", Role: "donor"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	all, err := f.donors.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Email)

	users, err := f.admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
