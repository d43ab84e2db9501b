package services_test

import (
	"context"
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRequestStartsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hospital := f.register(t, "h@x.com", models.RoleHospital)

	list, err := f.hospital.AddRequest(ctx, hospital, &dto.BloodRequestInput{BloodType: "A-", Units: 3})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusPending, list[0].Status)
	assert.Nil(t, list[0].DecidedBy)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hospital := f.register(t, "h@x.com", models.RoleHospital)
	admin := f.adminIdentity(t)

	list, err := f.hospital.AddRequest(ctx, hospital, &dto.BloodRequestInput{BloodType: "O-", Units: 2})
	require.NoError(t, err)
	id := list[0].ID

	_, err = f.hospital.SetStatus(ctx, hospital, id, "Approved")
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = f.hospital.UpdateRequest(ctx, hospital, id, &dto.UpdateBloodRequest{Status: strPtr("Approved")})
	assert.ErrorIs(t, err, services.ErrForbidden)

	approved, err := f.hospital.SetStatus(ctx, admin, id, "Approved")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, admin.UserID, *approved.DecidedBy)
	assert.NotNil(t, approved.DecidedAt)

	_, err = f.hospital.SetStatus(ctx, admin, id, "Rejected")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	_, err = f.hospital.SetStatus(ctx, admin, id, "Pending")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.hospital.SetStatus(ctx, admin, id, "Shipped")
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHospitalCannotEditDecidedRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hospital := f.register(t, "h@x.com", models.RoleHospital)
	admin := f.adminIdentity(t)

	list, err := f.hospital.AddRequest(ctx, hospital, &dto.BloodRequestInput{BloodType: "B+", Units: 1})
	require.NoError(t, err)
	id := list[0].ID

	edited, err := f.hospital.UpdateRequest(ctx, hospital, id, &dto.UpdateBloodRequest{Units: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, edited.Units)

	_, err = f.hospital.SetStatus(ctx, admin, id, "Rejected")
	require.NoError(t, err)

	_, err = f.hospital.UpdateRequest(ctx, hospital, id, &dto.UpdateBloodRequest{Units: intPtr(5)})
	assert.ErrorIs(t, err, services.ErrRequestFinalized)
	assert.ErrorIs(t, f.hospital.DeleteRequest(ctx, hospital, id), services.ErrRequestFinalized)

	require.NoError(t, f.hospital.DeleteRequest(ctx, admin, id))
	assert.ErrorIs(t, f.hospital.DeleteRequest(ctx, admin, id), services.ErrRequestNotFound)
}

func TestRequestsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "h1@x.com", models.RoleHospital)
	second := f.register(t, "h2@x.com", models.RoleHospital)

	list, err := f.hospital.AddRequest(ctx, first, &dto.BloodRequestInput{BloodType: "AB+", Units: 1})
	require.NoError(t, err)

	_, err = f.hospital.UpdateRequest(ctx, second, list[0].ID, &dto.UpdateBloodRequest{Units: intPtr(2)})
	assert.ErrorIs(t, err, services.ErrRequestNotFound)

	mine, err := f.hospital.MyRequests(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := f.hospital.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "h1@x.com", all[0].Email)
}
