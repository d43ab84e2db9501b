// Package store persists users, donor/hospital records and their entries.
//
// Every entry mutation is a single atomic operation against the backend
// (row insert/update for SQL, $push/$set/$pull for MongoDB), so concurrent
// writers on the same record never overwrite each other's entries.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned when a guarded update finds the record in an
	// unexpected state.
	ErrStale = errors.New("record changed concurrently")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type DonorStore interface {
	// EnsureDonor returns the donor record for userID, creating an empty one
	// if none exists. Donations are not loaded.
	EnsureDonor(ctx context.Context, userID uuid.UUID) (*models.Donor, error)
	DonorByUserID(ctx context.Context, userID uuid.UUID) (*models.Donor, error)
	ListDonors(ctx context.Context) ([]models.Donor, error)
	AppendDonation(ctx context.Context, donorID uuid.UUID, donation *models.Donation) error
	// FindDonation returns the entry and its owning donor (without donations).
	FindDonation(ctx context.Context, donationID uuid.UUID) (*models.Donor, *models.Donation, error)
	UpdateDonation(ctx context.Context, donorID, donationID uuid.UUID, patch models.DonationPatch) (*models.Donation, error)
	DeleteDonation(ctx context.Context, donorID, donationID uuid.UUID) error
}

type HospitalStore interface {
	EnsureHospital(ctx context.Context, userID uuid.UUID) (*models.Hospital, error)
	HospitalByUserID(ctx context.Context, userID uuid.UUID) (*models.Hospital, error)
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
	AppendRequest(ctx context.Context, hospitalID uuid.UUID, req *models.BloodRequest) error
	FindRequest(ctx context.Context, requestID uuid.UUID) (*models.Hospital, *models.BloodRequest, error)
	// UpdateRequest applies patch; when expect is set the entry must still be
	// in that status, otherwise ErrStale.
	UpdateRequest(ctx context.Context, hospitalID, requestID uuid.UUID, patch models.RequestPatch, expect *models.RequestStatus) (*models.BloodRequest, error)
	DeleteRequest(ctx context.Context, hospitalID, requestID uuid.UUID, expect *models.RequestStatus) error
}

type TokenStore interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken reports whether this call performed the revocation.
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) (bool, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

type AuditStore interface {
	WriteAudit(ctx context.Context, entry *models.AuditLog) error
	ListAudit(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error)
}

// LogSink receives batched ERROR+ log records.
type LogSink interface {
	WriteSystemLogs(ctx context.Context, logs []models.SystemLog) error
	PurgeSystemLogs(ctx context.Context, before time.Time) (int64, error)
}

type Store interface {
	UserStore
	DonorStore
	HospitalStore
	TokenStore
	AuditStore
	LogSink

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
