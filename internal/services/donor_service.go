package services

import (
	"context"
	"errors"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/google/uuid"
)

type userLookup interface {
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type DonorRecords interface {
	store.DonorStore
	store.AuditStore
	userLookup
}

type DonorService struct {
	store DonorRecords
}

func NewDonorService(s DonorRecords) *DonorService {
	return &DonorService{store: s}
}

// ListAll returns every donor record with the owning account's email.
func (s *DonorService) ListAll(ctx context.Context) ([]models.Donor, error) {
	donors, err := s.store.ListDonors(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(donors))
	for i := range donors {
		ids[i] = donors[i].UserID
	}
	emails, err := emailsByID(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	for i := range donors {
		donors[i].Email = emails[donors[i].UserID]
		if donors[i].Donations == nil {
			donors[i].Donations = []models.Donation{}
		}
	}
	return donors, nil
}

func (s *DonorService) MyDonations(ctx context.Context, id identity.Identity) ([]models.Donation, error) {
	donor, err := s.store.DonorByUserID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []models.Donation{}, nil
		}
		return nil, err
	}
	if donor.Donations == nil {
		return []models.Donation{}, nil
	}
	return donor.Donations, nil
}

func (s *DonorService) AddDonation(ctx context.Context, id identity.Identity, req *dto.DonateRequest) ([]models.Donation, error) {
	if id.Role != models.RoleDonor {
		return nil, ErrForbidden
	}

	bt := models.BloodType(req.BloodType)
	if err := validateBloodType(bt); err != nil {
		return nil, err
	}
	if err := validateUnits(req.Units); err != nil {
		return nil, err
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateCNIC(req.CNIC); err != nil {
		return nil, err
	}

	donor, err := s.store.EnsureDonor(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	donation := models.Donation{
		Name:      req.Name,
		CNIC:      req.CNIC,
		BloodType: bt,
		Units:     req.Units,
		Date:      time.Now().UTC(),
	}
	if err := s.store.AppendDonation(ctx, donor.ID, &donation); err != nil {
		return nil, err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      id,
		EntityType: entityDonation,
		EntityID:   donation.ID,
		Action:     models.AuditCreate,
		After:      donation,
	})

	return s.MyDonations(ctx, id)
}

func (s *DonorService) UpdateDonation(ctx context.Context, id identity.Identity, req *dto.UpdateDonationRequest) (*models.Donation, error) {
	patch, err := donationPatch(req)
	if err != nil {
		return nil, err
	}

	donor, current, err := s.locate(ctx, id, req.DonationID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.store.UpdateDonation(ctx, donor.ID, current.ID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      id,
		EntityType: entityDonation,
		EntityID:   current.ID,
		Action:     models.AuditUpdate,
		Before:     current,
		After:      updated,
	})
	return updated, nil
}

func (s *DonorService) DeleteDonation(ctx context.Context, id identity.Identity, donationID uuid.UUID) error {
	donor, current, err := s.locate(ctx, id, donationID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDonation(ctx, donor.ID, current.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDonationNotFound
		}
		return err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      id,
		EntityType: entityDonation,
		EntityID:   current.ID,
		Action:     models.AuditDelete,
		Before:     current,
	})
	return nil
}

// locate finds a donation the caller may act on. Entries owned by another
// donor are reported as missing.
func (s *DonorService) locate(ctx context.Context, id identity.Identity, donationID uuid.UUID) (*models.Donor, *models.Donation, error) {
	if id.Role != models.RoleDonor && !id.IsAdmin() {
		return nil, nil, ErrForbidden
	}
	if donationID == uuid.Nil {
		return nil, nil, invalid("donationId", "is required")
	}

	donor, donation, err := s.store.FindDonation(ctx, donationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrDonationNotFound
		}
		return nil, nil, err
	}
	if !id.IsAdmin() && donor.UserID != id.UserID {
		return nil, nil, ErrDonationNotFound
	}
	return donor, donation, nil
}

func donationPatch(req *dto.UpdateDonationRequest) (models.DonationPatch, error) {
	var patch models.DonationPatch
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return patch, err
		}
		patch.Name = req.Name
	}
	if req.CNIC != nil {
		if err := validateCNIC(*req.CNIC); err != nil {
			return patch, err
		}
		patch.CNIC = req.CNIC
	}
	if req.BloodType != nil {
		bt := models.BloodType(*req.BloodType)
		if err := validateBloodType(bt); err != nil {
			return patch, err
		}
		patch.BloodType = &bt
	}
	if req.Units != nil {
		if err := validateUnits(*req.Units); err != nil {
			return patch, err
		}
		patch.Units = req.Units
	}
	return patch, nil
}

func emailsByID(ctx context.Context, users userLookup, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	list, err := users.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	emails := make(map[uuid.UUID]string, len(list))
	for _, u := range list {
		emails[u.ID] = u.Email
	}
	return emails, nil
}
