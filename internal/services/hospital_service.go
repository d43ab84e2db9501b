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

type HospitalRecords interface {
	store.HospitalStore
	store.AuditStore
	userLookup
}

type HospitalService struct {
	store HospitalRecords
}

func NewHospitalService(s HospitalRecords) *HospitalService {
	return &HospitalService{store: s}
}

func (s *HospitalService) ListAll(ctx context.Context) ([]models.Hospital, error) {
	hospitals, err := s.store.ListHospitals(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(hospitals))
	for i := range hospitals {
		ids[i] = hospitals[i].UserID
	}
	emails, err := emailsByID(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	for i := range hospitals {
		hospitals[i].Email = emails[hospitals[i].UserID]
		if hospitals[i].Requests == nil {
			hospitals[i].Requests = []models.BloodRequest{}
		}
	}
	return hospitals, nil
}

func (s *HospitalService) MyRequests(ctx context.Context, id identity.Identity) ([]models.BloodRequest, error) {
	hospital, err := s.store.HospitalByUserID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []models.BloodRequest{}, nil
		}
		return nil, err
	}
	if hospital.Requests == nil {
		return []models.BloodRequest{}, nil
	}
	return hospital.Requests, nil
}

func (s *HospitalService) AddRequest(ctx context.Context, id identity.Identity, req *dto.BloodRequestInput) ([]models.BloodRequest, error) {
	if id.Role != models.RoleHospital {
		return nil, ErrForbidden
	}

	bt := models.BloodType(req.BloodType)
	if err := validateBloodType(bt); err != nil {
		return nil, err
	}
	if err := validateUnits(req.Units); err != nil {
		return nil, err
	}

	hospital, err := s.store.EnsureHospital(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	entry := models.BloodRequest{
		BloodType: bt,
		Units:     req.Units,
		Status:    models.StatusPending,
		Date:      time.Now().UTC(),
	}
	if err := s.store.AppendRequest(ctx, hospital.ID, &entry); err != nil {
		return nil, err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      id,
		EntityType: entityRequest,
		EntityID:   entry.ID,
		Action:     models.AuditCreate,
		After:      entry,
	})

	return s.MyRequests(ctx, id)
}

// UpdateRequest edits a request in place. Hospitals may only edit their own
// pending requests and never the status; admins may also decide it.
func (s *HospitalService) UpdateRequest(ctx context.Context, id identity.Identity, requestID uuid.UUID, req *dto.UpdateBloodRequest) (*models.BloodRequest, error) {
	var patch models.RequestPatch
	if req.BloodType != nil {
		bt := models.BloodType(*req.BloodType)
		if err := validateBloodType(bt); err != nil {
			return nil, err
		}
		patch.BloodType = &bt
	}
	if req.Units != nil {
		if err := validateUnits(*req.Units); err != nil {
			return nil, err
		}
		patch.Units = req.Units
	}
	if req.Status != nil {
		if !id.IsAdmin() {
			return nil, ErrForbidden
		}
		status := models.RequestStatus(*req.Status)
		if !status.Valid() {
			return nil, invalid("status", "must be Pending, Approved or Rejected")
		}
		patch.Status = &status
	}

	hospital, current, err := s.locate(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	var expect *models.RequestStatus
	action := models.AuditUpdate
	switch {
	case patch.Status != nil:
		if err := checkTransition(current.Status, *patch.Status); err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		patch.DecidedBy = &id.UserID
		patch.DecidedAt = &now
		expect = &current.Status
		action = models.AuditStatus
	case !id.IsAdmin():
		if current.Status != models.StatusPending {
			return nil, ErrRequestFinalized
		}
		pending := models.StatusPending
		expect = &pending
	}

	updated, err := s.store.UpdateRequest(ctx, hospital.ID, current.ID, patch, expect)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrRequestNotFound
		case errors.Is(err, store.ErrStale) && patch.Status != nil:
			return nil, ErrInvalidTransition
		case errors.Is(err, store.ErrStale):
			return nil, ErrRequestFinalized
		}
		return nil, err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      id,
		EntityType: entityRequest,
		EntityID:   current.ID,
		Action:     action,
		Before:     current,
		After:      updated,
	})
	return updated, nil
}

// SetStatus decides a pending request. Admin only.
func (s *HospitalService) SetStatus(ctx context.Context, id identity.Identity, requestID uuid.UUID, status string) (*models.BloodRequest, error) {
	if !id.IsAdmin() {
		return nil, ErrForbidden
	}
	if status == "" {
		return nil, invalid("status", "is required")
	}
	return s.UpdateRequest(ctx, id, requestID, &dto.UpdateBloodRequest{Status: &status})
}

func (s *HospitalService) DeleteRequest(ctx context.Context, id identity.Identity, requestID uuid.UUID) error {
	hospital, current, err := s.locate(ctx, id, requestID)
	if err != nil {
		return err
	}

	var expect *models.RequestStatus
	if !id.IsAdmin() {
		if current.Status != models.StatusPending {
			return ErrRequestFinalized
		}
		pending := models.StatusPending
		expect = &pending
	}

	if err := s.store.DeleteRequest(ctx, hospital.ID, current.ID, expect); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrRequestNotFound
		case errors.Is(err, store.ErrStale):
			return ErrRequestFinalized
		}
		return err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      id,
		EntityType: entityRequest,
		EntityID:   current.ID,
		Action:     models.AuditDelete,
		Before:     current,
	})
	return nil
}

func (s *HospitalService) locate(ctx context.Context, id identity.Identity, requestID uuid.UUID) (*models.Hospital, *models.BloodRequest, error) {
	if id.Role != models.RoleHospital && !id.IsAdmin() {
		return nil, nil, ErrForbidden
	}

	hospital, entry, err := s.store.FindRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, err
	}
	if !id.IsAdmin() && hospital.UserID != id.UserID {
		return nil, nil, ErrRequestNotFound
	}
	return hospital, entry, nil
}

// checkTransition allows only Pending -> Approved and Pending -> Rejected.
func checkTransition(from, to models.RequestStatus) error {
	if from != models.StatusPending || to == models.StatusPending {
		return ErrInvalidTransition
	}
	return nil
}
