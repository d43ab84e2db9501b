package store

import (
	"context"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *GormStore) EnsureHospital(ctx context.Context, userID uuid.UUID) (*models.Hospital, error) {
	db := s.db.WithContext(ctx)

	hospital := models.Hospital{UserID: userID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&hospital).Error
	if err != nil {
		return nil, translate(err, "create hospital")
	}

	var stored models.Hospital
	if err := db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, translate(err, "fetch hospital")
	}
	return &stored, nil
}

func (s *GormStore) HospitalByUserID(ctx context.Context, userID uuid.UUID) (*models.Hospital, error) {
	var hospital models.Hospital
	err := s.db.WithContext(ctx).
		Preload("Requests", orderByDate).
		Where("user_id = ?", userID).
		First(&hospital).Error
	if err != nil {
		return nil, translate(err, "fetch hospital")
	}
	return &hospital, nil
}

func (s *GormStore) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := s.db.WithContext(ctx).
		Preload("Requests", orderByDate).
		Order("created_at ASC").
		Find(&hospitals).Error
	if err != nil {
		return nil, translate(err, "list hospitals")
	}
	return hospitals, nil
}

func (s *GormStore) AppendRequest(ctx context.Context, hospitalID uuid.UUID, req *models.BloodRequest) error {
	req.HospitalID = hospitalID
	return translate(s.db.WithContext(ctx).Create(req).Error, "append request")
}

func (s *GormStore) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.Hospital, *models.BloodRequest, error) {
	db := s.db.WithContext(ctx)

	var req models.BloodRequest
	if err := db.First(&req, "id = ?", requestID).Error; err != nil {
		return nil, nil, translate(err, "fetch request")
	}

	var hospital models.Hospital
	if err := db.First(&hospital, "id = ?", req.HospitalID).Error; err != nil {
		return nil, nil, translate(err, "fetch hospital")
	}
	return &hospital, &req, nil
}

func (s *GormStore) UpdateRequest(ctx context.Context, hospitalID, requestID uuid.UUID, patch models.RequestPatch, expect *models.RequestStatus) (*models.BloodRequest, error) {
	db := s.db.WithContext(ctx)

	updates := map[string]interface{}{}
	if patch.BloodType != nil {
		updates["blood_type"] = string(*patch.BloodType)
	}
	if patch.Units != nil {
		updates["units"] = *patch.Units
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.DecidedBy != nil {
		updates["decided_by"] = *patch.DecidedBy
	}
	if patch.DecidedAt != nil {
		updates["decided_at"] = *patch.DecidedAt
	}

	if len(updates) > 0 {
		query := db.Model(&models.BloodRequest{}).
			Where("id = ? AND hospital_id = ?", requestID, hospitalID)
		if expect != nil {
			query = query.Where("status = ?", string(*expect))
		}
		result := query.Updates(updates)
		if result.Error != nil {
			return nil, translate(result.Error, "update request")
		}
		if result.RowsAffected == 0 {
			return nil, s.missingOrStale(ctx, hospitalID, requestID)
		}
	}

	var req models.BloodRequest
	if err := db.Where("id = ? AND hospital_id = ?", requestID, hospitalID).First(&req).Error; err != nil {
		return nil, translate(err, "fetch request")
	}
	return &req, nil
}

func (s *GormStore) DeleteRequest(ctx context.Context, hospitalID, requestID uuid.UUID, expect *models.RequestStatus) error {
	query := s.db.WithContext(ctx).Where("id = ? AND hospital_id = ?", requestID, hospitalID)
	if expect != nil {
		query = query.Where("status = ?", string(*expect))
	}
	result := query.Delete(&models.BloodRequest{})
	if result.Error != nil {
		return translate(result.Error, "delete request")
	}
	if result.RowsAffected == 0 {
		return s.missingOrStale(ctx, hospitalID, requestID)
	}
	return nil
}

func (s *GormStore) missingOrStale(ctx context.Context, hospitalID, requestID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND hospital_id = ?", requestID, hospitalID).
		Count(&count).Error
	if err != nil {
		return translate(err, "count requests")
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStale
}
