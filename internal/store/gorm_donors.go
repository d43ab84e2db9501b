package store

import (
	"context"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderByDate(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC")
}

func (s *GormStore) EnsureDonor(ctx context.Context, userID uuid.UUID) (*models.Donor, error) {
	db := s.db.WithContext(ctx)

	donor := models.Donor{UserID: userID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&donor).Error
	if err != nil {
		return nil, translate(err, "create donor")
	}

	var stored models.Donor
	if err := db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, translate(err, "fetch donor")
	}
	return &stored, nil
}

func (s *GormStore) DonorByUserID(ctx context.Context, userID uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	err := s.db.WithContext(ctx).
		Preload("Donations", orderByDate).
		Where("user_id = ?", userID).
		First(&donor).Error
	if err != nil {
		return nil, translate(err, "fetch donor")
	}
	return &donor, nil
}

func (s *GormStore) ListDonors(ctx context.Context) ([]models.Donor, error) {
	var donors []models.Donor
	err := s.db.WithContext(ctx).
		Preload("Donations", orderByDate).
		Order("created_at ASC").
		Find(&donors).Error
	if err != nil {
		return nil, translate(err, "list donors")
	}
	return donors, nil
}

func (s *GormStore) AppendDonation(ctx context.Context, donorID uuid.UUID, donation *models.Donation) error {
	donation.DonorID = donorID
	return translate(s.db.WithContext(ctx).Create(donation).Error, "append donation")
}

func (s *GormStore) FindDonation(ctx context.Context, donationID uuid.UUID) (*models.Donor, *models.Donation, error) {
	db := s.db.WithContext(ctx)

	var donation models.Donation
	if err := db.First(&donation, "id = ?", donationID).Error; err != nil {
		return nil, nil, translate(err, "fetch donation")
	}

	var donor models.Donor
	if err := db.First(&donor, "id = ?", donation.DonorID).Error; err != nil {
		return nil, nil, translate(err, "fetch donor")
	}
	return &donor, &donation, nil
}

func (s *GormStore) UpdateDonation(ctx context.Context, donorID, donationID uuid.UUID, patch models.DonationPatch) (*models.Donation, error) {
	db := s.db.WithContext(ctx)

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.CNIC != nil {
		updates["cnic"] = *patch.CNIC
	}
	if patch.BloodType != nil {
		updates["blood_type"] = string(*patch.BloodType)
	}
	if patch.Units != nil {
		updates["units"] = *patch.Units
	}

	if len(updates) > 0 {
		result := db.Model(&models.Donation{}).
			Where("id = ? AND donor_id = ?", donationID, donorID).
			Updates(updates)
		if result.Error != nil {
			return nil, translate(result.Error, "update donation")
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	var donation models.Donation
	if err := db.Where("id = ? AND donor_id = ?", donationID, donorID).First(&donation).Error; err != nil {
		return nil, translate(err, "fetch donation")
	}
	return &donation, nil
}

func (s *GormStore) DeleteDonation(ctx context.Context, donorID, donationID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND donor_id = ?", donationID, donorID).
		Delete(&models.Donation{})
	if result.Error != nil {
		return translate(result.Error, "delete donation")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
