package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donor is the per-user container of donation entries.
type Donor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Email     string     `gorm:"-" json:"email,omitempty"`
	Donations []Donation `gorm:"foreignKey:DonorID;constraint:OnDelete:CASCADE" json:"donations"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (d *Donor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Donation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name      string    `gorm:"size:100" json:"name"`
	CNIC      string    `gorm:"column:cnic;size:20" json:"cnic"`
	BloodType BloodType `gorm:"size:3;not null" json:"bloodType"`
	Units     int       `gorm:"not null" json:"units"`
	Date      time.Time `gorm:"not null;index" json:"date"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DonationPatch carries the fields of an in-place edit; nil means unchanged.
type DonationPatch struct {
	Name      *string
	CNIC      *string
	BloodType *BloodType
	Units     *int
}

func (p DonationPatch) Apply(d *Donation) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.CNIC != nil {
		d.CNIC = *p.CNIC
	}
	if p.BloodType != nil {
		d.BloodType = *p.BloodType
	}
	if p.Units != nil {
		d.Units = *p.Units
	}
}

func (p DonationPatch) Empty() bool {
	return p.Name == nil && p.CNIC == nil && p.BloodType == nil && p.Units == nil
}
