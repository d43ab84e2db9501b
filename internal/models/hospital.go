package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Hospital is the per-user container of blood requests.
type Hospital struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Email     string         `gorm:"-" json:"email,omitempty"`
	Requests  []BloodRequest `gorm:"foreignKey:HospitalID;constraint:OnDelete:CASCADE" json:"requests"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (h *Hospital) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

type BloodRequest struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	HospitalID uuid.UUID     `gorm:"type:uuid;not null;index" json:"-"`
	BloodType  BloodType     `gorm:"size:3;not null" json:"bloodType"`
	Units      int           `gorm:"not null" json:"units"`
	Status     RequestStatus `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	Date       time.Time     `gorm:"not null;index" json:"date"`
	DecidedBy  *uuid.UUID    `gorm:"type:uuid" json:"decidedBy,omitempty"`
	DecidedAt  *time.Time    `json:"decidedAt,omitempty"`
}

func (BloodRequest) TableName() string {
	return "blood_requests"
}

func (r *BloodRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RequestPatch carries the fields of an in-place edit; nil means unchanged.
type RequestPatch struct {
	BloodType *BloodType
	Units     *int
	Status    *RequestStatus
	DecidedBy *uuid.UUID
	DecidedAt *time.Time
}

func (p RequestPatch) Apply(r *BloodRequest) {
	if p.BloodType != nil {
		r.BloodType = *p.BloodType
	}
	if p.Units != nil {
		r.Units = *p.Units
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.DecidedBy != nil {
		id := *p.DecidedBy
		r.DecidedBy = &id
	}
	if p.DecidedAt != nil {
		t := *p.DecidedAt
		r.DecidedAt = &t
	}
}

func (p RequestPatch) Empty() bool {
	return p.BloodType == nil && p.Units == nil && p.Status == nil
}
