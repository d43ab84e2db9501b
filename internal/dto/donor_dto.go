package dto

import "github.com/google/uuid"

type DonateRequest struct {
	Name      string `json:"name"`
	CNIC      string `json:"cnic"`
	BloodType string `json:"bloodType"`
	Units     int    `json:"units"`
}

// UpdateDonationRequest names the entry in the body; omitted fields are left
// unchanged.
type UpdateDonationRequest struct {
	DonationID uuid.UUID `json:"donationId"`
	Name       *string   `json:"name,omitempty"`
	CNIC       *string   `json:"cnic,omitempty"`
	BloodType  *string   `json:"bloodType,omitempty"`
	Units      *int      `json:"units,omitempty"`
}
