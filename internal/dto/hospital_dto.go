package dto

type BloodRequestInput struct {
	BloodType string `json:"bloodType"`
	Units     int    `json:"units"`
}

type UpdateBloodRequest struct {
	BloodType *string `json:"bloodType,omitempty"`
	Units     *int    `json:"units,omitempty"`
	Status    *string `json:"status,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}
