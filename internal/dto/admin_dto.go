package dto

import "github.com/bloodbank/bloodbank-api/internal/models"

// InventoryItem is the computed stock for one blood type.
type InventoryItem struct {
	BloodType string `json:"bloodType"`
	Donated   int    `json:"donated"`
	Approved  int    `json:"approved"`
	Pending   int    `json:"pending"`
	Available int    `json:"available"`
}

type AuditLogPage struct {
	Logs   []models.AuditLog `json:"logs"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
