package services

import (
	"context"
	"errors"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/google/uuid"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AdminStore interface {
	store.UserStore
	store.TokenStore
	store.AuditStore
	ListDonors(ctx context.Context) ([]models.Donor, error)
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
}

type AdminService struct {
	store AdminStore
}

func NewAdminService(s AdminStore) *AdminService {
	return &AdminService{store: s}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp, nil
}

// DeleteUser removes the account and revokes its refresh tokens. Donor and
// hospital records are kept.
func (s *AdminService) DeleteUser(ctx context.Context, actor identity.Identity, userID uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.UserID == userID {
		return ErrSelfDelete
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.store.RevokeUserTokens(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	writeAudit(ctx, s.store, auditEntry{
		Actor:      actor,
		EntityType: entityUser,
		EntityID:   userID,
		Action:     models.AuditDelete,
		Before:     toUserResponse(user),
	})
	return nil
}

// Inventory derives per-type stock from donations and requests.
func (s *AdminService) Inventory(ctx context.Context) ([]dto.InventoryItem, error) {
	donors, err := s.store.ListDonors(ctx)
	if err != nil {
		return nil, err
	}
	hospitals, err := s.store.ListHospitals(ctx)
	if err != nil {
		return nil, err
	}
	return computeInventory(donors, hospitals), nil
}

func computeInventory(donors []models.Donor, hospitals []models.Hospital) []dto.InventoryItem {
	byType := make(map[models.BloodType]*dto.InventoryItem, len(models.BloodTypes))
	items := make([]dto.InventoryItem, len(models.BloodTypes))
	for i, bt := range models.BloodTypes {
		items[i].BloodType = string(bt)
		byType[bt] = &items[i]
	}

	for _, d := range donors {
		for _, entry := range d.Donations {
			if item, ok := byType[entry.BloodType]; ok {
				item.Donated += entry.Units
			}
		}
	}
	for _, h := range hospitals {
		for _, entry := range h.Requests {
			item, ok := byType[entry.BloodType]
			if !ok {
				continue
			}
			switch entry.Status {
			case models.StatusApproved:
				item.Approved += entry.Units
			case models.StatusPending:
				item.Pending += entry.Units
			}
		}
	}

	for i := range items {
		items[i].Available = items[i].Donated - items[i].Approved
	}
	return items
}

func (s *AdminService) AuditLogs(ctx context.Context, limit, offset int) (*dto.AuditLogPage, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	if offset < 0 {
		offset = 0
	}

	logs, total, err := s.store.ListAudit(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return &dto.AuditLogPage{Logs: logs, Total: total, Limit: limit, Offset: offset}, nil
}
