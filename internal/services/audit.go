package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	entityDonation = "donation"
	entityRequest  = "request"
	entityUser     = "user"
)

type auditEntry struct {
	Actor      identity.Identity
	EntityType string
	EntityID   uuid.UUID
	Action     models.AuditAction
	Before     any
	After      any
}

// writeAudit records a mutation that has already been persisted. A failed
// write is logged and does not undo the mutation.
func writeAudit(ctx context.Context, audits store.AuditStore, e auditEntry) {
	entry := models.AuditLog{
		ActorID:    e.Actor.UserID,
		ActorRole:  e.Actor.Role,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Before:     snapshot(e.Before),
		After:      snapshot(e.After),
	}
	if err := audits.WriteAudit(ctx, &entry); err != nil {
		slog.Error("failed to write audit log",
			"error", err,
			"user_id", e.Actor.UserID.String(),
			"action", string(e.Action),
			"entity_type", e.EntityType,
			"entity_id", e.EntityID.String(),
		)
	}
}

func snapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
