package store

import (
	"sort"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document shapes stored in MongoDB. Ids are kept as canonical uuid strings.

type userDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type donationDoc struct {
	ID        string    `bson:"id"`
	Name      string    `bson:"name"`
	CNIC      string    `bson:"cnic"`
	BloodType string    `bson:"blood_type"`
	Units     int       `bson:"units"`
	Date      time.Time `bson:"date"`
}

type donorDoc struct {
	ID        string        `bson:"_id"`
	UserID    string        `bson:"user_id"`
	Donations []donationDoc `bson:"donations"`
	CreatedAt time.Time     `bson:"created_at"`
}

type requestDoc struct {
	ID        string     `bson:"id"`
	BloodType string     `bson:"blood_type"`
	Units     int        `bson:"units"`
	Status    string     `bson:"status"`
	Date      time.Time  `bson:"date"`
	DecidedBy string     `bson:"decided_by,omitempty"`
	DecidedAt *time.Time `bson:"decided_at,omitempty"`
}

type hospitalDoc struct {
	ID        string       `bson:"_id"`
	UserID    string       `bson:"user_id"`
	Requests  []requestDoc `bson:"requests"`
	CreatedAt time.Time    `bson:"created_at"`
}

type refreshTokenDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	TokenHash string    `bson:"token_hash"`
	ExpiresAt time.Time `bson:"expires_at"`
	Revoked   bool      `bson:"revoked"`
	CreatedAt time.Time `bson:"created_at"`
}

type auditDoc struct {
	ID         string    `bson:"_id"`
	ActorID    string    `bson:"actor_id"`
	ActorRole  string    `bson:"actor_role"`
	EntityType string    `bson:"entity_type"`
	EntityID   string    `bson:"entity_id"`
	Action     string    `bson:"action"`
	Before     string    `bson:"before,omitempty"`
	After      string    `bson:"after,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

type systemLogDoc struct {
	ID        string    `bson:"_id"`
	Timestamp time.Time `bson:"timestamp"`
	Level     string    `bson:"level"`
	Message   string    `bson:"message"`
	TraceID   string    `bson:"trace_id,omitempty"`
	UserID    *string   `bson:"user_id,omitempty"`
	Action    string    `bson:"action,omitempty"`
	Error     string    `bson:"error,omitempty"`
	LatencyMs int       `bson:"latency_ms"`
	Extra     string    `bson:"extra,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:        u.ID.String(),
		Email:     u.Email,
		Password:  u.Password,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDoc) model() models.User {
	return models.User{
		ID:        parseID(d.ID),
		Email:     d.Email,
		Password:  d.Password,
		Role:      models.Role(d.Role),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toDonationDoc(d *models.Donation) donationDoc {
	return donationDoc{
		ID:        d.ID.String(),
		Name:      d.Name,
		CNIC:      d.CNIC,
		BloodType: string(d.BloodType),
		Units:     d.Units,
		Date:      d.Date,
	}
}

func (d donationDoc) model(donorID uuid.UUID) models.Donation {
	return models.Donation{
		ID:        parseID(d.ID),
		DonorID:   donorID,
		Name:      d.Name,
		CNIC:      d.CNIC,
		BloodType: models.BloodType(d.BloodType),
		Units:     d.Units,
		Date:      d.Date,
	}
}

func (d donorDoc) model() models.Donor {
	donor := models.Donor{
		ID:        parseID(d.ID),
		UserID:    parseID(d.UserID),
		Donations: make([]models.Donation, 0, len(d.Donations)),
		CreatedAt: d.CreatedAt,
	}
	for _, entry := range d.Donations {
		donor.Donations = append(donor.Donations, entry.model(donor.ID))
	}
	sort.SliceStable(donor.Donations, func(i, j int) bool {
		return donor.Donations[i].Date.Before(donor.Donations[j].Date)
	})
	return donor
}

func toRequestDoc(r *models.BloodRequest) requestDoc {
	doc := requestDoc{
		ID:        r.ID.String(),
		BloodType: string(r.BloodType),
		Units:     r.Units,
		Status:    string(r.Status),
		Date:      r.Date,
		DecidedAt: r.DecidedAt,
	}
	if r.DecidedBy != nil {
		doc.DecidedBy = r.DecidedBy.String()
	}
	return doc
}

func (d requestDoc) model(hospitalID uuid.UUID) models.BloodRequest {
	req := models.BloodRequest{
		ID:         parseID(d.ID),
		HospitalID: hospitalID,
		BloodType:  models.BloodType(d.BloodType),
		Units:      d.Units,
		Status:     models.RequestStatus(d.Status),
		Date:       d.Date,
		DecidedAt:  d.DecidedAt,
	}
	if d.DecidedBy != "" {
		id := parseID(d.DecidedBy)
		req.DecidedBy = &id
	}
	return req
}

func (d hospitalDoc) model() models.Hospital {
	hospital := models.Hospital{
		ID:        parseID(d.ID),
		UserID:    parseID(d.UserID),
		Requests:  make([]models.BloodRequest, 0, len(d.Requests)),
		CreatedAt: d.CreatedAt,
	}
	for _, entry := range d.Requests {
		hospital.Requests = append(hospital.Requests, entry.model(hospital.ID))
	}
	sort.SliceStable(hospital.Requests, func(i, j int) bool {
		return hospital.Requests[i].Date.Before(hospital.Requests[j].Date)
	})
	return hospital
}

func (d refreshTokenDoc) model() models.RefreshToken {
	return models.RefreshToken{
		ID:        parseID(d.ID),
		UserID:    parseID(d.UserID),
		TokenHash: d.TokenHash,
		ExpiresAt: d.ExpiresAt,
		Revoked:   d.Revoked,
		CreatedAt: d.CreatedAt,
	}
}

func toAuditDoc(a *models.AuditLog) auditDoc {
	return auditDoc{
		ID:         a.ID.String(),
		ActorID:    a.ActorID.String(),
		ActorRole:  string(a.ActorRole),
		EntityType: a.EntityType,
		EntityID:   a.EntityID.String(),
		Action:     string(a.Action),
		Before:     string(a.Before),
		After:      string(a.After),
		CreatedAt:  a.CreatedAt,
	}
}

func (d auditDoc) model() models.AuditLog {
	entry := models.AuditLog{
		ID:         parseID(d.ID),
		ActorID:    parseID(d.ActorID),
		ActorRole:  models.Role(d.ActorRole),
		EntityType: d.EntityType,
		EntityID:   parseID(d.EntityID),
		Action:     models.AuditAction(d.Action),
		CreatedAt:  d.CreatedAt,
	}
	if d.Before != "" {
		entry.Before = datatypes.JSON(d.Before)
	}
	if d.After != "" {
		entry.After = datatypes.JSON(d.After)
	}
	return entry
}

func toSystemLogDoc(l *models.SystemLog) systemLogDoc {
	return systemLogDoc{
		ID:        l.ID.String(),
		Timestamp: l.Timestamp,
		Level:     l.Level,
		Message:   l.Message,
		TraceID:   l.TraceID,
		UserID:    l.UserID,
		Action:    l.Action,
		Error:     l.Error,
		LatencyMs: l.LatencyMs,
		Extra:     string(l.Extra),
		CreatedAt: l.CreatedAt,
	}
}
