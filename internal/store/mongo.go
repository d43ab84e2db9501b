package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers         = "users"
	collDonors        = "donors"
	collHospitals     = "hospitals"
	collRefreshTokens = "refresh_tokens"
	collAuditLogs     = "audit_logs"
	collSystemLogs    = "system_logs"
)

// MongoStore is the document backend. Donor and hospital documents embed
// their entries.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collDonors: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "donations.id", Value: 1}}},
		},
		collHospitals: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "requests.id", Value: 1}}},
		},
		collRefreshTokens: {
			{Keys: bson.D{{Key: "token_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		collAuditLogs: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		collSystemLogs: {
			{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func mongoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return fmt.Errorf("failed to %s: %w", what, err)
	}
}

// Users

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	_, err := s.db.Collection(collUsers).InsertOne(ctx, toUserDoc(user))
	return mongoErr(err, "create user")
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.db.Collection(collUsers).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mongoErr(err, "fetch user")
	}
	user := doc.model()
	return &user, nil
}

func (s *MongoStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.db.Collection(collUsers).Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr(err, "list users")
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoErr(err, "decode users")
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.model())
	}
	return users, nil
}

func (s *MongoStore) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return s.findUsers(ctx, bson.M{"_id": bson.M{"$in": keys}})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.findUsers(ctx, bson.M{})
}

func (s *MongoStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.Collection(collUsers).DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return mongoErr(err, "delete user")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ensureOwner upserts an empty container document keyed by user_id. A
// concurrent upsert may lose the unique-index race; the retry then finds the
// winner's document.
func (s *MongoStore) ensureOwner(ctx context.Context, coll, arrayField string, userID uuid.UUID, out interface{}) error {
	filter := bson.M{"user_id": userID.String()}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        uuid.NewString(),
		arrayField:   bson.A{},
		"created_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.db.Collection(coll).FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return mongoErr(err, "ensure "+coll)
}

// Donors

func (s *MongoStore) EnsureDonor(ctx context.Context, userID uuid.UUID) (*models.Donor, error) {
	var doc donorDoc
	if err := s.ensureOwner(ctx, collDonors, "donations", userID, &doc); err != nil {
		return nil, err
	}
	donor := doc.model()
	donor.Donations = nil
	return &donor, nil
}

func (s *MongoStore) DonorByUserID(ctx context.Context, userID uuid.UUID) (*models.Donor, error) {
	var doc donorDoc
	err := s.db.Collection(collDonors).FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		return nil, mongoErr(err, "fetch donor")
	}
	donor := doc.model()
	return &donor, nil
}

func (s *MongoStore) ListDonors(ctx context.Context) ([]models.Donor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.db.Collection(collDonors).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mongoErr(err, "list donors")
	}
	var docs []donorDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoErr(err, "decode donors")
	}
	donors := make([]models.Donor, 0, len(docs))
	for _, doc := range docs {
		donors = append(donors, doc.model())
	}
	return donors, nil
}

func (s *MongoStore) AppendDonation(ctx context.Context, donorID uuid.UUID, donation *models.Donation) error {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	donation.DonorID = donorID
	res, err := s.db.Collection(collDonors).UpdateOne(ctx,
		bson.M{"_id": donorID.String()},
		bson.M{"$push": bson.M{"donations": toDonationDoc(donation)}},
	)
	if err != nil {
		return mongoErr(err, "append donation")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindDonation(ctx context.Context, donationID uuid.UUID) (*models.Donor, *models.Donation, error) {
	var doc donorDoc
	err := s.db.Collection(collDonors).FindOne(ctx, bson.M{"donations.id": donationID.String()}).Decode(&doc)
	if err != nil {
		return nil, nil, mongoErr(err, "fetch donation")
	}
	donor := doc.model()
	for _, d := range donor.Donations {
		if d.ID == donationID {
			entry := d
			donor.Donations = nil
			return &donor, &entry, nil
		}
	}
	return nil, nil, ErrNotFound
}

func (s *MongoStore) UpdateDonation(ctx context.Context, donorID, donationID uuid.UUID, patch models.DonationPatch) (*models.Donation, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["donations.$.name"] = *patch.Name
	}
	if patch.CNIC != nil {
		set["donations.$.cnic"] = *patch.CNIC
	}
	if patch.BloodType != nil {
		set["donations.$.blood_type"] = string(*patch.BloodType)
	}
	if patch.Units != nil {
		set["donations.$.units"] = *patch.Units
	}

	filter := bson.M{"_id": donorID.String(), "donations.id": donationID.String()}
	if len(set) > 0 {
		res, err := s.db.Collection(collDonors).UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return nil, mongoErr(err, "update donation")
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
	}

	owner, entry, err := s.FindDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if owner.ID != donorID {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *MongoStore) DeleteDonation(ctx context.Context, donorID, donationID uuid.UUID) error {
	res, err := s.db.Collection(collDonors).UpdateOne(ctx,
		bson.M{"_id": donorID.String(), "donations.id": donationID.String()},
		bson.M{"$pull": bson.M{"donations": bson.M{"id": donationID.String()}}},
	)
	if err != nil {
		return mongoErr(err, "delete donation")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Hospitals

func (s *MongoStore) EnsureHospital(ctx context.Context, userID uuid.UUID) (*models.Hospital, error) {
	var doc hospitalDoc
	if err := s.ensureOwner(ctx, collHospitals, "requests", userID, &doc); err != nil {
		return nil, err
	}
	hospital := doc.model()
	hospital.Requests = nil
	return &hospital, nil
}

func (s *MongoStore) HospitalByUserID(ctx context.Context, userID uuid.UUID) (*models.Hospital, error) {
	var doc hospitalDoc
	err := s.db.Collection(collHospitals).FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		return nil, mongoErr(err, "fetch hospital")
	}
	hospital := doc.model()
	return &hospital, nil
}

func (s *MongoStore) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.db.Collection(collHospitals).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mongoErr(err, "list hospitals")
	}
	var docs []hospitalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoErr(err, "decode hospitals")
	}
	hospitals := make([]models.Hospital, 0, len(docs))
	for _, doc := range docs {
		hospitals = append(hospitals, doc.model())
	}
	return hospitals, nil
}

func (s *MongoStore) AppendRequest(ctx context.Context, hospitalID uuid.UUID, req *models.BloodRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.HospitalID = hospitalID
	res, err := s.db.Collection(collHospitals).UpdateOne(ctx,
		bson.M{"_id": hospitalID.String()},
		bson.M{"$push": bson.M{"requests": toRequestDoc(req)}},
	)
	if err != nil {
		return mongoErr(err, "append request")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.Hospital, *models.BloodRequest, error) {
	var doc hospitalDoc
	err := s.db.Collection(collHospitals).FindOne(ctx, bson.M{"requests.id": requestID.String()}).Decode(&doc)
	if err != nil {
		return nil, nil, mongoErr(err, "fetch request")
	}
	hospital := doc.model()
	for _, r := range hospital.Requests {
		if r.ID == requestID {
			entry := r
			hospital.Requests = nil
			return &hospital, &entry, nil
		}
	}
	return nil, nil, ErrNotFound
}

// requestFilter matches the hospital document holding requestID, optionally
// only while that entry is in the expected status.
func requestFilter(hospitalID, requestID uuid.UUID, expect *models.RequestStatus) bson.M {
	match := bson.M{"id": requestID.String()}
	if expect != nil {
		match["status"] = string(*expect)
	}
	return bson.M{
		"_id":      hospitalID.String(),
		"requests": bson.M{"$elemMatch": match},
	}
}

func (s *MongoStore) UpdateRequest(ctx context.Context, hospitalID, requestID uuid.UUID, patch models.RequestPatch, expect *models.RequestStatus) (*models.BloodRequest, error) {
	set := bson.M{}
	if patch.BloodType != nil {
		set["requests.$.blood_type"] = string(*patch.BloodType)
	}
	if patch.Units != nil {
		set["requests.$.units"] = *patch.Units
	}
	if patch.Status != nil {
		set["requests.$.status"] = string(*patch.Status)
	}
	if patch.DecidedBy != nil {
		set["requests.$.decided_by"] = patch.DecidedBy.String()
	}
	if patch.DecidedAt != nil {
		set["requests.$.decided_at"] = *patch.DecidedAt
	}

	if len(set) > 0 {
		res, err := s.db.Collection(collHospitals).UpdateOne(ctx,
			requestFilter(hospitalID, requestID, expect),
			bson.M{"$set": set},
		)
		if err != nil {
			return nil, mongoErr(err, "update request")
		}
		if res.MatchedCount == 0 {
			return nil, s.missingOrStale(ctx, hospitalID, requestID)
		}
	}

	owner, entry, err := s.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if owner.ID != hospitalID {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *MongoStore) DeleteRequest(ctx context.Context, hospitalID, requestID uuid.UUID, expect *models.RequestStatus) error {
	res, err := s.db.Collection(collHospitals).UpdateOne(ctx,
		requestFilter(hospitalID, requestID, expect),
		bson.M{"$pull": bson.M{"requests": bson.M{"id": requestID.String()}}},
	)
	if err != nil {
		return mongoErr(err, "delete request")
	}
	if res.MatchedCount == 0 {
		return s.missingOrStale(ctx, hospitalID, requestID)
	}
	return nil
}

func (s *MongoStore) missingOrStale(ctx context.Context, hospitalID, requestID uuid.UUID) error {
	n, err := s.db.Collection(collHospitals).CountDocuments(ctx, requestFilter(hospitalID, requestID, nil))
	if err != nil {
		return mongoErr(err, "count requests")
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStale
}

// Refresh tokens

func (s *MongoStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(collRefreshTokens).InsertOne(ctx, refreshTokenDoc{
		ID:        token.ID.String(),
		UserID:    token.UserID.String(),
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
		CreatedAt: token.CreatedAt,
	})
	return mongoErr(err, "store refresh token")
}

func (s *MongoStore) RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var doc refreshTokenDoc
	err := s.db.Collection(collRefreshTokens).
		FindOne(ctx, bson.M{"token_hash": hash, "revoked": false}).
		Decode(&doc)
	if err != nil {
		return nil, mongoErr(err, "fetch refresh token")
	}
	token := doc.model()
	return &token, nil
}

func (s *MongoStore) RevokeRefreshToken(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.Collection(collRefreshTokens).UpdateOne(ctx,
		bson.M{"_id": id.String(), "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return false, mongoErr(err, "revoke refresh token")
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	_, err := s.db.Collection(collRefreshTokens).UpdateOne(ctx,
		bson.M{"token_hash": hash},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return mongoErr(err, "revoke refresh token")
}

func (s *MongoStore) RevokeUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Collection(collRefreshTokens).UpdateMany(ctx,
		bson.M{"user_id": userID.String(), "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return mongoErr(err, "revoke user tokens")
}

// Audit and system logs

func (s *MongoStore) WriteAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(collAuditLogs).InsertOne(ctx, toAuditDoc(entry))
	return mongoErr(err, "write audit log")
}

func (s *MongoStore) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	coll := s.db.Collection(collAuditLogs)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, mongoErr(err, "count audit logs")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, mongoErr(err, "list audit logs")
	}
	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mongoErr(err, "decode audit logs")
	}
	logs := make([]models.AuditLog, 0, len(docs))
	for _, doc := range docs {
		logs = append(logs, doc.model())
	}
	return logs, total, nil
}

func (s *MongoStore) WriteSystemLogs(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(logs))
	for i := range logs {
		if logs[i].ID == uuid.Nil {
			logs[i].ID = uuid.New()
		}
		if logs[i].CreatedAt.IsZero() {
			logs[i].CreatedAt = time.Now().UTC()
		}
		docs = append(docs, toSystemLogDoc(&logs[i]))
	}
	_, err := s.db.Collection(collSystemLogs).InsertMany(ctx, docs)
	return mongoErr(err, "write system logs")
}

func (s *MongoStore) PurgeSystemLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.Collection(collSystemLogs).DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": before}})
	if err != nil {
		return 0, mongoErr(err, "purge system logs")
	}
	return res.DeletedCount, nil
}
