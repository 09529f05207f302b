package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arenaops/tournament-api/internal/core/ports"
)

const identityCollection = "auth_identities"

// IdentityRepository stores authentication records. Emails are kept
// lower-cased and guarded by a unique index.
type IdentityRepository struct {
	coll *mongo.Collection
}

var _ ports.IdentityRepository = (*IdentityRepository)(nil)

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID            string `bson:"_id"`
	Email         string `bson:"email"`
	PasswordHash  string `bson:"password_hash"`
	EmailVerified bool   `bson:"email_verified"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func newMongoIdentity(rec *ports.IdentityRecord) mongoIdentity {
	return mongoIdentity{
		ID:            rec.ID,
		Email:         normalizeEmail(rec.Email),
		PasswordHash:  rec.PasswordHash,
		EmailVerified: rec.EmailVerified,
		CreatedAt:     rec.CreatedAt.Unix(),
		UpdatedAt:     rec.UpdatedAt.Unix(),
	}
}

func (d mongoIdentity) toRecord() *ports.IdentityRecord {
	return &ports.IdentityRecord{
		ID:            d.ID,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		EmailVerified: d.EmailVerified,
		CreatedAt:     unixToTime(d.CreatedAt),
		UpdatedAt:     unixToTime(d.UpdatedAt),
	}
}

func (r *IdentityRepository) Create(ctx context.Context, rec *ports.IdentityRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, newMongoIdentity(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*ports.IdentityRecord, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*ports.IdentityRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// UpdateEmail sets the login email and its verification flag together so a
// rollback can restore both with one call.
func (r *IdentityRepository) UpdateEmail(ctx context.Context, id, email string, verified bool) error {
	return r.update(ctx, id, bson.M{
		"email":          normalizeEmail(email),
		"email_verified": verified,
	})
}

func (r *IdentityRepository) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	return r.update(ctx, id, bson.M{"email_verified": verified})
}

func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*ports.IdentityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoIdentity
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}

	return doc.toRecord(), nil
}

func (r *IdentityRepository) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC().Unix()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
