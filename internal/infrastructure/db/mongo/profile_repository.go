package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
)

const profileCollection = "profiles"

type ProfileRepository struct {
	coll *mongo.Collection
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profileCollection)}
}

type mongoProfile struct {
	ID        string `bson:"_id"`
	Email     string `bson:"email"`
	Name      string `bson:"name"`
	Role      string `bson:"role"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (p mongoProfile) toRecord() *ports.ProfileRecord {
	return &ports.ProfileRecord{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      domain.Role(p.Role),
		CreatedAt: unixToTime(p.CreatedAt),
		UpdatedAt: unixToTime(p.UpdatedAt),
	}
}

func newMongoProfile(rec *ports.ProfileRecord) mongoProfile {
	return mongoProfile{
		ID:        rec.ID,
		Email:     normalizeEmail(rec.Email),
		Name:      rec.Name,
		Role:      rec.Role.String(),
		CreatedAt: rec.CreatedAt.Unix(),
		UpdatedAt: rec.UpdatedAt.Unix(),
	}
}

func (r *ProfileRepository) Create(ctx context.Context, rec *ports.ProfileRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, newMongoProfile(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*ports.ProfileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return doc.toRecord(), nil
}

// Update applies the non-nil fields of patch and returns the stored result.
func (r *ProfileRepository) Update(ctx context.Context, id string, patch ports.ProfilePatch) (*ports.ProfileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if patch.Email != nil {
		set["email"] = normalizeEmail(*patch.Email)
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Role != nil {
		set["role"] = patch.Role.String()
	}

	var doc mongoProfile
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toRecord(), nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
