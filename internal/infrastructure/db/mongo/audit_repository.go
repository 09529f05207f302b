package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arenaops/tournament-api/internal/core/ports"
)

const auditCollection = "auth_events"

// AuditRepository appends authentication events to the audit trail.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// Insert persists a single audit event.
func (r *AuditRepository) Insert(ctx context.Context, event ports.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":        event.Type,
		"outcome":     event.Outcome,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.Email != "" {
		doc["email"] = event.Email
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
