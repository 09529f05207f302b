package ports

import (
	"context"
	"time"
)

// AuditEvent records an authentication outcome. It never carries secrets.
type AuditEvent struct {
	Type      string
	UserID    string
	Email     string
	Outcome   string
	Timestamp time.Time
}

// Subject is the key the audit dispatcher shards on.
func (e AuditEvent) Subject() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.Email
}

// AuditSink accepts events without blocking the caller.
type AuditSink interface {
	Enqueue(event AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event AuditEvent) error
}
