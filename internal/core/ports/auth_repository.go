package ports

import (
	"context"
	"errors"
	"time"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

// Storage-level errors. Repositories translate driver errors into these so
// the identity adapter can map them onto the auth taxonomy.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// IdentityRecord is the authentication record of an account.
type IdentityRecord struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfileRecord is the public profile of an account.
type ProfileRecord struct {
	ID        string
	Email     string
	Name      string
	Role      domain.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfilePatch lists the profile fields to overwrite; nil means unchanged.
type ProfilePatch struct {
	Email *string
	Name  *string
	Role  *domain.Role
}

// IdentityRepository persists authentication records.
type IdentityRepository interface {
	Create(ctx context.Context, rec *IdentityRecord) error
	FindByEmail(ctx context.Context, email string) (*IdentityRecord, error)
	FindByID(ctx context.Context, id string) (*IdentityRecord, error)
	UpdateEmail(ctx context.Context, id, email string, verified bool) error
	SetEmailVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
}

// ProfileRepository persists account profiles.
type ProfileRepository interface {
	Create(ctx context.Context, rec *ProfileRecord) error
	FindByID(ctx context.Context, id string) (*ProfileRecord, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (*ProfileRecord, error)
	Delete(ctx context.Context, id string) error
}

// RefreshTokenStore keeps hashed refresh tokens. Consume must remove and
// return the owner in one atomic step.
type RefreshTokenStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Consume(ctx context.Context, tokenHash string) (userID string, err error)
	Delete(ctx context.Context, tokenHash string) error
}

// TokenRevocationStore is a deny list of access token ids.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
