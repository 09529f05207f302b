package ports

import (
	"context"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

// NewAccount is what the facade asks the identity backend to create. Role
// is already the effective role.
type NewAccount struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
}

// IdentityBackend is implemented by the adapter in front of the identity
// store. Returned errors are *domain.AuthError values; anything else is
// treated as an infrastructure failure by the facade.
type IdentityBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.TokenResponse, error)
	Register(ctx context.Context, account NewAccount) (domain.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (domain.TokenValidationResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (domain.TokenResponse, error)
	GetUserByID(ctx context.Context, userID string) (domain.AuthenticatedUser, error)
	UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) (domain.AuthenticatedUser, error)
	RevokeTokens(ctx context.Context, accessToken, refreshToken string) error
}
