package ports

import (
	"context"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

// AuthService is the facade consumed by controllers and middleware. Every
// outcome, expected or not, comes back as a Result.
type AuthService interface {
	Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.TokenResponse]
	Register(ctx context.Context, data domain.RegistrationData, opts ...RegisterOption) domain.Result[domain.TokenResponse]
	ValidateToken(ctx context.Context, token string) domain.Result[domain.TokenValidationResponse]
	RefreshToken(ctx context.Context, refreshToken string) domain.Result[domain.TokenResponse]
	GetUserByID(ctx context.Context, userID string) domain.Result[domain.AuthenticatedUser]
	UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) domain.Result[domain.AuthenticatedUser]
	Logout(ctx context.Context, accessToken, refreshToken string) domain.Result[struct{}]
}

// RegisterOptions carries decisions only trusted in-process callers make.
type RegisterOptions struct {
	GrantRole domain.Role
}

type RegisterOption func(*RegisterOptions)

// WithRoleGrant lets the caller assign a role other than the default.
// HTTP handlers must never pass it.
func WithRoleGrant(role domain.Role) RegisterOption {
	return func(o *RegisterOptions) {
		o.GrantRole = role
	}
}
