// Package identity adapts the account stores, token manager and password
// hashing into the ports.IdentityBackend contract. It is the only place
// where storage and token errors are translated into domain.AuthError.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
	"github.com/arenaops/tournament-api/internal/infrastructure/token"
)

const defaultRefreshTTL = 30 * 24 * time.Hour

// Options tunes the backend.
type Options struct {
	RefreshTTL           time.Duration
	BcryptCost           int
	RequireVerifiedEmail bool
}

// Backend implements ports.IdentityBackend.
type Backend struct {
	identities ports.IdentityRepository
	profiles   ports.ProfileRepository
	refresh    ports.RefreshTokenStore
	revoked    ports.TokenRevocationStore
	tokens     *token.Manager
	opts       Options
	dummyHash  []byte
	log        zerolog.Logger
	now        func() time.Time
}

var _ ports.IdentityBackend = (*Backend)(nil)

// NewBackend wires the adapter.
func NewBackend(
	identities ports.IdentityRepository,
	profiles ports.ProfileRepository,
	refresh ports.RefreshTokenStore,
	revoked ports.TokenRevocationStore,
	tokens *token.Manager,
	opts Options,
	log zerolog.Logger,
) *Backend {
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = defaultRefreshTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the email is unknown, so a miss costs the same
	// bcrypt work as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), opts.BcryptCost)
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}
	return &Backend{
		dummyHash:  dummy,
		identities: identities,
		profiles:   profiles,
		refresh:    refresh,
		revoked:    revoked,
		tokens:     tokens,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

func (b *Backend) Login(ctx context.Context, creds domain.Credentials) (domain.TokenResponse, error) {
	ident, err := b.identities.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(b.dummyHash, []byte(creds.Password))
			return domain.TokenResponse{}, domain.ErrInvalidCredentials
		}
		return domain.TokenResponse{}, infra(err, "IDENTITY_LOOKUP_FAILED", "find identity by email")
	}

	if bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(creds.Password)) != nil {
		return domain.TokenResponse{}, domain.ErrInvalidCredentials
	}

	if b.opts.RequireVerifiedEmail && !ident.EmailVerified {
		return domain.TokenResponse{}, domain.ErrEmailNotVerified
	}

	profile, err := b.profiles.FindByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			b.log.Warn().Str("user_id", ident.ID).Msg("identity without profile")
			return domain.TokenResponse{}, domain.ErrInvalidCredentials
		}
		return domain.TokenResponse{}, infra(err, "PROFILE_LOOKUP_FAILED", "find profile by id")
	}

	return b.issue(ctx, toUser(ident, profile))
}

func (b *Backend) Register(ctx context.Context, account ports.NewAccount) (domain.TokenResponse, error) {
	if _, err := b.identities.FindByEmail(ctx, account.Email); err == nil {
		return domain.TokenResponse{}, domain.ErrEmailAlreadyInUse
	} else if !errors.Is(err, ports.ErrRecordNotFound) {
		return domain.TokenResponse{}, infra(err, "IDENTITY_LOOKUP_FAILED", "find identity by email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), b.opts.BcryptCost)
	if err != nil {
		return domain.TokenResponse{}, infra(err, "PASSWORD_HASH_FAILED", "hash password")
	}

	now := b.now().UTC()
	ident := &ports.IdentityRecord{
		ID:            uuid.NewString(),
		Email:         account.Email,
		PasswordHash:  string(hash),
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := b.identities.Create(ctx, ident); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return domain.TokenResponse{}, domain.ErrEmailAlreadyInUse
		}
		return domain.TokenResponse{}, infra(err, "IDENTITY_CREATE_FAILED", "create identity")
	}

	profile := &ports.ProfileRecord{
		ID:        ident.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.profiles.Create(ctx, profile); err != nil {
		if delErr := b.identities.Delete(ctx, ident.ID); delErr != nil {
			b.log.Error().Err(delErr).Str("user_id", ident.ID).Msg("failed to roll back identity after profile error")
		}
		return domain.TokenResponse{}, infra(err, "PROFILE_CREATE_FAILED", "create profile")
	}

	return b.issue(ctx, toUser(ident, profile))
}

func (b *Backend) ValidateToken(ctx context.Context, raw string) (domain.TokenValidationResponse, error) {
	claims, err := b.tokens.Parse(raw)
	if err != nil {
		return domain.InvalidToken(), nil
	}

	revoked, err := b.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.TokenValidationResponse{}, infra(err, "REVOCATION_CHECK_FAILED", "check token revocation")
	}
	if revoked {
		return domain.InvalidToken(), nil
	}

	user, err := b.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.InvalidToken(), nil
		}
		return domain.TokenValidationResponse{}, err
	}
	return domain.ValidToken(user), nil
}

func (b *Backend) RefreshToken(ctx context.Context, raw string) (domain.TokenResponse, error) {
	userID, err := b.refresh.Consume(ctx, token.HashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.TokenResponse{}, domain.ErrInvalidToken
		}
		return domain.TokenResponse{}, infra(err, "REFRESH_CONSUME_FAILED", "consume refresh token")
	}

	user, err := b.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.TokenResponse{}, domain.ErrInvalidToken
		}
		return domain.TokenResponse{}, err
	}
	return b.issue(ctx, user)
}

func (b *Backend) GetUserByID(ctx context.Context, userID string) (domain.AuthenticatedUser, error) {
	ident, err := b.identities.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		return domain.AuthenticatedUser{}, infra(err, "IDENTITY_LOOKUP_FAILED", "find identity by id")
	}

	profile, err := b.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		return domain.AuthenticatedUser{}, infra(err, "PROFILE_LOOKUP_FAILED", "find profile by id")
	}
	return toUser(ident, profile), nil
}

// UpdateUser writes the identity record first and the profile second. If
// the profile write fails the identity record is restored, so the two
// never disagree on the account email.
func (b *Backend) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) (domain.AuthenticatedUser, error) {
	ident, err := b.identities.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		return domain.AuthenticatedUser{}, infra(err, "IDENTITY_LOOKUP_FAILED", "find identity by id")
	}
	if _, err := b.profiles.FindByID(ctx, userID); err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		return domain.AuthenticatedUser{}, infra(err, "PROFILE_LOOKUP_FAILED", "find profile by id")
	}

	emailChanged := update.Email != nil && !strings.EqualFold(*update.Email, ident.Email)
	if emailChanged {
		if err := b.ensureEmailFree(ctx, *update.Email, userID); err != nil {
			return domain.AuthenticatedUser{}, err
		}
	}

	identityWritten := false
	switch {
	case emailChanged:
		verified := false
		if update.EmailVerified != nil {
			verified = *update.EmailVerified
		}
		if err := b.identities.UpdateEmail(ctx, userID, *update.Email, verified); err != nil {
			return domain.AuthenticatedUser{}, b.identityWriteError(err)
		}
		identityWritten = true
	case update.EmailVerified != nil && *update.EmailVerified != ident.EmailVerified:
		if err := b.identities.SetEmailVerified(ctx, userID, *update.EmailVerified); err != nil {
			return domain.AuthenticatedUser{}, b.identityWriteError(err)
		}
		identityWritten = true
	}

	patch := ports.ProfilePatch{Name: update.Name, Role: update.Role}
	if emailChanged {
		patch.Email = update.Email
	}
	if _, err := b.profiles.Update(ctx, userID, patch); err != nil {
		if identityWritten {
			b.restoreIdentity(ctx, ident)
		}
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		return domain.AuthenticatedUser{}, infra(err, "PROFILE_UPDATE_FAILED", "update profile")
	}

	return b.GetUserByID(ctx, userID)
}

// RevokeTokens denies the access token until it would expire anyway and
// drops the refresh token. Unparseable tokens are ignored.
func (b *Backend) RevokeTokens(ctx context.Context, accessToken, refreshToken string) error {
	if claims, err := b.tokens.Parse(accessToken); err == nil {
		if err := b.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return infra(err, "TOKEN_REVOKE_FAILED", "revoke access token")
		}
	}
	if refreshToken != "" {
		if err := b.refresh.Delete(ctx, token.HashRefreshToken(refreshToken)); err != nil && !errors.Is(err, ports.ErrRecordNotFound) {
			return infra(err, "REFRESH_DELETE_FAILED", "delete refresh token")
		}
	}
	return nil
}

func (b *Backend) issue(ctx context.Context, user domain.AuthenticatedUser) (domain.TokenResponse, error) {
	access, claims, err := b.tokens.Issue(user.ID, user.Role.String())
	if err != nil {
		return domain.TokenResponse{}, infra(err, "TOKEN_ISSUE_FAILED", "issue access token")
	}

	refresh, hash, err := token.NewRefreshToken()
	if err != nil {
		return domain.TokenResponse{}, infra(err, "TOKEN_ISSUE_FAILED", "generate refresh token")
	}
	if err := b.refresh.Save(ctx, hash, user.ID, b.opts.RefreshTTL); err != nil {
		return domain.TokenResponse{}, infra(err, "REFRESH_SAVE_FAILED", "store refresh token")
	}

	return domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         user,
	}, nil
}

func (b *Backend) ensureEmailFree(ctx context.Context, email, userID string) error {
	other, err := b.identities.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ports.ErrRecordNotFound):
		return nil
	case err != nil:
		return infra(err, "IDENTITY_LOOKUP_FAILED", "find identity by email")
	case other.ID != userID:
		return domain.ErrEmailAlreadyInUse
	default:
		return nil
	}
}

func (b *Backend) identityWriteError(err error) error {
	if errors.Is(err, ports.ErrDuplicateKey) {
		return domain.ErrEmailAlreadyInUse
	}
	if errors.Is(err, ports.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return infra(err, "IDENTITY_UPDATE_FAILED", "update identity")
}

func (b *Backend) restoreIdentity(ctx context.Context, prev *ports.IdentityRecord) {
	if err := b.identities.UpdateEmail(ctx, prev.ID, prev.Email, prev.EmailVerified); err != nil {
		b.log.Error().
			Err(err).
			Str("user_id", prev.ID).
			Msg("identity and profile out of sync")
	}
}

func toUser(ident *ports.IdentityRecord, profile *ports.ProfileRecord) domain.AuthenticatedUser {
	return domain.AuthenticatedUser{
		ID:            ident.ID,
		Email:         ident.Email,
		Name:          profile.Name,
		Role:          profile.Role,
		EmailVerified: ident.EmailVerified,
	}
}

func infra(err error, code, operation string) *domain.AuthError {
	return domain.Infrastructure(oops.Code(code).With("operation", operation).Wrap(err))
}
