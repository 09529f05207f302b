package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
	"github.com/arenaops/tournament-api/internal/pkg/metrics"
)

const (
	defaultMinPasswordLength = 8
	defaultCallTimeout       = 5 * time.Second
)

var tracer = otel.Tracer("tournament-api/auth")

// AuthServiceConfig holds the facade policies.
type AuthServiceConfig struct {
	MinPasswordLength int
	CallTimeout       time.Duration
}

// AuthService is the facade in front of the identity backend. It never lets
// an error or panic escape: every call ends as a domain.Result.
type AuthService struct {
	backend ports.IdentityBackend
	audit   ports.AuditSink
	cfg     AuthServiceConfig
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService wires the facade. audit may be nil.
func NewAuthService(backend ports.IdentityBackend, audit ports.AuditSink, cfg AuthServiceConfig, log zerolog.Logger) *AuthService {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = defaultMinPasswordLength
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return &AuthService{backend: backend, audit: audit, cfg: cfg, log: log, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.TokenResponse] {
	email := normalizeEmail(creds.Email)
	res := run(ctx, s, "login", func(ctx context.Context) (domain.TokenResponse, error) {
		if email == "" || creds.Password == "" {
			return domain.TokenResponse{}, domain.ErrInvalidCredentials
		}
		return s.backend.Login(ctx, domain.Credentials{Email: email, Password: creds.Password})
	})

	if res.IsSuccess() {
		s.record("login_succeeded", res.Value().User.ID, email, "success")
	} else {
		s.record("login_failed", "", email, res.AuthErr().Kind.String())
	}
	return res
}

// Register creates a PLAYER account unless a trusted caller passes
// ports.WithRoleGrant. The role requested in data is never honoured on its own.
func (s *AuthService) Register(ctx context.Context, data domain.RegistrationData, opts ...ports.RegisterOption) domain.Result[domain.TokenResponse] {
	var o ports.RegisterOptions
	for _, opt := range opts {
		opt(&o)
	}
	email := normalizeEmail(data.Email)

	res := run(ctx, s, "register", func(ctx context.Context) (domain.TokenResponse, error) {
		if email == "" || !strings.Contains(email, "@") || len(data.Password) < s.cfg.MinPasswordLength {
			return domain.TokenResponse{}, domain.ErrInvalidCredentials
		}

		role, err := s.effectiveRole(data.Role, o)
		if err != nil {
			return domain.TokenResponse{}, err
		}

		return s.backend.Register(ctx, ports.NewAccount{
			Email:    email,
			Password: data.Password,
			Name:     strings.TrimSpace(data.Name),
			Role:     role,
		})
	})

	if res.IsSuccess() {
		s.record("registered", res.Value().User.ID, email, "success")
	} else {
		s.record("register_failed", "", email, res.AuthErr().Kind.String())
	}
	return res
}

// ValidateToken reports unusable tokens as {Valid: false}; only backend
// failures produce a failed Result.
func (s *AuthService) ValidateToken(ctx context.Context, token string) domain.Result[domain.TokenValidationResponse] {
	token = strings.TrimSpace(token)
	return run(ctx, s, "validate_token", func(ctx context.Context) (domain.TokenValidationResponse, error) {
		if token == "" {
			return domain.InvalidToken(), nil
		}
		v, err := s.backend.ValidateToken(ctx, token)
		if err != nil {
			return domain.TokenValidationResponse{}, err
		}
		if !v.Valid || v.User == nil {
			return domain.InvalidToken(), nil
		}
		return v, nil
	})
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) domain.Result[domain.TokenResponse] {
	refreshToken = strings.TrimSpace(refreshToken)
	res := run(ctx, s, "refresh_token", func(ctx context.Context) (domain.TokenResponse, error) {
		if refreshToken == "" {
			return domain.TokenResponse{}, domain.ErrInvalidToken
		}
		return s.backend.RefreshToken(ctx, refreshToken)
	})

	if res.IsSuccess() {
		s.record("token_refreshed", res.Value().User.ID, "", "success")
	} else {
		s.record("token_refresh_rejected", "", "", res.AuthErr().Kind.String())
	}
	return res
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) domain.Result[domain.AuthenticatedUser] {
	userID = strings.TrimSpace(userID)
	return run(ctx, s, "get_user", func(ctx context.Context) (domain.AuthenticatedUser, error) {
		if userID == "" {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		return s.backend.GetUserByID(ctx, userID)
	})
}

// UpdateUser applies a partial update. Blank names and emails and unknown
// roles are dropped from the update rather than written.
func (s *AuthService) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) domain.Result[domain.AuthenticatedUser] {
	userID = strings.TrimSpace(userID)
	update, invalid := sanitizeUpdate(update)

	res := run(ctx, s, "update_user", func(ctx context.Context) (domain.AuthenticatedUser, error) {
		if userID == "" {
			return domain.AuthenticatedUser{}, domain.ErrUserNotFound
		}
		if invalid != nil {
			return domain.AuthenticatedUser{}, invalid
		}
		if update.Empty() {
			return s.backend.GetUserByID(ctx, userID)
		}
		return s.backend.UpdateUser(ctx, userID, update)
	})

	if res.IsSuccess() && !update.Empty() {
		s.record("user_updated", userID, "", "success")
	}
	return res
}

// Logout revokes the access token and drops the refresh token, if given.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) domain.Result[struct{}] {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)
	res := run(ctx, s, "logout", func(ctx context.Context) (struct{}, error) {
		if accessToken == "" {
			return struct{}{}, domain.ErrTokenMissing
		}
		return struct{}{}, s.backend.RevokeTokens(ctx, accessToken, refreshToken)
	})
	if res.IsSuccess() {
		s.record("logged_out", "", "", "success")
	}
	return res
}

func (s *AuthService) effectiveRole(requested domain.Role, o ports.RegisterOptions) (domain.Role, error) {
	if o.GrantRole != "" {
		if !o.GrantRole.Valid() {
			return "", domain.Infrastructure(fmt.Errorf("invalid role grant %q", o.GrantRole))
		}
		return o.GrantRole, nil
	}
	if requested != "" && requested != domain.DefaultRole {
		s.log.Warn().Str("requested_role", requested.String()).Msg("ignoring role requested at registration")
	}
	return domain.DefaultRole, nil
}

// sanitizeUpdate normalizes the fields present in u. A field that is present
// but unusable rejects the whole update rather than being skipped.
func sanitizeUpdate(u domain.UserUpdate) (domain.UserUpdate, error) {
	if u.Email != nil {
		email := normalizeEmail(*u.Email)
		if email == "" || !strings.Contains(email, "@") {
			return u, domain.InvalidInput("email", "must be a valid address")
		}
		u.Email = &email
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return u, domain.InvalidInput("name", "must not be blank")
		}
		u.Name = &name
	}
	if u.Role != nil && !u.Role.Valid() {
		return u, domain.InvalidInput("role", "must be ADMIN or PLAYER")
	}
	return u, nil
}

func (s *AuthService) record(eventType, userID, email, outcome string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEvent{
		Type:      eventType,
		UserID:    userID,
		Email:     email,
		Outcome:   outcome,
		Timestamp: s.now().UTC(),
	})
}

// run executes fn against the backend with a deadline, recovers panics and
// folds every error into the auth taxonomy.
func run[T any](ctx context.Context, s *AuthService, op string, fn func(context.Context) (T, error)) (res domain.Result[T]) {
	ctx, span := tracer.Start(ctx, "auth."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("auth.operation", op)),
	)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	start := time.Now()

	defer func() {
		cancel()
		if r := recover(); r != nil {
			res = domain.Fail[T](domain.Infrastructure(fmt.Errorf("identity backend panic: %v", r)))
		}

		outcome := "success"
		if res.IsFailure() {
			ae := res.AuthErr()
			outcome = ae.Kind.String()
			span.SetAttributes(attribute.String("auth.error_kind", outcome))
			if ae.Kind == domain.KindInfrastructure {
				span.RecordError(ae)
				span.SetStatus(codes.Error, outcome)
				s.log.Error().Err(ae.Unwrap()).Str("operation", op).Msg("identity backend failure")
			}
		}
		metrics.AuthOperationsTotal.WithLabelValues(op, outcome).Inc()
		metrics.AuthOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		span.End()
	}()

	v, err := fn(ctx)
	if err != nil {
		return domain.Fail[T](domain.AsAuthError(err))
	}
	return domain.Ok(v)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
