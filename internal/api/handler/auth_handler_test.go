package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/api/middleware"
	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, data domain.RegistrationData, opts ...ports.RegisterOption) domain.Result[domain.TokenResponse]
	loginFn    func(ctx context.Context, creds domain.Credentials) domain.Result[domain.TokenResponse]
	validateFn func(ctx context.Context, token string) domain.Result[domain.TokenValidationResponse]
	refreshFn  func(ctx context.Context, refreshToken string) domain.Result[domain.TokenResponse]
	getFn      func(ctx context.Context, userID string) domain.Result[domain.AuthenticatedUser]
	updateFn   func(ctx context.Context, userID string, update domain.UserUpdate) domain.Result[domain.AuthenticatedUser]
	logoutFn   func(ctx context.Context, accessToken, refreshToken string) domain.Result[struct{}]
}

func (s *stubAuthService) Register(ctx context.Context, data domain.RegistrationData, opts ...ports.RegisterOption) domain.Result[domain.TokenResponse] {
	return s.registerFn(ctx, data, opts...)
}

func (s *stubAuthService) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.TokenResponse] {
	return s.loginFn(ctx, creds)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) domain.Result[domain.TokenValidationResponse] {
	return s.validateFn(ctx, token)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) domain.Result[domain.TokenResponse] {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, userID string) domain.Result[domain.AuthenticatedUser] {
	return s.getFn(ctx, userID)
}

func (s *stubAuthService) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) domain.Result[domain.AuthenticatedUser] {
	return s.updateFn(ctx, userID, update)
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken, refreshToken string) domain.Result[struct{}] {
	return s.logoutFn(ctx, accessToken, refreshToken)
}

var alice = domain.AuthenticatedUser{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: domain.RolePlayer}

func tokensFor(u domain.AuthenticatedUser) domain.Result[domain.TokenResponse] {
	return domain.Ok(domain.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		User:         u,
	})
}

// do runs h against a JSON request and renders any returned error the way
// the router would.
func do(t *testing.T, h echo.HandlerFunc, method, body string, setup func(c echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

// authenticated runs the real Authenticate middleware so the user lands in
// the context exactly as it does in production.
func authenticated(user domain.AuthenticatedUser) func(c echo.Context) {
	return func(c echo.Context) {
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer access")
		v := &stubAuthService{validateFn: func(context.Context, string) domain.Result[domain.TokenValidationResponse] {
			return domain.Ok(domain.ValidToken(user))
		}}
		_ = middleware.Authenticate(v, middleware.AuthOptions{})(func(echo.Context) error { return nil })(c)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, data domain.RegistrationData, opts ...ports.RegisterOption) domain.Result[domain.TokenResponse] {
			if len(opts) != 0 {
				t.Fatalf("handler must not pass register options")
			}
			if data.Email != "alice@example.com" || data.Name != "Alice" {
				t.Fatalf("unexpected args: %+v", data)
			}
			return tokensFor(alice)
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Register, http.MethodPost, `{"email":"alice@example.com","password":"correct-horse","name":"Alice","role":"ADMIN"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["access_token"] != "access" || resp["token_type"] != "Bearer" {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	user := resp["user"].(map[string]any)
	if user["role"] != "PLAYER" || user["email_verified"] != false {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "correct-horse") {
		t.Fatalf("password leaked into response")
	}
}

func TestAuthHandler_Register_EmailInUse(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, domain.RegistrationData, ...ports.RegisterOption) domain.Result[domain.TokenResponse] {
			return domain.Fail[domain.TokenResponse](domain.ErrEmailAlreadyInUse)
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Register, http.MethodPost, `{"email":"alice@example.com","password":"correct-horse"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decode(t, rec)["message"] != "email is already in use" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	rec := do(t, h.Register, http.MethodPost, `{"email":"not-an-email","password":"x"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email must be a valid email") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = do(t, h.Register, http.MethodPost, `{"email":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, domain.Credentials) domain.Result[domain.TokenResponse] {
			return domain.Fail[domain.TokenResponse](domain.ErrInvalidCredentials)
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Login, http.MethodPost, `{"email":"alice@example.com","password":"wrong"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, creds domain.Credentials) domain.Result[domain.TokenResponse] {
			if creds.Password != "correct-horse" {
				t.Fatalf("password not forwarded")
			}
			return tokensFor(alice)
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Login, http.MethodPost, `{"email":"alice@example.com","password":"correct-horse"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["refresh_token"] != "refresh" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_InfrastructureFailureIsGeneric(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, domain.Credentials) domain.Result[domain.TokenResponse] {
			return domain.Fail[domain.TokenResponse](domain.Infrastructure(errors.New("mongo: connection refused")))
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Login, http.MethodPost, `{"email":"alice@example.com","password":"correct-horse"}`, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("cause leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Refresh_Replay(t *testing.T) {
	used := false
	stub := &stubAuthService{
		refreshFn: func(context.Context, string) domain.Result[domain.TokenResponse] {
			if used {
				return domain.Fail[domain.TokenResponse](domain.ErrInvalidToken)
			}
			used = true
			return tokensFor(alice)
		},
	}
	h := NewAuthHandler(stub)

	if rec := do(t, h.Refresh, http.MethodPost, `{"refresh_token":"rt"}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, h.Refresh, http.MethodPost, `{"refresh_token":"rt"}`, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var gotAccess, gotRefresh string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, access, refresh string) domain.Result[struct{}] {
			gotAccess, gotRefresh = access, refresh
			return domain.Ok(struct{}{})
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Logout, http.MethodPost, `{"refresh_token":"rt"}`, func(c echo.Context) {
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer access")
	})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotAccess != "access" || gotRefresh != "rt" {
		t.Fatalf("unexpected tokens: %q %q", gotAccess, gotRefresh)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		getFn: func(_ context.Context, id string) domain.Result[domain.AuthenticatedUser] {
			if id != "u1" {
				t.Fatalf("unexpected id %q", id)
			}
			return domain.Ok(alice)
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.Me, http.MethodGet, "", authenticated(alice))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["email"] != "alice@example.com" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Me_WithoutMiddleware(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	rec := do(t, h.Me, http.MethodGet, "", nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdateMe_CannotChangeRole(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(_ context.Context, id string, u domain.UserUpdate) domain.Result[domain.AuthenticatedUser] {
			if u.Role != nil || u.EmailVerified != nil {
				t.Fatalf("self update must not carry role or verification: %+v", u)
			}
			if u.Name == nil || *u.Name != "Al" {
				t.Fatalf("name not forwarded")
			}
			updated := alice
			updated.Name = *u.Name
			return domain.Ok(updated)
		},
	}
	h := NewAuthHandler(stub)

	rec := do(t, h.UpdateMe, http.MethodPatch, `{"name":"Al","role":"ADMIN","email_verified":true}`, authenticated(alice))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["role"] != "PLAYER" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
