package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

type stubValidator struct {
	calls int
	fn    func(token string) domain.Result[domain.TokenValidationResponse]
}

func (s *stubValidator) ValidateToken(_ context.Context, token string) domain.Result[domain.TokenValidationResponse] {
	s.calls++
	return s.fn(token)
}

func validFor(user domain.AuthenticatedUser) *stubValidator {
	return &stubValidator{fn: func(token string) domain.Result[domain.TokenValidationResponse] {
		if token != "good-token" {
			return domain.Ok(domain.InvalidToken())
		}
		return domain.Ok(domain.ValidToken(user))
	}}
}

func serve(t *testing.T, mw echo.MiddlewareFunc, authHeader string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(next)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, err
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := domain.AuthenticatedUser{ID: "u1", Email: "alice@example.com", Role: domain.RolePlayer}
	v := validFor(user)

	called := false
	rec, err := serve(t, Authenticate(v, AuthOptions{}), "Bearer good-token", func(c echo.Context) error {
		called = true
		got, ok := CurrentUser(c)
		if !ok || got.ID != "u1" {
			t.Fatalf("user not attached to echo context: %+v", got)
		}
		fromReq, ok := UserFrom(c.Request().Context())
		if !ok || fromReq.Role != domain.RolePlayer {
			t.Fatalf("user not attached to request context: %+v", fromReq)
		}
		return c.NoContent(http.StatusOK)
	})

	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   ", "good-token"} {
		v := validFor(domain.AuthenticatedUser{ID: "u1"})

		rec, err := serve(t, Authenticate(v, AuthOptions{}), header, mustNotRun(t))

		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Message != "authentication token is missing" {
			t.Fatalf("header %q: expected token missing error, got %v", header, err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if v.calls != 0 {
			t.Fatalf("header %q: validator should not be called", header)
		}
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	v := validFor(domain.AuthenticatedUser{ID: "u1"})

	rec, err := serve(t, Authenticate(v, AuthOptions{}), "Bearer expired-token", mustNotRun(t))

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if he.Message != "invalid or expired token" {
		t.Fatalf("unexpected message %v", he.Message)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if v.calls != 1 {
		t.Fatalf("expected one validation call, got %d", v.calls)
	}
}

func TestAuthenticate_ValidWithoutUserIsRejected(t *testing.T) {
	v := &stubValidator{fn: func(string) domain.Result[domain.TokenValidationResponse] {
		return domain.Ok(domain.TokenValidationResponse{Valid: true})
	}}

	rec, _ := serve(t, Authenticate(v, AuthOptions{}), "Bearer good-token", mustNotRun(t))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_BackendFailure(t *testing.T) {
	v := &stubValidator{fn: func(string) domain.Result[domain.TokenValidationResponse] {
		return domain.Fail[domain.TokenValidationResponse](domain.Infrastructure(errors.New("redis down")))
	}}

	rec, _ := serve(t, Authenticate(v, AuthOptions{}), "Bearer good-token", mustNotRun(t))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthenticate_Decorate(t *testing.T) {
	v := validFor(domain.AuthenticatedUser{ID: "u1", Role: domain.RolePlayer})
	opts := AuthOptions{Decorate: func(_ echo.Context, u domain.AuthenticatedUser) domain.AuthenticatedUser {
		u.Name = "decorated"
		return u
	}}

	_, err := serve(t, Authenticate(v, opts), "Bearer good-token", func(c echo.Context) error {
		u, _ := CurrentUser(c)
		if u.Name != "decorated" {
			t.Fatalf("decorator not applied")
		}
		return c.NoContent(http.StatusNoContent)
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  BEARER   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
