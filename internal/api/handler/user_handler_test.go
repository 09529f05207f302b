package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

func withID(id string) func(c echo.Context) {
	return func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	stub := &stubAuthService{
		getFn: func(context.Context, string) domain.Result[domain.AuthenticatedUser] {
			return domain.Fail[domain.AuthenticatedUser](domain.ErrUserNotFound)
		},
	}
	h := NewUserHandler(stub)

	rec := do(t, h.Get, http.MethodGet, "", withID("ghost"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_Update_Role(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(_ context.Context, id string, u domain.UserUpdate) domain.Result[domain.AuthenticatedUser] {
			if id != "u1" || u.Role == nil || *u.Role != domain.RoleAdmin {
				t.Fatalf("unexpected update for %s: %+v", id, u)
			}
			if u.EmailVerified == nil || !*u.EmailVerified {
				t.Fatalf("verification flag not forwarded")
			}
			updated := alice
			updated.Role = *u.Role
			updated.EmailVerified = true
			return domain.Ok(updated)
		},
	}
	h := NewUserHandler(stub)

	rec := do(t, h.Update, http.MethodPatch, `{"role":"ADMIN","email_verified":true}`, withID("u1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["role"] != "ADMIN" || resp["email_verified"] != true {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestUserHandler_Update_RejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&stubAuthService{})

	rec := do(t, h.Update, http.MethodPatch, `{"role":"OWNER"}`, withID("u1"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
