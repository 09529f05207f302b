package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrEmailAlreadyInUse, http.StatusBadRequest},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrTokenMissing, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.Forbidden(domain.RoleAdmin), http.StatusForbidden},
		{domain.ErrEmailNotVerified, http.StatusForbidden},
		{domain.InvalidInput("email", "must be a valid address"), http.StatusBadRequest},
		{domain.Infrastructure(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("foreign"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHTTPError_KeepsFixedMessage(t *testing.T) {
	cause := errors.New("mongo: no reachable servers")
	he := HTTPError(domain.Infrastructure(cause))

	if he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", he.Code)
	}
	if he.Message != "internal error" {
		t.Fatalf("cause leaked into message: %v", he.Message)
	}
	if !errors.Is(he.Internal, cause) {
		t.Fatalf("internal error should wrap the cause")
	}
}
