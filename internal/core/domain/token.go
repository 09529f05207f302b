package domain

import "time"

// TokenResponse is returned by login, registration and refresh.
type TokenResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time         `json:"expires_at"`
	User         AuthenticatedUser `json:"user"`
}

// TokenValidationResponse reports the outcome of validating an access token.
// User is only set when Valid is true.
type TokenValidationResponse struct {
	Valid bool               `json:"valid"`
	User  *AuthenticatedUser `json:"user,omitempty"`
}

// InvalidToken is the validation outcome for any unusable token.
func InvalidToken() TokenValidationResponse {
	return TokenValidationResponse{Valid: false}
}

// ValidToken wraps a resolved user into a positive validation outcome.
func ValidToken(u AuthenticatedUser) TokenValidationResponse {
	return TokenValidationResponse{Valid: true, User: &u}
}
