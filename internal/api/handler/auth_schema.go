package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"omitempty,max=120"`
	// Role is accepted for compatibility with older clients and ignored.
	Role string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// updateMeRequest is what users may change about themselves. Role and
// verification status are not part of it.
type updateMeRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type adminUpdateUserRequest struct {
	Name          *string `json:"name,omitempty"           validate:"omitempty,min=1,max=120"`
	Email         *string `json:"email,omitempty"          validate:"omitempty,email"`
	Role          *string `json:"role,omitempty"           validate:"omitempty,oneof=ADMIN PLAYER"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}

// --- Response types ---

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         userResponse `json:"user"`
}
