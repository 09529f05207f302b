package handler

import "github.com/arenaops/tournament-api/internal/core/domain"

func toUserResponse(u domain.AuthenticatedUser) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role.String(),
		EmailVerified: u.EmailVerified,
	}
}

func toTokenResponse(t domain.TokenResponse) tokenResponse {
	return tokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    t.ExpiresAt,
		User:         toUserResponse(t.User),
	}
}

func (r updateMeRequest) toDomain() domain.UserUpdate {
	return domain.UserUpdate{Name: r.Name, Email: r.Email}
}

func (r adminUpdateUserRequest) toDomain() domain.UserUpdate {
	u := domain.UserUpdate{Name: r.Name, Email: r.Email, EmailVerified: r.EmailVerified}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		u.Role = &role
	}
	return u
}
