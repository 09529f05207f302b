package domain

// AuthenticatedUser is the identity attached to a request after its bearer
// token was validated. It is passed by value so handlers cannot mutate the
// copy held by the request context.
type AuthenticatedUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

// HasRole reports whether the user holds exactly one of roles.
func (u AuthenticatedUser) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if r.Valid() && u.Role == r {
			return true
		}
	}
	return false
}

// Credentials is login input. It is never stored or logged.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

// RegistrationData is sign-up input. Role is a request from the client and
// is not honoured unless the in-process caller grants it.
type RegistrationData struct {
	Email    string `json:"email"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Role     Role   `json:"role,omitempty"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Role          *Role   `json:"role,omitempty"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil && u.EmailVerified == nil
}
