package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. There is no hierarchy between
// roles: a route admits exactly the roles it lists.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RolePlayer Role = "PLAYER"
)

// DefaultRole is granted to every self-registered account.
const DefaultRole = RolePlayer

// Roles returns every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RolePlayer}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlayer:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
