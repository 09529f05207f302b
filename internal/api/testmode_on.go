//go:build integration

package api

import "github.com/arenaops/tournament-api/internal/api/middleware"

// authOptions enables the role override header, and only when the process
// runs with ENV=test.
func authOptions(env string) middleware.AuthOptions {
	if env != "test" {
		return middleware.AuthOptions{}
	}
	return middleware.AuthOptions{Decorate: middleware.RoleOverride}
}
