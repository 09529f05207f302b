//go:build !integration

package api

import "github.com/arenaops/tournament-api/internal/api/middleware"

func authOptions(string) middleware.AuthOptions {
	return middleware.AuthOptions{}
}
