package app

import (
	authService "github.com/allisson/zkgate/internal/auth/service"
)

// TokenService returns the Argon2id admin token service.
func (c *Container) TokenService() authService.TokenService {
	return c.tokenService.must(authService.NewTokenService)
}
