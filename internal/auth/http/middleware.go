// Package http holds the gin middleware guarding the API: admin bearer
// authentication for credential routes and per-client throttling for proof routes.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/zkgate/internal/auth/service"
	apperrors "github.com/allisson/zkgate/internal/errors"
	"github.com/allisson/zkgate/internal/httputil"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AdminAuthenticationMiddleware requires a bearer token matching adminTokenHash.
// It guards credential issuance, record reads and proof generation; authorize and
// execute are authenticated by their proofs instead. Every failure is a plain 401,
// including an unset hash.
func AdminAuthenticationMiddleware(
	tokenService authService.TokenService,
	adminTokenHash string,
	logger *slog.Logger,
) gin.HandlerFunc {
	deny := func(c *gin.Context, reason string) {
		logger.Debug("admin authentication failed",
			slog.String("reason", reason),
			slog.String("client_ip", c.ClientIP()))
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		c.Abort()
	}

	return func(c *gin.Context) {
		if adminTokenHash == "" {
			logger.Warn("admin endpoint called but ADMIN_TOKEN_HASH is not configured")
			deny(c, "no admin token configured")
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			deny(c, "missing or malformed authorization header")
			return
		}

		if !tokenService.CompareToken(token, adminTokenHash) {
			deny(c, "token does not match")
			return
		}

		c.Next()
	}
}
