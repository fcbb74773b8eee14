package http

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsMaxAge bounds how long browsers cache a preflight answer.
const corsMaxAge = time.Hour

// createCORSMiddleware builds the CORS middleware for browser-hosted agents.
// Returns nil when disabled or when no usable origin is configured.
//
// The API authenticates with bearer tokens only, so credentials (cookies) are never
// allowed. Retry-After is exposed so browser clients can honor proof endpoint rate limits.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, rejected := parseOrigins(allowOriginsStr)
	for _, origin := range rejected {
		logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
	}
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured - CORS will not be applied")
		return nil
	}

	config := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        corsMaxAge,
	}
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))
	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list. Entries must be "*" or an
// http(s) scheme://host[:port] without path; anything else is returned as rejected.
// A wildcard mixed with explicit origins is rejected.
func parseOrigins(originsStr string) (origins []string, rejected []string) {
	for _, part := range strings.Split(originsStr, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin == "" {
			continue
		}
		if origin == "*" || validOrigin(origin) {
			origins = append(origins, origin)
		} else {
			rejected = append(rejected, origin)
		}
	}

	if len(origins) > 1 {
		explicit := origins[:0]
		for _, origin := range origins {
			if origin == "*" {
				rejected = append(rejected, origin)
				continue
			}
			explicit = append(explicit, origin)
		}
		origins = explicit
	}

	return origins, rejected
}

func validOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && u.Path == "" &&
		u.RawQuery == "" && u.Fragment == "" && u.User == nil
}
