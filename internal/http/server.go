// Package http wires the gin routers for the public API and the metrics listener.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/zkgate/internal/auth/http"
	authService "github.com/allisson/zkgate/internal/auth/service"
	"github.com/allisson/zkgate/internal/config"
	delegationHTTP "github.com/allisson/zkgate/internal/delegation/http"
	"github.com/allisson/zkgate/internal/metrics"
)

// readinessTimeout bounds the store ping behind /ready.
const readinessTimeout = 2 * time.Second

// Pinger reports whether the record store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the public API server.
type Server struct {
	listener
	router *gin.Engine
	store  Pinger
}

// NewServer creates a new HTTP server. store backs the readiness check; nil reports not ready.
func NewServer(
	store Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		listener: newListener("http", host, port, logger),
		store:    store,
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
// ctx bounds background work started by middleware, such as rate limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	credentialHandler *delegationHTTP.CredentialHandler,
	authorizationHandler *delegationHTTP.AuthorizationHandler,
	tokenService authService.TokenService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}
	router.Use(CustomLoggerMiddleware(s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Credential administration, bearer token required
	credentials := v1.Group("/credentials")
	credentials.Use(authHTTP.AdminAuthenticationMiddleware(tokenService, cfg.AdminTokenHash, s.logger))
	{
		credentials.POST("", credentialHandler.IssueHandler)
		credentials.GET("/:commitment", credentialHandler.GetHandler)
		credentials.POST("/:commitment/proofs", credentialHandler.ProveHandler)
	}

	// Proof-authenticated endpoints
	proofs := v1.Group("")
	if cfg.RateLimitEnabled {
		proofs.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	{
		proofs.POST("/authorize", authorizationHandler.AuthorizeHandler)
		proofs.POST("/actions/execute", authorizationHandler.ExecuteHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	return s.listen(s.router)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings the record store. Ping errors are logged, never returned.
func (s *Server) readinessHandler(c *gin.Context) {
	if err := s.pingStore(c.Request.Context()); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, readiness("not_ready", "error"))
		return
	}
	c.JSON(http.StatusOK, readiness("ready", "ok"))
}

func (s *Server) pingStore(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no record store configured")
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return s.store.PingContext(ctx)
}

func readiness(status, store string) gin.H {
	return gin.H{"status": status, "components": gin.H{"record_store": store}}
}
