package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/zkgate/internal/metrics"
)

// MetricsServer exposes the Prometheus scrape endpoint on its own port, away from the
// proof endpoints. Scrapes are not request-logged.
type MetricsServer struct {
	listener
	handler http.Handler
}

// NewMetricsServer creates a metrics server. A nil provider serves only 404s.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())

	if metricsProvider != nil {
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	}

	return &MetricsServer{
		listener: newListener("metrics", host, port, logger),
		handler:  router,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.handler
}

// Start blocks serving /metrics until Shutdown.
func (s *MetricsServer) Start(ctx context.Context) error {
	return s.listen(s.handler)
}
