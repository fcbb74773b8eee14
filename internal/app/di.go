// Package app wires configuration into stores, services, use cases and servers.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	authService "github.com/allisson/zkgate/internal/auth/service"
	"github.com/allisson/zkgate/internal/config"
	"github.com/allisson/zkgate/internal/database"
	delegationHTTP "github.com/allisson/zkgate/internal/delegation/http"
	fileRepository "github.com/allisson/zkgate/internal/delegation/repository/file"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
	"github.com/allisson/zkgate/internal/dispatch"
	"github.com/allisson/zkgate/internal/http"
	"github.com/allisson/zkgate/internal/metrics"
)

// Supported record store drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverFile     = "file"
)

// dbConnectTimeout bounds the initial ping of the SQL pool, retried every dbPingInterval.
const (
	dbConnectTimeout = 10 * time.Second
	dbPingInterval   = 500 * time.Millisecond
)

// Container assembles the application. Every component is built on first access
// and shared afterwards; a component that failed to build keeps returning its error.
type Container struct {
	config *config.Config

	// ctx is cancelled by Shutdown and bounds background work such as limiter sweeps.
	ctx    context.Context
	cancel context.CancelFunc

	logger          lazy[*slog.Logger]
	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	recordFileStore         lazy[*fileRepository.RecordStore]
	recordRepository        lazy[delegationUseCase.RecordRepository]
	consumedProofRepository lazy[delegationUseCase.ConsumedProofRepository]

	commitmentService lazy[delegationService.CommitmentService]
	secretVault       lazy[delegationService.SecretVault]
	artifactStore     lazy[delegationService.ArtifactStore]
	proofService      lazy[*delegationService.ZoKratesProofService]
	tokenService      lazy[authService.TokenService]
	dispatcher        lazy[dispatch.Dispatcher]

	issuerUseCase  lazy[delegationUseCase.IssuerUseCase]
	gateUseCase    lazy[delegationUseCase.GateUseCase]
	executeUseCase lazy[delegationUseCase.ExecuteUseCase]
	proveUseCase   lazy[delegationUseCase.ProveUseCase]

	credentialHandler    lazy[*delegationHTTP.CredentialHandler]
	authorizationHandler lazy[*delegationHTTP.AuthorizationHandler]

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	shutdownMu sync.Mutex
}

// NewContainer creates a container for cfg. Nothing is built until requested.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger at the configured level.
func (c *Container) Logger() *slog.Logger {
	return c.logger.must(c.initLogger)
}

// DB returns the SQL pool. It fails for the file driver.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the unit-of-work manager; the file driver gets a no-op one.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(c.initTxManager)
}

// MetricsProvider returns the meter provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(c.initMetricsProvider)
}

// BusinessMetrics returns the delegation metrics recorder, a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(c.initBusinessMetrics)
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(c.initMetricsServer)
}

// Shutdown stops background work and releases every component that was built,
// servers first and the database last.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()

	c.cancel()

	var errs []error
	record := func(what string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
		}
	}

	if s, ok := c.httpServer.peek(); ok {
		record("http server shutdown", s.Shutdown(ctx))
	}
	if s, ok := c.metricsServer.peek(); ok && s != nil {
		record("metrics server shutdown", s.Shutdown(ctx))
	}
	if v, ok := c.secretVault.peek(); ok {
		record("secret vault close", v.Close())
	}
	if a, ok := c.artifactStore.peek(); ok {
		record("artifact store close", a.Close())
	}
	if p, ok := c.metricsProvider.peek(); ok && p != nil {
		record("metrics provider shutdown", p.Shutdown(ctx))
	}
	if db, ok := c.db.peek(); ok {
		record("database close", db.Close())
	}

	return errors.Join(errs...)
}

// isSQLDriver reports whether the configured record store is backed by database/sql.
func (c *Container) isSQLDriver() bool {
	return c.config.DBDriver == DriverPostgres || c.config.DBDriver == DriverMySQL
}

// initLogger writes JSON to stdout. Unknown levels fall back to info.
func (c *Container) initLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	if !c.isSQLDriver() {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	ctx, cancel := context.WithTimeout(c.ctx, dbConnectTimeout)
	defer cancel()

	db, err := database.Connect(ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		PingInterval:       dbPingInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager for the configured driver.
func (c *Container) initTxManager() (database.TxManager, error) {
	if c.config.DBDriver == DriverFile {
		return database.NewNoopTxManager(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the OpenTelemetry meter provider with a Prometheus exporter.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates business metrics on top of the meter provider.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the HTTP server and registers every route.
func (c *Container) initHTTPServer() (*http.Server, error) {
	credentialHandler, err := c.CredentialHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential handler for http server: %w", err)
	}

	authorizationHandler, err := c.AuthorizationHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	pinger, err := c.readinessPinger()
	if err != nil {
		return nil, fmt.Errorf("failed to get readiness pinger for http server: %w", err)
	}

	server := http.NewServer(pinger, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(
		c.ctx,
		c.config,
		credentialHandler,
		authorizationHandler,
		c.TokenService(),
		metricsProvider,
	)

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}

// readinessPinger returns the store the readiness endpoint pings.
func (c *Container) readinessPinger() (http.Pinger, error) {
	if c.config.DBDriver == DriverFile {
		return c.fileRecordStore(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	return db, nil
}
