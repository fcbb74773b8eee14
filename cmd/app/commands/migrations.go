package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/zkgate/internal/app"
)

// migrationSources maps SQL record store drivers to their migration directories,
// relative to the working directory.
var migrationSources = map[string]string{
	app.DriverPostgres: "file://migrations/postgresql",
	app.DriverMySQL:    "file://migrations/mysql",
}

// RunMigrations applies every pending migration for the delegation_records and
// consumed_proofs tables. The file driver keeps no schema.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string) error {
	if dbDriver == app.DriverFile {
		logger.Info("file record store needs no migrations")
		return nil
	}

	source, ok := migrationSources[dbDriver]
	if !ok {
		return fmt.Errorf("unsupported database driver: %s", dbDriver)
	}

	logger.Info("running database migrations", slog.String("driver", dbDriver), slog.String("source", source))

	m, err := migrate.New(source, dbConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("migrations completed", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}
