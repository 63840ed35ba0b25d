package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse" // clickhouse driver for migrations
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationFiles returns the embedded schema migrations.
func MigrationFiles() embed.FS {
	return migrationFiles
}

// Migrate creates the history database if needed and applies every pending
// migration.
func Migrate(ctx context.Context, log logrus.FieldLogger, settings config.HistorySettings) error {
	log = log.WithField("component", "history_migrations")

	conn, err := Connect(ctx, settings)
	if err != nil {
		return err
	}

	if err := CreateDatabase(ctx, conn, settings.Database); err != nil {
		_ = conn.Close()

		return err
	}

	if err := conn.Close(); err != nil {
		log.WithError(err).Warn("failed to close connection")
	}

	m, err := newMigrate(settings)
	if err != nil {
		return err
	}

	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithError(errors.Join(srcErr, dbErr)).Warn("failed to close migration instance")
		}
	}()

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", upErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		log.Info("no new migrations to apply")

		return nil
	}

	version, dirty, vErr := m.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", vErr)
	}

	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migrations applied")

	return nil
}

// Status returns the current migration version and dirty state. A database
// without migrations reports version 0.
func Status(settings config.HistorySettings) (version uint, dirty bool, err error) {
	m, err := newMigrate(settings)
	if err != nil {
		return 0, false, err
	}

	defer func() {
		_, _ = m.Close()
	}()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	return version, dirty, nil
}

func newMigrate(settings config.HistorySettings) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, ConnectionString(settings))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

// ConnectionString builds the golang-migrate ClickHouse DSN.
func ConnectionString(settings config.HistorySettings) string {
	query := url.Values{}
	query.Set("username", settings.Username)
	query.Set("database", settings.Database)
	query.Set("x-multi-statement", "true")
	query.Set("x-migrations-table-engine", "MergeTree")

	if settings.Password != "" {
		query.Set("password", settings.Password)
	}

	dsn := url.URL{
		Scheme:   "clickhouse",
		Host:     settings.Addr,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}
