// Package history stores test results in ClickHouse so runs can be compared
// over time.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ethpandaops/e2e-harness/internal/config"
)

var errDatabaseRequired = errors.New("history database name is required")

// Connect opens a native-protocol connection to the server in settings using
// the default database, so the history database can be created first.
func Connect(ctx context.Context, settings config.HistorySettings) (driver.Conn, error) {
	return open(ctx, settings, "default")
}

func open(ctx context.Context, settings config.HistorySettings, database string) (driver.Conn, error) {
	options := &clickhouse.Options{
		Addr: []string{settings.Addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: settings.Username,
			Password: settings.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     time.Second * 30,
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Duration(10) * time.Minute,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to ping ClickHouse at %s: %w", settings.Addr, err)
	}

	return conn, nil
}

// CreateDatabase creates the history database if it doesn't exist
func CreateDatabase(ctx context.Context, conn driver.Conn, dbName string) error {
	if dbName == "" {
		return errDatabaseRequired
	}

	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)
	if err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}

// TestConnection tests if we can connect to ClickHouse
func TestConnection(ctx context.Context, settings config.HistorySettings) error {
	conn, err := Connect(ctx, settings)
	if err != nil {
		return err
	}

	return conn.Close()
}
