package actions

import (
	"context"
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/report/history"
	"github.com/sirupsen/logrus"
)

// HistorySetup shows the results history target and, once confirmed,
// creates its database and runs the migrations. Safe to run repeatedly.
func HistorySetup(ctx context.Context, log logrus.FieldLogger, opts config.LoadOptions, isInteractive, skipConfirm bool) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	settings := cfg.Reporting.History
	printHistoryTarget("📋 History Setup:", settings)

	if !skipConfirm {
		if isInteractive {
			fmt.Printf("⚠️  You are about to create database %q and its tables if they don't exist.\n", settings.Database)
		}
		// Return here so the caller can handle confirmation
		return nil
	}

	fmt.Println("🔌 Testing ClickHouse connection...")

	if err := history.TestConnection(ctx, settings); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Println("✅ Connection successful!")
	fmt.Println("\n🔄 Running history migrations...")

	if err := history.Migrate(ctx, log, settings); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fmt.Println("\n🎉 History setup completed successfully!")

	if !settings.Enabled {
		fmt.Println("Set Reporting__History__Enabled=true to export runs.")
	}

	return nil
}

// HistoryStatus prints the applied migration version.
func HistoryStatus(opts config.LoadOptions) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	settings := cfg.Reporting.History
	printHistoryTarget("📋 History Status:", settings)

	version, dirty, err := history.Status(settings)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	if version == 0 {
		fmt.Println("No migrations applied.")

		return nil
	}

	fmt.Printf("Migration Version: %d\n", version)

	if dirty {
		fmt.Println("⚠️  The last migration failed and left the schema dirty.")
	}

	return nil
}

func printHistoryTarget(title string, settings config.HistorySettings) {
	fmt.Println("\n" + title)
	fmt.Println("======================")
	fmt.Printf("Enabled:         %t\n", settings.Enabled)
	fmt.Printf("ClickHouse Addr: %s\n", settings.Addr)
	fmt.Printf("Username:        %s\n", settings.Username)
	fmt.Printf("Database Name:   %s\n", settings.Database)
	fmt.Println()
}
