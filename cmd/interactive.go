package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/pkg/interactive"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch interactive TUI mode",
	Long:  `Launches the interactive Terminal User Interface for E2E Harness.`,
	Run: func(_ *cobra.Command, _ []string) {
		RunInteractive()
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// RunInteractive shows the main menu until the user exits.
func RunInteractive() {
	fmt.Println("E2E Harness - Interactive Mode")
	fmt.Println("==============================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "📋 Show Config",
				Description: "Display the merged test settings",
				Action: func() error {
					printError(actions.ShowConfig(LoadOptions()))
					interactive.PauseForEnter()

					return nil
				},
			},
			{
				Name:        "📊 Last Run",
				Description: "Summarise the last test run",
				Action: func() error {
					path := filepath.Join(config.ReportsDir, config.MetricsFile)
					printError(actions.Summary(Logger, path, os.Stdout))
					interactive.PauseForEnter()

					return nil
				},
			},
			{
				Name:        "🛠️  Project Setup",
				Description: "Scaffold settings and install browsers",
				Action:      showSetupMenu,
			},
			{
				Name:        "🗄️  Results History",
				Description: "Set up or inspect the ClickHouse results history",
				Action:      showHistoryMenu,
			},
			{
				Name:        "🧹 Clean Results",
				Description: "Delete the artifacts of previous runs (destructive)",
				Action: func() error {
					if err := actions.Clean(config.ResultsDir, true, false); err != nil {
						printError(err)
						interactive.PauseForEnter()

						return nil
					}

					if !interactive.Confirm("⚠️  Are you SURE you want to delete every artifact? This cannot be undone!", false) {
						fmt.Println("Clean canceled.")
						interactive.PauseForEnter()

						return nil
					}

					printError(actions.Clean(config.ResultsDir, true, true))
					interactive.PauseForEnter()

					return nil
				},
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")

				return
			}

			log.Fatal(err)
		}

		fmt.Println()
	}
}

func showSetupMenu() error {
	for {
		options := []interactive.MenuOption{
			{
				Name:        "Init",
				Description: "Write appsettings.json and an environment overlay",
				Action: func() error {
					answers := promptInitAnswers(actions.DefaultInitAnswers())
					printError(runInit(answers))
					interactive.PauseForEnter()

					return nil
				},
			},
			{
				Name:        "Install Browsers",
				Description: "Download the browser driver and browsers",
				Action: func() error {
					choice := interactive.Select("Browsers", []string{"default", "chromium", "firefox", "webkit"}, "default")

					var browsers []string
					if choice != "default" {
						browsers = []string{choice}
					}

					printError(actions.Install(Logger, browsers))
					interactive.PauseForEnter()

					return nil
				},
			},
		}

		fmt.Println("\n🛠️  Project Setup")
		fmt.Println("================")

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				return nil // Return to main menu
			}

			return err
		}
	}
}

func showHistoryMenu() error {
	ctx := context.Background()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "Setup",
				Description: "Create the history database and run migrations (safe to run multiple times)",
				Action: func() error {
					if err := actions.HistorySetup(ctx, Logger, LoadOptions(), true, false); err != nil {
						printError(err)
						interactive.PauseForEnter()

						return nil
					}

					if !interactive.Confirm("Do you want to proceed with the setup?", false) {
						fmt.Println("Setup canceled.")
						interactive.PauseForEnter()

						return nil
					}

					printError(actions.HistorySetup(ctx, Logger, LoadOptions(), true, true))
					interactive.PauseForEnter()

					return nil
				},
			},
			{
				Name:        "Status",
				Description: "Show the applied migration version",
				Action: func() error {
					printError(actions.HistoryStatus(LoadOptions()))
					interactive.PauseForEnter()

					return nil
				},
			},
		}

		fmt.Println("\n🗄️  Results History")
		fmt.Println("==================")

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				return nil // Return to main menu
			}

			return err
		}
	}
}

// printError shows err without leaving the menu.
func printError(err error) {
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
	}
}
