package cmd

import (
	"fmt"

	"github.com/ethpandaops/e2e-harness/internal/actions"
	"github.com/ethpandaops/e2e-harness/pkg/interactive"
	"github.com/spf13/cobra"
)

var (
	initDir   string
	initYes   bool
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold appsettings files for a new test project",
	Long: `Writes appsettings.json with every default setting and an environment overlay
appsettings.{Environment}.json holding the application URLs.

Without --yes the values are asked for interactively.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		answers := actions.DefaultInitAnswers()
		if environment != "" {
			answers.Environment = environment
		}

		if !initYes {
			answers = promptInitAnswers(answers)
		}

		return runInit(answers)
	},
}

func runInit(answers actions.InitAnswers) error {
	written, err := actions.Scaffold(initDir, answers, initForce)
	for _, path := range written {
		fmt.Printf("✅ Wrote %s\n", path)
	}

	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	return nil
}

func promptInitAnswers(def actions.InitAnswers) actions.InitAnswers {
	answers := def
	answers.Environment = interactive.Input("Environment name", def.Environment)
	answers.BaseURL = interactive.Input("Application base URL", def.BaseURL)
	answers.APIBaseURL = interactive.Input("API base URL", def.APIBaseURL)
	answers.Browser = interactive.Select("Browser", []string{"chromium", "firefox", "webkit"}, def.Browser)
	answers.Headless = interactive.Confirm("Run headless?", def.Headless)
	answers.TraceMode = interactive.Select("Keep traces", []string{"OnFailure", "Always", "Never"}, def.TraceMode)

	return answers
}

func init() {
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write the settings files to")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept the defaults without prompting")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing settings files")
	rootCmd.AddCommand(initCmd)
}
