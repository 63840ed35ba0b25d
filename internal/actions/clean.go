package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethpandaops/e2e-harness/internal/format"
	"github.com/fatih/color"
)

// ErrUnsafeResultsDir is returned when the results directory would resolve to
// the working directory, a filesystem root or the home directory.
var ErrUnsafeResultsDir = errors.New("refusing to delete results directory - operation blocked for safety")

// ResultsUsage describes what a results directory holds.
type ResultsUsage struct {
	Files int
	Bytes int64
}

// Clean shows what the results directory holds and, once confirmed, deletes
// it.
func Clean(dir string, isInteractive, skipConfirm bool) error {
	if err := validateResultsDir(dir); err != nil {
		return err
	}

	usage, err := Usage(dir)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Nothing to clean, %s does not exist.\n", dir)

		return nil
	}

	if err != nil {
		return err
	}

	fmt.Println("\n🧹 Clean Results:")
	fmt.Println("=================")
	fmt.Printf("Directory: %s\n", dir)
	fmt.Printf("Files:     %d\n", usage.Files)
	fmt.Printf("Size:      %s\n", format.Bytes(usage.Bytes))
	fmt.Println()

	if !skipConfirm {
		if isInteractive {
			color.Yellow("⚠️  This deletes every report, video, trace, log and screenshot under %s", dir)
		}
		// Return here so the caller can handle confirmation
		return nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete %s: %w", dir, err)
	}

	color.Green("✅ Deleted %d files (%s)", usage.Files, format.Bytes(usage.Bytes))

	return nil
}

// Usage counts the regular files under dir.
func Usage(dir string) (ResultsUsage, error) {
	var usage ResultsUsage

	if _, err := os.Stat(dir); err != nil {
		return usage, err
	}

	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		usage.Files++
		usage.Bytes += info.Size()

		return nil
	})
	if err != nil {
		return usage, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	return usage, nil
}

func validateResultsDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	if dir == "" || abs == filepath.Dir(abs) {
		return fmt.Errorf("%w: %q", ErrUnsafeResultsDir, dir)
	}

	if wd, err := os.Getwd(); err == nil && abs == wd {
		return fmt.Errorf("%w: %q is the working directory", ErrUnsafeResultsDir, dir)
	}

	if home, err := os.UserHomeDir(); err == nil && abs == filepath.Clean(home) {
		return fmt.Errorf("%w: %q is the home directory", ErrUnsafeResultsDir, dir)
	}

	return nil
}
