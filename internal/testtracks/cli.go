package testtracks

import (
	"fmt"
	"os"

	"github.com/okian/cascade/pkg/logger"
)

// SetupLogging initializes the global logger for the generator tool.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the fixture generator.
func ShowHelp() {
	os.Stdout.WriteString(`Cascade Fixture Generator
=========================

Generates synthetic admission lists in the published CSV layout together with
a config.yaml the cascade service can run against.

Usage:
  go run ./cmd/gen-tracks [options]

Options:
  -applicants int
        Number of distinct applicants (default 500)
  -tracks int
        Number of tracks (default 5)
  -choices int
        Most tracks one applicant applies to (default 3)
  -min-cap int
        Smallest seat budget (default 10)
  -max-cap int
        Largest seat budget (default 60)
  -withdraw float
        Share of records with a withdrawal marker (default 0.03)
  -seed uint
        Generator seed (default 1)
  -out string
        Output directory (default "fixtures")
  -cp1251
        Write files in Windows-1251
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/gen-tracks -applicants 20000 -tracks 12 -out /tmp/lists
  CASCADE_CONFIG=/tmp/lists/config.yaml go run ./cmd
`)
}
