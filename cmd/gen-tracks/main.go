package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/cascade/internal/testtracks"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	def := testtracks.DefaultConfig()
	var (
		applicants = flag.Int("applicants", def.Applicants, "Number of distinct applicants")
		tracks     = flag.Int("tracks", def.Tracks, "Number of tracks")
		choices    = flag.Int("choices", def.MaxChoices, "Most tracks one applicant applies to")
		minCap     = flag.Int("min-cap", def.MinCapacity, "Smallest seat budget")
		maxCap     = flag.Int("max-cap", def.MaxCapacity, "Largest seat budget")
		withdraw   = flag.Float64("withdraw", def.WithdrawRate, "Share of records with a withdrawal marker")
		seed       = flag.Uint64("seed", def.Seed, "Generator seed")
		out        = flag.String("out", def.OutDir, "Output directory")
		cp1251     = flag.Bool("cp1251", false, "Write files in Windows-1251")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testtracks.ShowHelp()
		return
	}

	if err := testtracks.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := testtracks.Config{
		Applicants:   *applicants,
		Tracks:       *tracks,
		MaxChoices:   *choices,
		MinCapacity:  *minCap,
		MaxCapacity:  *maxCap,
		WithdrawRate: *withdraw,
		Seed:         *seed,
		OutDir:       *out,
		Encoding:     testtracks.EncodingUTF8,
		Verbose:      *verbose,
	}
	if *cp1251 {
		cfg.Encoding = testtracks.EncodingWindows1251
	}

	if err := testtracks.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
