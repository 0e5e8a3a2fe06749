package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
	"github.com/ruchy-lang/ruchy/internal/compiler/telemetry"
)

// cmdStats reports recent compile sessions and the rolling failure rate
// from a telemetry database, grounded on the teacher's db.AutoMigrate +
// gorm query usage in examples/main.go.
func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	limit := fs.Int("n", 10, "number of recent sessions to show")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ruchyc stats [-n count] <telemetry.db>\n")
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(driver.ExitUserError)
	}

	store, err := telemetry.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening telemetry database: %v\n", err)
		os.Exit(driver.ExitInternalError)
	}
	defer store.Close()

	sessions, err := store.Recent(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading sessions: %v\n", err)
		os.Exit(driver.ExitInternalError)
	}

	rate, err := store.FailureRate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing failure rate: %v\n", err)
		os.Exit(driver.ExitInternalError)
	}

	fmt.Printf("failure rate: %.2f%%\n\n", rate*100)
	fmt.Printf("%-24s %-10s %8s %6s %6s\n", "SOURCE", "STAGE", "DUR(ms)", "DIAGS", "EXIT")
	for _, s := range sessions {
		fmt.Printf("%-24s %-10s %8d %6d %6d\n", s.SourceFile, s.Stage, s.DurationMS, s.DiagnosticCnt, s.ExitCode)
	}
}
