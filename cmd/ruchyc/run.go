package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
	cerrors "github.com/ruchy-lang/ruchy/internal/compiler/errors"
)

// cmdRun evaluates a source file in-process with the tree-walking
// interpreter. Grounded on the teacher's `gmx run` (build to a temp binary,
// exec it, forward SIGINT/SIGTERM to the child) generalized from
// process-level signal forwarding to context cancellation, since the
// interpreter checks ctx.Done() at loop headers and call sites instead of
// running as a separate OS process.
func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	maxSteps := fs.Int("max-steps", 0, "abort after this many evaluation steps (0 = unlimited)")
	telemetryDB := fs.String("telemetry", "", "sqlite path to record a compile-session row")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ruchyc run [-max-steps N] [-telemetry path.db] <input.ruchy>\n")
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(driver.ExitUserError)
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(driver.ExitInternalError)
	}

	d := &driver.Driver{}
	if *telemetryDB != "" {
		store, err := openTelemetry(*telemetryDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening telemetry database: %v\n", err)
			os.Exit(driver.ExitInternalError)
		}
		defer store.Close()
		d.Telemetry = store
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, pipeline, err := d.RunAndEvaluate(ctx, string(data), path, driver.ResourceLimits{MaxSteps: *maxSteps})
	if err != nil {
		for _, diag := range pipeline.Diagnostics.Items {
			fmt.Fprintln(os.Stderr, diag.Error())
		}
		fmt.Fprintf(os.Stderr, "ruchyc run: %v\n", err)
		var rerr *cerrors.RuntimeError
		if stderrors.As(err, &rerr) && rerr.Kind == cerrors.ResourceExhausted {
			os.Exit(driver.ExitResourceExhaust)
		}
		if ctx.Err() != nil {
			os.Exit(driver.ExitResourceExhaust)
		}
		os.Exit(driver.ExitInternalError)
	}

	fmt.Println(result.String())
}
