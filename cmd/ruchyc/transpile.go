package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
	"github.com/ruchy-lang/ruchy/internal/compiler/transpiler"
)

func cmdTranspile(args []string) {
	fs := flag.NewFlagSet("transpile", flag.ExitOnError)
	target := fs.String("target", "rust", "target language: rust|go")
	outputFile := fs.String("o", "", "output file path (default: stdout)")
	sourceMap := fs.Bool("source-map", false, "preserve source-location comments")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ruchyc transpile [-target rust|go] [-o output] [-source-map] <input.ruchy>\n")
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
	pipeline := d.Run(string(data), path)
	if pipeline.ExitCode != driver.ExitSuccess {
		for _, diag := range pipeline.Diagnostics.Items {
			fmt.Fprintln(os.Stderr, diag.Error())
		}
		os.Exit(pipeline.ExitCode)
	}

	result, err := driver.Transpile(pipeline.Module, transpiler.Options{
		TargetLanguage:    *target,
		PreserveSourceMap: *sourceMap,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ruchyc transpile: %v\n", err)
		os.Exit(driver.ExitInternalError)
	}

	if *outputFile == "" {
		fmt.Print(result.Code)
		return
	}
	if dir := filepath.Dir(*outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(driver.ExitInternalError)
		}
	}
	if err := os.WriteFile(*outputFile, []byte(result.Code), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outputFile, err)
		os.Exit(driver.ExitInternalError)
	}
	fmt.Printf("Generated %s successfully\n", *outputFile)
}
