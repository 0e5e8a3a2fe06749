// Command ruchyc is the standalone compiler/interpreter CLI (spec §6
// "invoked as a standalone tool"), grounded on the teacher's cmd/gmx:
// `flag.NewFlagSet`-per-subcommand dispatch, no CLI framework (DESIGN.md
// "spf13/cobra — never adopted").
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "parse":
		cmdParse(args)
	case "infer":
		cmdInfer(args)
	case "run":
		cmdRun(args)
	case "transpile":
		cmdTranspile(args)
	case "fmt":
		cmdFmt(args)
	case "stats":
		cmdStats(args)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "ruchyc: unknown subcommand %q\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ruchyc <subcommand> [flags] <args...>

Subcommands:
  parse      print the surface AST diagnostics for a source file
  infer      run the pipeline through type inference and report diagnostics
  run        evaluate a source file with the tree-walking interpreter
  transpile  emit target-language source text (-target rust|go)
  fmt        re-indent one or more source files in place
  stats      summarize recorded compile sessions from a telemetry database

`)
}
