package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
)

func cmdParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ruchyc parse <input.ruchy>\n")
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

	file, diags := driver.Parse(string(data), path)
	for _, d := range diags.Items {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if diags.HasErrors() {
		os.Exit(driver.ExitUserError)
	}
	fmt.Printf("parsed %d top-level declarations\n", len(file.Decls))
}
