package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
)

func cmdInfer(args []string) {
	fs := flag.NewFlagSet("infer", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ruchyc infer <input.ruchy>\n")
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
	for _, diag := range pipeline.Diagnostics.Items {
		fmt.Fprintln(os.Stderr, diag.Error())
	}
	os.Exit(pipeline.ExitCode)
}
