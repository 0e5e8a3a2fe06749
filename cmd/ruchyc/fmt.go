package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
)

// cmdFmt re-indents source files in place, grounded on the teacher's
// `gmx fmt` (line-oriented, regex-driven section reformatting with a `-d`
// diff flag) generalized from GMX's `<script>`/`<template>`/`<style>`
// section tags to brace-depth tracking over a single source file.
func cmdFmt(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	diff := fs.Bool("d", false, "print the formatted source instead of writing it")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ruchyc fmt [-d] <files...>\n")
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(driver.ExitUserError)
	}

	exitCode := driver.ExitSuccess
	for _, file := range fs.Args() {
		if err := fmtFile(file, *diff); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", file, err)
			exitCode = driver.ExitInternalError
		}
	}
	os.Exit(exitCode)
}

func fmtFile(path string, showDiff bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	original := string(data)
	formatted := reindent(original)

	if showDiff {
		if formatted == original {
			return nil
		}
		fmt.Printf("--- %s\n+++ %s (formatted)\n", path, path)
		fmt.Println(formatted)
		return nil
	}
	if formatted == original {
		return nil
	}
	return os.WriteFile(path, []byte(formatted), 0o644)
}

// reindent rewrites indentation to one tab per brace-nesting level. It
// tracks string/char literals so braces inside them don't perturb depth,
// but otherwise makes no syntactic judgment; it is not an AST
// pretty-printer.
func reindent(src string) string {
	lines := strings.Split(src, "\n")
	var out strings.Builder
	depth := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lineDepth := depth
		if strings.HasPrefix(trimmed, "}") {
			lineDepth--
		}
		if lineDepth < 0 {
			lineDepth = 0
		}
		if trimmed != "" {
			out.WriteString(strings.Repeat("\t", lineDepth))
			out.WriteString(trimmed)
		}
		if i < len(lines)-1 {
			out.WriteString("\n")
		}
		depth += netBraceDelta(trimmed)
		if depth < 0 {
			depth = 0
		}
	}
	return out.String()
}

// netBraceDelta counts unmatched `{`/`}` on a line outside of string/char
// literals, skipping escaped quotes.
func netBraceDelta(line string) int {
	delta := 0
	inString := false
	inChar := false
	escaped := false
	for _, r := range line {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString:
			if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
		case inChar:
			if r == '\\' {
				escaped = true
			} else if r == '\'' {
				inChar = false
			}
		case r == '"':
			inString = true
		case r == '\'':
			inChar = true
		case r == '{':
			delta++
		case r == '}':
			delta--
		}
	}
	return delta
}
