// Package driver orchestrates the five-stage pipeline (spec §6 "Driver
// API"): parse -> normalize -> resolve -> infer -> {evaluate, transpile}.
// Grounded on the teacher's cmd/gmx pipeline (parse a file, resolve its
// imports, generate output, report errors) generalized from "GMX file to Go
// source" into the full contract spec §6 specifies. RunAndEvaluate records
// one telemetry session when a store is attached; the Cache field is carried
// on Driver but no stage reads from or writes to it.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/cache"
	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/infer"
	"github.com/ruchy-lang/ruchy/internal/compiler/interp"
	"github.com/ruchy-lang/ruchy/internal/compiler/normalizer"
	"github.com/ruchy-lang/ruchy/internal/compiler/parser"
	"github.com/ruchy-lang/ruchy/internal/compiler/resolver"
	"github.com/ruchy-lang/ruchy/internal/compiler/telemetry"
	"github.com/ruchy-lang/ruchy/internal/compiler/transpiler"
	"github.com/ruchy-lang/ruchy/internal/compiler/value"
)

// Exit codes (spec §6 "Exit codes").
const (
	ExitSuccess         = 0
	ExitUserError       = 1
	ExitInternalError   = 2
	ExitResourceExhaust = 3
)

// ResourceLimits bounds interpreter execution (spec §5 "Resource limits").
type ResourceLimits struct {
	MaxSteps int
}

// Driver holds the optional cache/telemetry stores a host may attach; both
// are nil-safe, so a bare `&Driver{}` works for one-shot CLI invocations.
type Driver struct {
	Cache     *cache.Store
	Telemetry *telemetry.Store
	FileLoad  resolver.FileLoader
}

// Pipeline is every stage's output, returned in full so callers (REPL, LSP,
// tests) can inspect any intermediate artifact without re-running stages.
type Pipeline struct {
	File        *ast.File
	Module      *ast.CModule
	Program     *resolver.Program
	Inferencer  *infer.Inferencer
	Diagnostics *errors.List
	ExitCode    int
}

// Parse implements the Driver API's `parse` contract.
func Parse(source, file string) (*ast.File, *errors.List) {
	return parser.Parse(source, file)
}

// Normalize implements the Driver API's `normalize` contract.
func Normalize(f *ast.File) (*ast.CModule, *errors.List) {
	return normalizer.Normalize(f)
}

// Resolve implements the Driver API's `resolve` contract, returning the
// bound Program plus any diagnostics accumulated while binding it.
func (d *Driver) Resolve(f *ast.File, path string) (*resolver.Program, *errors.List) {
	r := resolver.New(pathDir(path), d.FileLoad)
	prog := r.Resolve(f, path)
	return prog, r.Diagnostics()
}

// Infer implements the Driver API's `infer` contract.
func Infer(mod *ast.CModule, prog *resolver.Program) (*infer.Inferencer, *errors.List) {
	return infer.Infer(mod, prog)
}

// Evaluate implements the Driver API's `evaluate` contract: load the module
// into a fresh interpreter and run its `main` entry point.
func Evaluate(ctx context.Context, mod *ast.CModule, limits ResourceLimits) (value.Value, error) {
	it := interp.New(interp.Limits{MaxSteps: limits.MaxSteps})
	if err := it.Load(mod); err != nil {
		return nil, err
	}
	return it.Run(ctx, "main")
}

// Transpile implements the Driver API's `transpile` contract.
func Transpile(mod *ast.CModule, opts transpiler.Options) (*transpiler.Result, error) {
	return transpiler.Transpile(mod, opts)
}

// Run executes the full pipeline through inference, stopping short of
// evaluation/transpilation — the shape the infer, run and transpile
// subcommands share before branching on their final stage.
func (d *Driver) Run(source, file string) *Pipeline {
	p := &Pipeline{Diagnostics: errors.NewList()}

	astFile, diags := Parse(source, file)
	p.File = astFile
	p.Diagnostics.Extend(diags)
	if diags.HasErrors() {
		p.ExitCode = ExitUserError
		return p
	}

	mod, diags := Normalize(astFile)
	p.Module = mod
	p.Diagnostics.Extend(diags)
	if diags.HasErrors() {
		p.ExitCode = ExitUserError
		return p
	}

	prog, resolveDiags := d.Resolve(astFile, file)
	p.Program = prog
	p.Diagnostics.Extend(resolveDiags)
	if resolveDiags.HasErrors() {
		p.ExitCode = ExitUserError
		return p
	}

	inf, diags := Infer(mod, prog)
	p.Inferencer = inf
	p.Diagnostics.Extend(diags)
	if diags.HasErrors() {
		p.ExitCode = ExitUserError
		return p
	}

	p.ExitCode = ExitSuccess
	return p
}

func pathDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// RunAndEvaluate runs the pipeline and, on success, evaluates it, recording
// telemetry when a Store is attached (spec §6 "Persistence").
func (d *Driver) RunAndEvaluate(ctx context.Context, source, file string, limits ResourceLimits) (value.Value, *Pipeline, error) {
	start := time.Now()
	p := d.Run(source, file)
	if p.ExitCode != ExitSuccess {
		d.recordSession(file, source, "infer", p, start, ExitUserError)
		return nil, p, fmt.Errorf("compilation failed: %s", p.Diagnostics.String())
	}

	result, err := Evaluate(ctx, p.Module, limits)
	exitCode := ExitSuccess
	if err != nil {
		exitCode = ExitInternalError
	}
	d.recordSession(file, source, "evaluate", p, start, exitCode)
	return result, p, err
}

func (d *Driver) recordSession(file, source, stage string, p *Pipeline, start time.Time, exitCode int) {
	if d.Telemetry == nil {
		return
	}
	errCnt := 0
	for _, item := range p.Diagnostics.Items {
		if item.Severity == errors.SeverityError {
			errCnt++
		}
	}
	_ = d.Telemetry.Record(&telemetry.Session{
		SourceFile:    file,
		SourceHash:    cache.Hash([]byte(source)),
		Stage:         stage,
		DiagnosticCnt: len(p.Diagnostics.Items),
		ErrorCnt:      errCnt,
		DurationMS:    time.Since(start).Milliseconds(),
		ExitCode:      exitCode,
		StartedAt:     start,
	})
}
