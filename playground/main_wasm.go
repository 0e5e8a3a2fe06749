//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
	"github.com/ruchy-lang/ruchy/internal/compiler/transpiler"
)

func main() {
	js.Global().Set("ruchyRun", js.FuncOf(runWrapper))
	js.Global().Set("ruchyTranspile", js.FuncOf(transpileWrapper))

	select {}
}

// runWrapper wraps evaluation with panic recovery, since a WASM panic would
// otherwise tear down the whole page's JS runtime.
func runWrapper(this js.Value, args []js.Value) interface{} {
	var result map[string]interface{}

	defer func() {
		if r := recover(); r != nil {
			result = map[string]interface{}{"output": "", "errors": []interface{}{fmt.Sprintf("panic: %v", r)}}
		}
	}()

	if len(args) != 1 {
		return js.ValueOf(map[string]interface{}{"output": "", "errors": []interface{}{"expected 1 argument (source code)"}})
	}

	output, errs := run(args[0].String())
	result = map[string]interface{}{"output": output, "errors": toJSErrors(errs)}
	return js.ValueOf(result)
}

// transpileWrapper mirrors runWrapper for the transpile-to-target-language path.
func transpileWrapper(this js.Value, args []js.Value) interface{} {
	var result map[string]interface{}

	defer func() {
		if r := recover(); r != nil {
			result = map[string]interface{}{"code": "", "errors": []interface{}{fmt.Sprintf("panic: %v", r)}}
		}
	}()

	if len(args) != 2 {
		return js.ValueOf(map[string]interface{}{"code": "", "errors": []interface{}{"expected 2 arguments (source code, target language)"}})
	}

	code, errs := transpileSource(args[0].String(), args[1].String())
	result = map[string]interface{}{"code": code, "errors": toJSErrors(errs)}
	return js.ValueOf(result)
}

// run parses, resolves, infers, and evaluates source against a fresh
// interpreter — no cache or telemetry store attached in the playground, only
// a one-shot in-browser pipeline run (no multi-file import support, since
// the playground has no filesystem to resolve imports against).
func run(source string) (string, []string) {
	d := &driver.Driver{}
	p := d.Run(source, "playground.ruchy")
	if p.ExitCode != driver.ExitSuccess {
		return "", diagnosticStrings(p)
	}

	result, err := driver.Evaluate(context.Background(), p.Module, driver.ResourceLimits{MaxSteps: 1_000_000})
	if err != nil {
		return "", []string{err.Error()}
	}
	return result.String(), nil
}

func transpileSource(source, target string) (string, []string) {
	d := &driver.Driver{}
	p := d.Run(source, "playground.ruchy")
	if p.ExitCode != driver.ExitSuccess {
		return "", diagnosticStrings(p)
	}

	out, err := driver.Transpile(p.Module, transpiler.Options{TargetLanguage: target})
	if err != nil {
		return "", []string{err.Error()}
	}
	return out.Code, nil
}

func diagnosticStrings(p *driver.Pipeline) []string {
	msgs := make([]string, 0, len(p.Diagnostics.Items))
	for _, d := range p.Diagnostics.Items {
		msgs = append(msgs, d.Error())
	}
	return msgs
}

func toJSErrors(errs []string) []interface{} {
	out := make([]interface{}, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
