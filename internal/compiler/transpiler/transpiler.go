// Package transpiler emits target-language source text from the typed core
// AST (spec §4.7). Grounded on the teacher's script.Transpiler: a
// strings.Builder buffer, an indent counter, emit/emitIndent/emitLineComment
// helpers, and a SourceMap of generated-line -> original-line entries —
// generalized from "GMX script -> Go" to "core AST -> {rust, go}".
package transpiler

import (
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
)

// SourceMap tracks generated-line -> original-line mappings, unchanged in
// shape from the teacher's SourceMapEntry list.
type SourceMap struct {
	Entries []SourceMapEntry
}

type SourceMapEntry struct {
	GenLine int
	SrcLine int
}

// Options mirrors spec §6 "Transpiler options".
type Options struct {
	TargetLanguage    string // "rust" (default) | "go"
	OptimizationLevel string // "Debug" | "Release"
	PreserveSourceMap bool
	LintLevel         string // "Allow" | "Warn" | "Deny"
}

// Result is the transpiler's output: generated source text plus a source
// map. The rust target returns a SourceMap with no entries and the go target
// returns none; Options.PreserveSourceMap is not read by either target.
type Result struct {
	Code      string
	SourceMap *SourceMap
}

// Transpile is a pure function of (mod, opts): identical input always
// produces byte-identical output (spec §4.7 "Contracts").
func Transpile(mod *ast.CModule, opts Options) (*Result, error) {
	switch opts.TargetLanguage {
	case "", "rust":
		return transpileRust(mod, opts)
	case "go":
		return transpileGo(mod, opts)
	default:
		return nil, fmt.Errorf("transpiler: unsupported target language %q", opts.TargetLanguage)
	}
}
