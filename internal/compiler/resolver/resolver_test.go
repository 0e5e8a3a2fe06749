package resolver

import (
	"fmt"
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/parser"
)

func parseOrFatal(t *testing.T, src string) *ast.File {
	t.Helper()
	file, diags := parser.Parse(src, "main.ruchy")
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	return file
}

func TestResolveSimpleProgramHasNoDiagnostics(t *testing.T) {
	main := parseOrFatal(t, `fun add(a: int, b: int) -> int {
  return a + b
}

let total = add(1, 2)`)
	r := New(".", nil)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	if _, ok := prog.Funcs["add"]; !ok {
		t.Error("expected add to be registered")
	}
}

func TestResolveUnresolvedReferenceIsReported(t *testing.T) {
	main := parseOrFatal(t, `fun f() -> int {
  return unknownName
}`)
	r := New(".", nil)
	r.Resolve(main, "main.ruchy")
	if !r.Diagnostics().HasErrors() {
		t.Fatal("expected UnresolvedReference diagnostic")
	}
}

func TestResolveDuplicateFunctionDeclIsReported(t *testing.T) {
	main := parseOrFatal(t, `fun f() -> int { return 1 }
fun f() -> int { return 2 }`)
	r := New(".", nil)
	r.Resolve(main, "main.ruchy")
	if !r.Diagnostics().HasErrors() {
		t.Fatal("expected DuplicateDecl diagnostic")
	}
}

func TestResolveStructAndEnumRegistration(t *testing.T) {
	main := parseOrFatal(t, `struct Point {
  x: int,
  y: int,
}

enum Shape {
  Circle(float),
  Unit,
}`)
	r := New(".", nil)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	pointInfo, ok := prog.Types["Point"]
	if !ok || pointInfo.Struct == nil {
		t.Fatal("expected Point struct registered")
	}
	shapeInfo, ok := prog.Types["Shape"]
	if !ok || shapeInfo.Enum == nil {
		t.Fatal("expected Shape enum registered")
	}
}

func TestResolveMethodPrecedenceInherentBeatsTrait(t *testing.T) {
	main := parseOrFatal(t, `struct Point {
  x: int,
  y: int,
}

trait Describable {
  fun describe(self) -> string
}

impl Describable for Point {
  fun describe(self) -> string {
    return "trait"
  }
}

impl Point {
  fun describe(self) -> string {
    return "inherent"
  }
}`)
	r := New(".", nil)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	info := prog.Types["Point"]
	decl, ok := info.ResolveMethod("describe")
	if !ok {
		t.Fatal("expected describe to resolve")
	}
	body := decl.Body.Stmts[0].(*ast.ReturnStmt)
	lit := body.Value.(*ast.StringLit)
	if lit.Value != "inherent" {
		t.Errorf("expected inherent impl to win, got %q", lit.Value)
	}
}

func TestResolveSameTierMethodCollisionIsAmbiguous(t *testing.T) {
	main := parseOrFatal(t, `struct Point {
  x: int,
  y: int,
}

impl Point {
  fun describe(self) -> string {
    return "a"
  }
}

impl Point {
  fun describe(self) -> string {
    return "b"
  }
}`)
	r := New(".", nil)
	r.Resolve(main, "main.ruchy")
	if !r.Diagnostics().HasErrors() {
		t.Fatal("expected AmbiguousMethod diagnostic for two inherent impls of the same method")
	}
}

func TestResolveMethodSourceExplicitTraitNamedImport(t *testing.T) {
	main := parseOrFatal(t, `struct Point {
  x: int,
  y: int,
}

trait Describable {
  fun describe(self) -> string
}

impl Describable for Point {
  fun describe(self) -> string {
    return "trait"
  }
}`)
	r := New(".", nil)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	info := prog.Types["Point"]
	bindings := info.Methods["describe"]
	if len(bindings) != 1 || bindings[0].Source != SourceExplicitTrait {
		t.Fatalf("expected a single SourceExplicitTrait binding (no glob import in this file), got %+v", bindings)
	}
}

func TestResolveMethodSourceExtensionOnForeignType(t *testing.T) {
	main := parseOrFatal(t, `impl int {
  fun double(self) -> int {
    return self * 2
  }
}`)
	r := New(".", nil)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	info := prog.Types["int"]
	bindings := info.Methods["double"]
	if len(bindings) != 1 || bindings[0].Source != SourceExtension {
		t.Fatalf("expected a SourceExtension binding for an impl on a type this file doesn't declare, got %+v", bindings)
	}
}

func TestResolveMethodSourceGlobTraitLosesToExplicitTrait(t *testing.T) {
	traitSrc := `trait Describable {
  fun describe(self) -> string
}`
	loader := func(path string) (*ast.File, error) {
		if path == "trait.ruchy" {
			return parseOrFatal(t, traitSrc), nil
		}
		return nil, fmt.Errorf("no such module: %s", path)
	}
	main := parseOrFatal(t, `import * from "trait.ruchy"

struct Point {
  x: int,
  y: int,
}

impl Describable for Point {
  fun describe(self) -> string {
    return "glob"
  }
}

impl Point {
  fun describe(self) -> string {
    return "inherent"
  }
}`)
	r := New(".", loader)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	info := prog.Types["Point"]
	decl, ok := info.ResolveMethod("describe")
	if !ok {
		t.Fatal("expected describe to resolve")
	}
	body := decl.Body.Stmts[0].(*ast.ReturnStmt)
	lit := body.Value.(*ast.StringLit)
	if lit.Value != "inherent" {
		t.Errorf("expected inherent impl to beat the glob-imported trait impl, got %q", lit.Value)
	}
	var sawGlobTrait bool
	for _, b := range info.Methods["describe"] {
		if b.Source == SourceGlobTrait {
			sawGlobTrait = true
		}
	}
	if !sawGlobTrait {
		t.Error("expected the Describable impl (reached only via `import *`, never named directly) to be classified SourceGlobTrait")
	}
}

func TestResolveImportMergesDeclarations(t *testing.T) {
	mathSrc := `fun double(n: int) -> int {
  return n * 2
}`
	loader := func(path string) (*ast.File, error) {
		if path == "math.ruchy" {
			return parseOrFatal(t, mathSrc), nil
		}
		return nil, fmt.Errorf("no such module: %s", path)
	}
	main := parseOrFatal(t, `import { double } from "math.ruchy"

let result = double(21)`)
	r := New(".", loader)
	prog := r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
	if _, ok := prog.Funcs["double"]; !ok {
		t.Error("expected double to be merged in from the imported module")
	}
}

func TestResolveImportCycleIsDetected(t *testing.T) {
	aSrc := `import * from "b.ruchy"`
	loader := func(path string) (*ast.File, error) {
		switch path {
		case "a.ruchy":
			return parseOrFatal(t, aSrc), nil
		case "b.ruchy":
			return parseOrFatal(t, `import * from "a.ruchy"`), nil
		}
		return nil, fmt.Errorf("no such module: %s", path)
	}
	main := parseOrFatal(t, `import * from "a.ruchy"`)
	r := New(".", loader)
	r.Resolve(main, "main.ruchy")
	if !r.Diagnostics().HasErrors() {
		t.Fatal("expected CyclicImport diagnostic")
	}
}

func TestResolveActorHandlerScopeSeesFields(t *testing.T) {
	main := parseOrFatal(t, `actor Counter {
  count: int

  fun increment(self) {
    count = count + 1
  }
}`)
	r := New(".", nil)
	r.Resolve(main, "main.ruchy")
	if r.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics())
	}
}
