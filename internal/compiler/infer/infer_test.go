package infer

import (
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/normalizer"
	"github.com/ruchy-lang/ruchy/internal/compiler/parser"
	"github.com/ruchy-lang/ruchy/internal/compiler/types"
)

func infer(t *testing.T, src string) (*Inferencer, *ast.CModule) {
	t.Helper()
	file, diags := parser.Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	mod, ndiags := normalizer.Normalize(file)
	if ndiags.HasErrors() {
		t.Fatalf("normalize errors: %v", ndiags)
	}
	inf, idiags := Infer(mod, nil)
	if idiags.HasErrors() {
		t.Fatalf("infer errors: %v", idiags)
	}
	return inf, mod
}

func TestInferSuffixedIntLiteralIsConcrete(t *testing.T) {
	inf, mod := infer(t, `let x = 5i64`)
	got := inf.TypeOf(mod.Globals[0].Value)
	if got.Kind != types.KPrimitive || got.Name != types.I64 {
		t.Errorf("expected concrete i64, got %s", got)
	}
}

func TestInferUnsuffixedIntLiteralIsFreshVar(t *testing.T) {
	inf, mod := infer(t, `let x = 5`)
	got := inf.TypeOf(mod.Globals[0].Value)
	if got.Kind != types.KVar {
		t.Errorf("expected unresolved fresh type variable for unsuffixed literal, got %s", got)
	}
}

func TestInferBoolAndStringLiterals(t *testing.T) {
	inf, mod := infer(t, `let a = true
let b = "hi"`)
	at := inf.TypeOf(mod.Globals[0].Value)
	if at.Kind != types.KPrimitive || at.Name != types.Bool {
		t.Errorf("expected bool, got %s", at)
	}
	bt := inf.TypeOf(mod.Globals[1].Value)
	if bt.Kind != types.KPrimitive || bt.Name != types.Str {
		t.Errorf("expected string, got %s", bt)
	}
}

func TestInferMismatchReportsDiagnosticInsteadOfPanicking(t *testing.T) {
	src := `fun f() -> int {
  if true {
    return 1
  } else {
    return "no"
  }
}`
	file, diags := parser.Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	mod, ndiags := normalizer.Normalize(file)
	if ndiags.HasErrors() {
		t.Fatalf("normalize errors: %v", ndiags)
	}
	_, idiags := Infer(mod, nil)
	if !idiags.HasErrors() {
		t.Fatal("expected a TypeMismatch diagnostic for an if/else branch type conflict")
	}
}

func TestInferLetPolymorphismAllowsDifferingUses(t *testing.T) {
	src := `let identity = |x| x
let a = identity(1)
let b = identity("s")`
	_, _ = infer(t, src)
	// Infer must not report errors: identity is generalized at its let
	// binding so each call site instantiates its own fresh type variables.
}

func TestInferMutualRecursionResolvesViaSeededSignatures(t *testing.T) {
	src := `fun isEven(n: int) -> bool {
  return isOdd(n)
}

fun isOdd(n: int) -> bool {
  return isEven(n)
}`
	inf, mod := infer(t, src)
	for _, decl := range mod.Decls {
		fd, ok := decl.(*ast.CFuncDecl)
		if !ok {
			continue
		}
		ft := inf.TypeOf(fd.Fn)
		if ft.Kind != types.KFunction {
			t.Errorf("expected function type for %s, got %s", fd.Name, ft)
		}
	}
}

func TestInferMatchBindsPatternNameInArmBody(t *testing.T) {
	src := `fun describe(pair: (int, int)) -> int {
  match pair {
    (a, b) => a + b,
  }
}`
	_, _ = infer(t, src)
}

func TestInferListLiteralUnifiesElementTypes(t *testing.T) {
	inf, mod := infer(t, `let xs = [1i32, 2i32, 3i32]`)
	got := inf.TypeOf(mod.Globals[0].Value)
	if got.Kind != types.KArray {
		t.Fatalf("expected array type, got %s", got)
	}
	if got.Elem.Kind != types.KPrimitive || got.Elem.Name != types.I32 {
		t.Errorf("expected array of i32, got %s", got)
	}
}
