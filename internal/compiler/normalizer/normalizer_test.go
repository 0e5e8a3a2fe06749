package normalizer

import (
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/parser"
)

func normalize(t *testing.T, src string) *ast.CModule {
	t.Helper()
	file, diags := parser.Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	mod, ndiags := Normalize(file)
	if ndiags.HasErrors() {
		t.Fatalf("normalize errors: %v", ndiags)
	}
	return mod
}

func TestNormalizeSimpleLet(t *testing.T) {
	mod := normalize(t, `let x = 5`)
	if len(mod.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(mod.Globals))
	}
	g := mod.Globals[0]
	lit, ok := g.Value.(*ast.CLit)
	if !ok || lit.Kind != "int" || lit.Value != "5" {
		t.Errorf("unexpected global value: %+v", g.Value)
	}
}

func TestNormalizeAlphaRenaming(t *testing.T) {
	src := `fun f() {
  let x = 1
  let x = 2
  return x
}`
	mod := normalize(t, src)
	fn := mod.Decls[0].(*ast.CFuncDecl)
	outer, ok := fn.Fn.Body.(*ast.CLet)
	if !ok {
		t.Fatalf("expected outer CLet, got %T", fn.Fn.Body)
	}
	if outer.Name != "x" {
		t.Errorf("expected first binding name %q, got %q", "x", outer.Name)
	}
	inner, ok := outer.Body.(*ast.CLet)
	if !ok {
		t.Fatalf("expected inner CLet, got %T", outer.Body)
	}
	if inner.Name == "x" {
		t.Error("expected shadowing let to be alpha-renamed to a distinct name")
	}
	ret, ok := inner.Body.(*ast.CReturn)
	if !ok {
		t.Fatalf("expected CReturn, got %T", inner.Body)
	}
	v, ok := ret.Value.(*ast.CVar)
	if !ok || v.Name != inner.Name {
		t.Errorf("expected return to reference the shadowing binding %q, got %+v", inner.Name, ret.Value)
	}
}

func TestNormalizeBinaryExprToBuiltinCall(t *testing.T) {
	mod := normalize(t, `let x = 1 + 2`)
	call, ok := mod.Globals[0].Value.(*ast.CCall)
	if !ok {
		t.Fatalf("expected CCall, got %T", mod.Globals[0].Value)
	}
	callee, ok := call.Callee.(*ast.CVar)
	if !ok || callee.Name != "__binop_+" {
		t.Errorf("expected callee __binop_+, got %+v", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestNormalizeForLoopDesugarsToWhileWithIteratorProtocol(t *testing.T) {
	src := `fun f() {
  for x in xs {
    print(x)
  }
}`
	mod := normalize(t, src)
	fn := mod.Decls[0].(*ast.CFuncDecl)
	let, ok := fn.Fn.Body.(*ast.CLet)
	if !ok {
		t.Fatalf("expected outer CLet binding the iterator cursor, got %T", fn.Fn.Body)
	}
	while, ok := let.Body.(*ast.CWhile)
	if !ok {
		t.Fatalf("expected CWhile, got %T", let.Body)
	}
	match, ok := while.Body.(*ast.CMatch)
	if !ok {
		t.Fatalf("expected CMatch driving the loop body, got %T", while.Body)
	}
	if len(match.Arms) != 2 {
		t.Fatalf("expected Some/None arms, got %d", len(match.Arms))
	}
}

func TestNormalizeTryOperatorDesugarsToMatch(t *testing.T) {
	src := `fun f() -> Result<int, string> {
  let v = g()?
  return Ok(v)
}`
	mod := normalize(t, src)
	fn := mod.Decls[0].(*ast.CFuncDecl)
	let, ok := fn.Fn.Body.(*ast.CLet)
	if !ok {
		t.Fatalf("expected CLet, got %T", fn.Fn.Body)
	}
	match, ok := let.Value.(*ast.CMatch)
	if !ok {
		t.Fatalf("expected try-operator to desugar to CMatch, got %T", let.Value)
	}
	if len(match.Arms) != 4 {
		t.Fatalf("expected 4 arms (Ok/Some/Err/None), got %d", len(match.Arms))
	}
}

func TestNormalizeFStringToCFormat(t *testing.T) {
	mod := normalize(t, `let s = f"hi {name}"`)
	format, ok := mod.Globals[0].Value.(*ast.CFormat)
	if !ok {
		t.Fatalf("expected CFormat, got %T", mod.Globals[0].Value)
	}
	if format.Template != "hi %v" {
		t.Errorf("expected template %q, got %q", "hi %v", format.Template)
	}
	if len(format.Args) != 1 {
		t.Fatalf("expected 1 interpolated arg, got %d", len(format.Args))
	}
}

func TestNormalizePipelineDesugarsToCall(t *testing.T) {
	mod := normalize(t, `let x = 5 |> double`)
	call, ok := mod.Globals[0].Value.(*ast.CCall)
	if !ok {
		t.Fatalf("expected CCall, got %T", mod.Globals[0].Value)
	}
	callee, ok := call.Callee.(*ast.CVar)
	if !ok || callee.Name != "double" {
		t.Errorf("expected callee double, got %+v", call.Callee)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call.Args))
	}
}

func TestNormalizeStructAndEnumDecls(t *testing.T) {
	src := `struct Point {
  x: int,
  y: int,
}

enum Shape {
  Circle(float),
  Unit,
}`
	mod := normalize(t, src)
	st, ok := mod.Decls[0].(*ast.CStructDecl)
	if !ok || st.Name != "Point" || len(st.Fields) != 2 {
		t.Fatalf("unexpected struct decl: %+v", mod.Decls[0])
	}
	en, ok := mod.Decls[1].(*ast.CEnumDecl)
	if !ok || en.Name != "Shape" || len(en.Variants) != 2 {
		t.Fatalf("unexpected enum decl: %+v", mod.Decls[1])
	}
}

func TestNormalizeCompoundAssignDesugarsToLoadOpStore(t *testing.T) {
	src := `fun f() {
  let mut x = 1
  x += 2
}`
	mod := normalize(t, src)
	fn := mod.Decls[0].(*ast.CFuncDecl)
	let := fn.Fn.Body.(*ast.CLet)
	assign, ok := let.Body.(*ast.CAssign)
	if !ok {
		t.Fatalf("expected CAssign, got %T", let.Body)
	}
	call, ok := assign.Value.(*ast.CCall)
	if !ok {
		t.Fatalf("expected combined value to be a CCall, got %T", assign.Value)
	}
	callee := call.Callee.(*ast.CVar)
	if callee.Name != "__binop_+" {
		t.Errorf("expected __binop_+, got %q", callee.Name)
	}
}
