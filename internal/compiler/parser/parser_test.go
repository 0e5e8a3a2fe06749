package parser

import (
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
)

func TestParseLetStmt(t *testing.T) {
	file, diags := Parse(`let x = 5`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(file.Decls))
	}
	let, ok := file.Decls[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected *ast.LetStmt, got %T", file.Decls[0])
	}
	if let.Name != "x" {
		t.Errorf("expected name %q, got %q", "x", let.Name)
	}
	if let.Mutable {
		t.Error("expected immutable binding")
	}
	lit, ok := let.Value.(*ast.IntLit)
	if !ok {
		t.Fatalf("expected *ast.IntLit, got %T", let.Value)
	}
	if lit.Value != "5" {
		t.Errorf("expected literal %q, got %q", "5", lit.Value)
	}
}

func TestParseMutableLet(t *testing.T) {
	file, diags := Parse(`let mut count = 0`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	if !let.Mutable {
		t.Error("expected mutable binding")
	}
	if let.Name != "count" {
		t.Errorf("expected name %q, got %q", "count", let.Name)
	}
}

func TestParseFuncDecl(t *testing.T) {
	src := `fun add(a: int, b: int) -> int {
  return a + b
}`
	file, diags := Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", file.Decls[0])
	}
	if fn.Name != "add" {
		t.Errorf("expected name %q, got %q", "add", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[0].Type.Name != "int" {
		t.Errorf("unexpected param 0: %+v", fn.Params[0])
	}
	if fn.ReturnType == nil || fn.ReturnType.Name != "int" {
		t.Errorf("expected return type int, got %+v", fn.ReturnType)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Stmts))
	}
}

func TestParseBinaryExpressionPrecedence(t *testing.T) {
	file, diags := Parse(`let x = 1 + 2 * 3`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	bin, ok := let.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected *ast.BinaryExpr, got %T", let.Value)
	}
	if bin.Op != "+" {
		t.Errorf("expected top-level op %q, got %q", "+", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected rhs to be *ast.BinaryExpr (mul binds tighter), got %T", bin.Right)
	}
	if rhs.Op != "*" {
		t.Errorf("expected rhs op %q, got %q", "*", rhs.Op)
	}
}

func TestParseIfElseExpression(t *testing.T) {
	src := `let x = if a > 0 { 1 } else { -1 }`
	file, diags := Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	ifExpr, ok := let.Value.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected *ast.IfExpr, got %T", let.Value)
	}
	if ifExpr.Else == nil {
		t.Fatal("expected else branch")
	}
}

func TestParseMatchExpression(t *testing.T) {
	src := `let y = match x {
  0 => "zero",
  n if n > 0 => "positive",
  _ => "negative",
}`
	file, diags := Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	m, ok := let.Value.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("expected *ast.MatchExpr, got %T", let.Value)
	}
	if len(m.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(m.Arms))
	}
	if m.Arms[1].Guard == nil {
		t.Error("expected guard on second arm")
	}
	if _, ok := m.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("expected wildcard pattern on last arm, got %T", m.Arms[2].Pattern)
	}
}

func TestParseStructAndEnum(t *testing.T) {
	src := `struct Point {
  x: int,
  y: int,
}

enum Shape {
  Circle(float),
  Square(float),
  Unit,
}`
	file, diags := Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	st, ok := file.Decls[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("expected *ast.StructDecl, got %T", file.Decls[0])
	}
	if st.Name != "Point" || len(st.Fields) != 2 {
		t.Errorf("unexpected struct: %+v", st)
	}

	en, ok := file.Decls[1].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected *ast.EnumDecl, got %T", file.Decls[1])
	}
	if en.Name != "Shape" || len(en.Variants) != 3 {
		t.Fatalf("unexpected enum: %+v", en)
	}
	if len(en.Variants[0].Payload) != 1 {
		t.Errorf("expected Circle to carry one payload type, got %d", len(en.Variants[0].Payload))
	}
	if len(en.Variants[2].Payload) != 0 {
		t.Errorf("expected Unit variant to carry no payload")
	}
}

func TestParseImportVariants(t *testing.T) {
	src := `import Default from "./mod.ruchy"
import { a, b } from "./utils.ruchy"
import * from "./glob.ruchy"`
	file, diags := Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	if len(file.Imports) != 3 {
		t.Fatalf("expected 3 imports, got %d", len(file.Imports))
	}
	if file.Imports[0].Default != "Default" {
		t.Errorf("expected default import name, got %+v", file.Imports[0])
	}
	if len(file.Imports[1].Members) != 2 {
		t.Errorf("expected 2 destructured members, got %+v", file.Imports[1])
	}
	if !file.Imports[2].Glob {
		t.Error("expected glob import")
	}
}

func TestParseDerefUnaryExpression(t *testing.T) {
	file, diags := Parse(`let r = *p`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	un, ok := let.Value.(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("expected *p to parse as a prefix UnaryExpr (deref), got %T", let.Value)
	}
	if un.Op != "*" || un.Postfix {
		t.Errorf("expected prefix '*' unary operator, got %+v", un)
	}
}

func TestParsePipelineAndRange(t *testing.T) {
	file, diags := Parse(`let r = (1..10) |> sum`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	pipe, ok := let.Value.(*ast.PipelineExpr)
	if !ok {
		t.Fatalf("expected *ast.PipelineExpr, got %T", let.Value)
	}
	rng, ok := pipe.Left.(*ast.RangeExpr)
	if !ok {
		t.Fatalf("expected range on the left of the pipeline, got %T", pipe.Left)
	}
	if rng.Inclusive {
		t.Error("expected exclusive range for '..'")
	}
}

func TestParseLambdaAndPipeLambda(t *testing.T) {
	file, diags := Parse(`let f = |x, y| x + y`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	lam, ok := let.Value.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected *ast.LambdaExpr, got %T", let.Value)
	}
	if len(lam.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(lam.Params))
	}
}

func TestParseErrorRecoverySkipsToNextStatement(t *testing.T) {
	src := `let = }}} let y = 2`
	_, diags := Parse(src, "test.ruchy")
	if !diags.HasErrors() {
		t.Fatal("expected parse errors on malformed input")
	}
	// Never panics, and a parser.Parse call always returns (spec's
	// "never panics on any token sequence" contract).
}

func TestParseOkErrSomeNone(t *testing.T) {
	src := `let r = Ok(1)
let e = Err("bad")
let s = Some(5)
let n = None`
	file, diags := Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	if _, ok := file.Decls[0].(*ast.LetStmt).Value.(*ast.OkExpr); !ok {
		t.Error("expected OkExpr")
	}
	if _, ok := file.Decls[1].(*ast.LetStmt).Value.(*ast.ErrExpr); !ok {
		t.Error("expected ErrExpr")
	}
	if _, ok := file.Decls[2].(*ast.LetStmt).Value.(*ast.SomeExpr); !ok {
		t.Error("expected SomeExpr")
	}
	if _, ok := file.Decls[3].(*ast.LetStmt).Value.(*ast.NoneExpr); !ok {
		t.Error("expected NoneExpr")
	}
}

func TestParseFStringLiteral(t *testing.T) {
	file, diags := Parse(`let s = f"hello {name}, you are {age + 1}"`, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
	let := file.Decls[0].(*ast.LetStmt)
	fstr, ok := let.Value.(*ast.FStringLit)
	if !ok {
		t.Fatalf("expected *ast.FStringLit, got %T", let.Value)
	}
	exprParts := 0
	for _, part := range fstr.Parts {
		if part.IsExpr {
			exprParts++
		}
	}
	if exprParts != 2 {
		t.Errorf("expected 2 embedded expressions, got %d", exprParts)
	}
}
