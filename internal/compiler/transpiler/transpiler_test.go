package transpiler

import (
	"strings"
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/normalizer"
	"github.com/ruchy-lang/ruchy/internal/compiler/parser"
)

func normalize(t *testing.T, src string) *ast.CModule {
	t.Helper()
	file, diags := parser.Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	mod, ndiags := normalizer.Normalize(file)
	if ndiags.HasErrors() {
		t.Fatalf("normalize errors: %v", ndiags)
	}
	return mod
}

func TestTranspileDefaultsToRust(t *testing.T) {
	mod := normalize(t, `fun add(a, b) -> int { return a + b }`)
	result, err := Transpile(mod, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "pub fn add(") {
		t.Errorf("expected a Rust fn signature, got %s", result.Code)
	}
}

func TestTranspileUnknownTargetErrors(t *testing.T) {
	mod := normalize(t, `let x = 1`)
	if _, err := Transpile(mod, Options{TargetLanguage: "cobol"}); err == nil {
		t.Fatal("expected an error for an unsupported target language")
	}
}

func TestTranspileRustStructAndEnum(t *testing.T) {
	mod := normalize(t, `struct Point { x: int, y: int }

enum Shape {
  Circle,
  Square,
}`)
	result, err := Transpile(mod, Options{TargetLanguage: "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "pub struct Point {") {
		t.Errorf("expected struct Point in output, got %s", result.Code)
	}
	if !strings.Contains(result.Code, "pub enum Shape {") {
		t.Errorf("expected enum Shape in output, got %s", result.Code)
	}
}

func TestTranspileRustIfMatchAndReturn(t *testing.T) {
	mod := normalize(t, `fun classify(n: int) -> string {
  if n > 0 {
    return "positive"
  } else {
    return "non-positive"
  }
}`)
	result, err := Transpile(mod, Options{TargetLanguage: "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "if ") || !strings.Contains(result.Code, "} else {") {
		t.Errorf("expected if/else in output, got %s", result.Code)
	}
}

func TestTranspileRustGlobalsBecomeLazyLockMutex(t *testing.T) {
	mod := normalize(t, `let counter = 0`)
	result, err := Transpile(mod, Options{TargetLanguage: "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "LazyLock<Mutex<_>>") {
		t.Errorf("expected a LazyLock<Mutex<_>> global, got %s", result.Code)
	}
	if strings.Contains(result.Code, "unsafe") {
		t.Errorf("rust output must never contain unsafe, got %s", result.Code)
	}
}

func TestTranspileRustGlobalLockedAtUseSite(t *testing.T) {
	mod := normalize(t, `let counter = 0

fun bump() -> int {
  counter = counter + 1
  return counter
}`)
	result, err := Transpile(mod, Options{TargetLanguage: "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "COUNTER.lock().unwrap().clone()") {
		t.Errorf("expected a locked read of COUNTER at its use site, got %s", result.Code)
	}
	if !strings.Contains(result.Code, "*COUNTER.lock().unwrap() =") {
		t.Errorf("expected a locked write to COUNTER at its use site, got %s", result.Code)
	}
}

func TestTranspileGoGlobalLockedAtUseSite(t *testing.T) {
	mod := normalize(t, `let counter = 0

fun bump() -> int {
  counter = counter + 1
  return counter
}`)
	result, err := Transpile(mod, Options{TargetLanguage: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "counterMu.Lock()") {
		t.Errorf("expected counterMu.Lock() at a use site, got %s", result.Code)
	}
	if strings.Count(result.Code, "counterMu.Lock()") < 2 {
		t.Errorf("expected counterMu.Lock() to appear at both the read and the write use sites, got %s", result.Code)
	}
}

func TestTranspileGoEmitsFormattedSource(t *testing.T) {
	mod := normalize(t, `fun add(a, b) -> int { return a + b }`)
	result, err := Transpile(mod, Options{TargetLanguage: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "package main") {
		t.Errorf("expected a package clause, got %s", result.Code)
	}
	if !strings.Contains(result.Code, "func add(") {
		t.Errorf("expected a Go func signature, got %s", result.Code)
	}
}

func TestTranspileGoCanonicalizesFieldNamesToExportedIdentifiers(t *testing.T) {
	mod := normalize(t, `struct Point { user_id: int }

fun getId(p) -> int {
  return p.user_id
}`)
	result, err := Transpile(mod, Options{TargetLanguage: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "UserID") {
		t.Errorf("expected the struct field to be canonicalized to UserID, got %s", result.Code)
	}
	if strings.Contains(result.Code, "user_id") {
		t.Errorf("expected no raw snake_case identifiers in Go output, got %s", result.Code)
	}
}

func TestTranspileGoPreludeDefinesRuntimeHelpers(t *testing.T) {
	mod := normalize(t, `let x = 1`)
	result, err := Transpile(mod, Options{TargetLanguage: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Code, "func makeRange(") {
		t.Errorf("expected makeRange helper in prelude, got %s", result.Code)
	}
	if !strings.Contains(result.Code, "func ternary(") {
		t.Errorf("expected ternary helper in prelude, got %s", result.Code)
	}
	if !strings.Contains(result.Code, `"fmt"`) {
		t.Errorf("expected fmt import even with no CFormat node, got %s", result.Code)
	}
}

func TestTranspileIsPureFunctionOfInput(t *testing.T) {
	mod := normalize(t, `fun double(n: int) -> int { return n * 2 }`)
	first, err := Transpile(mod, Options{TargetLanguage: "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Transpile(mod, Options{TargetLanguage: "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Code != second.Code {
		t.Error("expected Transpile to be deterministic for identical input")
	}
}
