package lexer

import (
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/token"
)

// TestCompleteProgramLexesEndToEnd exercises the lexer against a realistic
// multi-construct Ruchy source file: struct, enum, a function with control
// flow, a match expression, and a for loop, confirming every section is
// reachable through to EOF with no illegal tokens along the way.
func TestCompleteProgramLexesEndToEnd(t *testing.T) {
	input := `struct Point {
  x: int,
  y: int
}

enum Shape {
  Circle(float),
  Rectangle(float, float)
}

fun area(s: Shape) -> float {
  match s {
    Shape::Circle(r) => 3.14 * r * r,
    Shape::Rectangle(w, h) => w * h,
  }
}

fun main() -> int {
  let mut total = 0
  for i in 0..10 {
    total += i
  }
  return total
}`

	l := New(input)

	tok := l.NextToken()
	if tok.Type != token.STRUCT {
		t.Fatalf("expected STRUCT, got %v", tok.Type)
	}

	for tok.Type != token.ENUM && tok.Type != token.EOF {
		tok = l.NextToken()
	}
	if tok.Type != token.ENUM {
		t.Fatal("never reached ENUM")
	}

	for tok.Type != token.FUN && tok.Type != token.EOF {
		tok = l.NextToken()
	}
	if tok.Type != token.FUN {
		t.Fatal("never reached first FUN")
	}

	for tok.Type != token.MATCH && tok.Type != token.EOF {
		tok = l.NextToken()
	}
	if tok.Type != token.MATCH {
		t.Fatal("never reached MATCH")
	}

	for tok.Type != token.FOR && tok.Type != token.EOF {
		tok = l.NextToken()
	}
	if tok.Type != token.FOR {
		t.Fatal("never reached FOR")
	}

	for tok.Type != token.EOF {
		if tok.Type == token.ILLEGAL {
			t.Fatalf("unexpected ILLEGAL token at %v", tok.Pos)
		}
		tok = l.NextToken()
	}

	if len(l.Errors) != 0 {
		t.Errorf("expected no lex errors over a well-formed program, got %+v", l.Errors)
	}
}
