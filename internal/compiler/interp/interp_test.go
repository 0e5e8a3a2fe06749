package interp

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/normalizer"
	"github.com/ruchy-lang/ruchy/internal/compiler/parser"
	"github.com/ruchy-lang/ruchy/internal/compiler/value"
)

func run(t *testing.T, src string, limits Limits) (value.Value, error) {
	t.Helper()
	file, diags := parser.Parse(src, "test.ruchy")
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags)
	}
	mod, ndiags := normalizer.Normalize(file)
	if ndiags.HasErrors() {
		t.Fatalf("normalize errors: %v", ndiags)
	}
	it := New(limits)
	if err := it.Load(mod); err != nil {
		t.Fatalf("load error: %v", err)
	}
	return it.Run(context.Background(), "main")
}

func TestRunArithmeticAndComparison(t *testing.T) {
	result, err := run(t, `fun main() -> int {
  return 2 + 3 * 4
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 14 {
		t.Errorf("expected 14, got %v", result)
	}
}

func TestRunIfElseBranching(t *testing.T) {
	result, err := run(t, `fun main() -> string {
  let x = 5
  if x > 3 {
    return "big"
  } else {
    return "small"
  }
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := result.(*value.String)
	if !ok || s.Val != "big" {
		t.Errorf("expected \"big\", got %v", result)
	}
}

func TestRunForLoopOverArrayAccumulates(t *testing.T) {
	result, err := run(t, `fun main() -> int {
  let mut total = 0
  for x in [1, 2, 3, 4] {
    total += x
  }
  return total
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 10 {
		t.Errorf("expected 10, got %v", result)
	}
}

func TestRunWhileLoopBreak(t *testing.T) {
	result, err := run(t, `fun main() -> int {
  let mut i = 0
  while true {
    i = i + 1
    if i == 3 {
      break
    }
  }
  return i
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 3 {
		t.Errorf("expected 3, got %v", result)
	}
}

func TestRunMatchWithGuardAndWildcard(t *testing.T) {
	result, err := run(t, `fun main() -> string {
  let n = 7
  match n {
    0 => "zero",
    x if x > 5 => "big",
    _ => "small",
  }
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := result.(*value.String)
	if !ok || s.Val != "big" {
		t.Errorf("expected \"big\", got %v", result)
	}
}

func TestRunTryOperatorPropagatesErr(t *testing.T) {
	result, err := run(t, `fun fails() -> Result<int, string> {
  return Err("boom")
}

fun main() -> Result<int, string> {
  let v = fails()?
  return Ok(v)
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, ok := result.(*value.Err)
	if !ok {
		t.Fatalf("expected Err propagated through ?, got %v", result)
	}
	s, ok := e.Value.(*value.String)
	if !ok || s.Val != "boom" {
		t.Errorf("expected Err(\"boom\"), got %v", result)
	}
}

func TestRunArrayBuiltinMethods(t *testing.T) {
	result, err := run(t, `fun main() -> int {
  let xs = [1, 2, 3]
  return xs.len()
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 3 {
		t.Errorf("expected 3, got %v", result)
	}
}

func TestRunStepLimitIsEnforced(t *testing.T) {
	_, err := run(t, `fun main() -> int {
  let mut i = 0
  while true {
    i = i + 1
  }
  return i
}`, Limits{MaxSteps: 50})
	if err == nil {
		t.Fatal("expected execution to be aborted by the step limit")
	}
}

func TestRunTryFinallyRunsOnEarlyReturn(t *testing.T) {
	result, err := run(t, `fun f() -> int {
  let mut ran = 0
  try {
    return 1
  } finally {
    ran = 1
  }
  return ran
}

fun main() -> int {
  return f()
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 1 {
		t.Errorf("expected the try block's early return (1) to win, got %v", result)
	}
}

func TestRunTryFinallyRunsOnBreak(t *testing.T) {
	result, err := run(t, `fun main() -> int {
  let mut count = 0
  let mut cleaned = 0
  while true {
    try {
      count = count + 1
      break
    } finally {
      cleaned = cleaned + 1
    }
  }
  return cleaned
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 1 {
		t.Errorf("expected finally to run exactly once despite the break, got %v", result)
	}
}

func TestRunDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun main() -> int {
  let z = 0
  return 10 / z
}`, Limits{})
	if err == nil {
		t.Fatal("expected a division-by-zero runtime error")
	}
	var rerr *errors.RuntimeError
	if !stderrors.As(err, &rerr) || rerr.Kind != errors.DivisionByZero {
		t.Errorf("expected RuntimeError{Kind: DivisionByZero}, got %v", err)
	}
}

func TestRunIntegerOverflowIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun main() -> int {
  let max = 9223372036854775807
  return max + 1
}`, Limits{})
	if err == nil {
		t.Fatal("expected an integer-overflow runtime error")
	}
	var rerr *errors.RuntimeError
	if !stderrors.As(err, &rerr) || rerr.Kind != errors.IntegerOverflow {
		t.Errorf("expected RuntimeError{Kind: IntegerOverflow}, got %v", err)
	}
}

func TestRunSpawnIsUnsupportedRuntime(t *testing.T) {
	_, err := run(t, `fun main() -> int {
  spawn 1
  return 0
}`, Limits{})
	if err == nil {
		t.Fatal("expected spawn to raise an unsupported-runtime error")
	}
	var rerr *errors.RuntimeError
	if !stderrors.As(err, &rerr) || rerr.Kind != errors.UnsupportedRuntime {
		t.Errorf("expected RuntimeError{Kind: UnsupportedRuntime}, got %v", err)
	}
}

func TestRunClosureCapturesEnclosingScope(t *testing.T) {
	result, err := run(t, `fun main() -> int {
  let base = 10
  let addBase = |n| n + base
  return addBase(5)
}`, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := result.(*value.Int)
	if !ok || i.Val != 15 {
		t.Errorf("expected 15, got %v", result)
	}
}
