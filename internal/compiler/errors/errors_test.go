package errors

import (
	"strings"
	"testing"
)

func TestDiagnosticErrorWithFile(t *testing.T) {
	d := &Diagnostic{
		Phase:   "lexer",
		Kind:    "UnexpectedChar",
		Message: "unexpected token",
		File:    "test.ruchy",
		Line:    10,
		Column:  5,
	}
	want := "[lexer] test.ruchy:10:5: UnexpectedChar: unexpected token"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDiagnosticErrorWithoutFile(t *testing.T) {
	d := &Diagnostic{
		Phase:   "parser",
		Kind:    "UnexpectedToken",
		Message: "expected '}'",
		Line:    3,
		Column:  10,
	}
	want := "[parser] 3:10: UnexpectedToken: expected '}'"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestListAddfProducesAnErrorSeverityDiagnostic(t *testing.T) {
	l := NewList()
	l.Addf("parser", "UnexpectedToken", 5, 10, "expected %s, got %s", ";", "EOF")
	if len(l.Items) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(l.Items))
	}
	d := l.Items[0]
	if d.Severity != SeverityError {
		t.Errorf("expected SeverityError, got %v", d.Severity)
	}
	if d.Message != "expected ;, got EOF" {
		t.Errorf("unexpected message: %q", d.Message)
	}
}

func TestListWarnfProducesAWarningSeverityDiagnostic(t *testing.T) {
	l := NewList()
	l.Warnf("infer", "UnusedBinding", 1, 1, "unused variable %q", "x")
	if l.Items[0].Severity != SeverityWarning {
		t.Errorf("expected SeverityWarning, got %v", l.Items[0].Severity)
	}
}

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	l := NewList()
	l.Warnf("infer", "UnusedBinding", 1, 1, "unused variable %q", "x")
	if l.HasErrors() {
		t.Error("a list with only warnings should not report HasErrors")
	}
	l.Addf("parser", "UnexpectedToken", 1, 1, "boom")
	if !l.HasErrors() {
		t.Error("expected HasErrors to be true once an error-severity diagnostic is added")
	}
}

func TestExtendMergesDiagnosticsInOrder(t *testing.T) {
	a := NewList()
	a.Addf("lexer", "K1", 1, 1, "first")
	b := NewList()
	b.Addf("parser", "K2", 2, 2, "second")

	a.Extend(b)
	if len(a.Items) != 2 {
		t.Fatalf("expected 2 diagnostics after Extend, got %d", len(a.Items))
	}
	if a.Items[0].Kind != "K1" || a.Items[1].Kind != "K2" {
		t.Error("expected Extend to preserve source order")
	}
}

func TestExtendToleratesNilOther(t *testing.T) {
	a := NewList()
	a.Addf("lexer", "K1", 1, 1, "first")
	a.Extend(nil)
	if len(a.Items) != 1 {
		t.Errorf("expected Extend(nil) to be a no-op, got %d items", len(a.Items))
	}
}

func TestListStringJoinsEveryDiagnostic(t *testing.T) {
	l := NewList()
	l.Addf("lexer", "K1", 1, 5, "unexpected character")
	l.Addf("parser", "K2", 3, 10, "expected '}'")

	result := l.String()
	if !strings.Contains(result, "[lexer] 1:5: K1: unexpected character") {
		t.Errorf("String() missing first diagnostic, got: %s", result)
	}
	if !strings.Contains(result, "[parser] 3:10: K2: expected '}'") {
		t.Errorf("String() missing second diagnostic, got: %s", result)
	}
}

func TestListStringEmpty(t *testing.T) {
	l := NewList()
	if got := l.String(); got != "" {
		t.Errorf("String() = %q, want empty string", got)
	}
}
