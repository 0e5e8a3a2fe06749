// Package errors defines the diagnostics-as-values error model shared by
// every stage (spec §6 "Diagnostic format", §7 "Error handling design").
package errors

import "fmt"

type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
)

// Span is a byte-offset range, mirroring ast.Span without importing ast
// (errors is a leaf package consumed by every stage).
type Span struct {
	Start, End int
}

// Hint is a suggested fix attached to a diagnostic (spec §6 "hints:
// Vec<Hint>").
type Hint struct {
	Message     string
	Replacement string // suggested replacement text, if any
}

// Diagnostic is the structured error/warning value every stage returns
// instead of panicking (spec §7 "diagnostics ... are COLLECTED, not
// propagated as panics"). Generalizes the teacher's plain CompileError with
// Severity/Kind/Hints.
type Diagnostic struct {
	Severity Severity
	Kind     string // e.g. "UnexpectedToken", "CyclicImport", "UnknownMethod"
	Message  string
	Span     Span
	Line     int
	Column   int
	File     string
	Phase    string // "lexer" | "parser" | "normalizer" | "resolver" | "infer" | "interp" | "transpiler"
	Hints    []Hint
}

func (d *Diagnostic) Error() string {
	loc := fmt.Sprintf("%d:%d", d.Line, d.Column)
	if d.File != "" {
		loc = d.File + ":" + loc
	}
	return fmt.Sprintf("[%s] %s: %s: %s", d.Phase, loc, d.Kind, d.Message)
}

// List collects diagnostics in source order (spec §7 "Multiple diagnostics
// are rendered in source-order").
type List struct {
	Items []*Diagnostic
}

func NewList() *List { return &List{} }

func (l *List) Add(d *Diagnostic) { l.Items = append(l.Items, d) }

func (l *List) Addf(phase, kind string, line, column int, format string, args ...interface{}) {
	l.Add(&Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
		Phase:    phase,
	})
}

func (l *List) Warnf(phase, kind string, line, column int, format string, args ...interface{}) {
	l.Add(&Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
		Phase:    phase,
	})
}

func (l *List) HasErrors() bool {
	for _, d := range l.Items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (l *List) Extend(other *List) {
	if other == nil {
		return
	}
	l.Items = append(l.Items, other.Items...)
}

func (l *List) String() string {
	s := ""
	for _, d := range l.Items {
		s += d.Error() + "\n"
	}
	return s
}

// RuntimeErrorKind is the closed set of failures the interpreter and the
// code it runs can raise (spec §4.6/§8 "RuntimeError{kind, span, context}").
// Keeping this closed is what makes testable property 7 ("either
// implementation fails with the same error kind") checkable at all: two
// interpreters can compare Kind values without comparing message text.
type RuntimeErrorKind string

const (
	DivisionByZero     RuntimeErrorKind = "DivisionByZero"
	IntegerOverflow    RuntimeErrorKind = "IntegerOverflow"
	TypeMismatch       RuntimeErrorKind = "TypeMismatch"
	UndefinedVariable  RuntimeErrorKind = "UndefinedVariable"
	InvalidIndex       RuntimeErrorKind = "InvalidIndex"
	UnknownField       RuntimeErrorKind = "UnknownField"
	UnknownMethod      RuntimeErrorKind = "UnknownMethod"
	ResourceExhausted  RuntimeErrorKind = "ResourceExhausted"
	UserException      RuntimeErrorKind = "UserException"
	UnsupportedRuntime RuntimeErrorKind = "UnsupportedRuntime"
)

// RuntimeError is the value every interpreter failure path returns instead
// of a bare fmt.Errorf string, so callers (cmd/ruchyc, a second conformance
// interpreter, tests) can switch on Kind rather than parse prose.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Span    Span
	Context string
}

func (e *RuntimeError) Error() string {
	if e.Context == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}
