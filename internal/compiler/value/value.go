// Package value defines the tagged-union runtime value model shared by the
// interpreter and anything that inspects evaluation results (spec §5
// "Interpreter"), grounded on the pack's objects.GoMixObject hierarchy:
// one small interface plus one concrete struct per case, switched on a
// Kind tag rather than reflection.
package value

import (
	"fmt"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
)

// Kind discriminates the Value sum type (mirrors objects.GoMixType).
type Kind string

const (
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindBool      Kind = "bool"
	KindByte      Kind = "byte"
	KindChar      Kind = "char"
	KindString    Kind = "string"
	KindNil       Kind = "nil"
	KindArray     Kind = "array"
	KindTuple     Kind = "tuple"
	KindObject    Kind = "object"
	KindSet       Kind = "set"
	KindClosure   Kind = "closure"
	KindBound     Kind = "bound_method"
	KindBuiltin   Kind = "builtin"
	KindVariant   Kind = "enum_variant"
	KindDataFrame Kind = "dataframe"
	KindOk        Kind = "ok"
	KindErr       Kind = "err"
	KindSome      Kind = "some"
	KindNone      Kind = "none"
)

// Value is the interface every runtime value implements, parallel to
// objects.GoMixObject (GetType/ToString/ToObject collapsed into Kind/String/Inspect).
type Value interface {
	Kind() Kind
	String() string   // user-facing display, used by print/f-string interpolation
	Inspect() string  // debug representation, used by the REPL/telemetry
}

type Int struct {
	Val    int64
	Suffix string // preserved per spec §3 integer-suffix invariant
}

func (i *Int) Kind() Kind     { return KindInt }
func (i *Int) String() string { return fmt.Sprintf("%d", i.Val) }
func (i *Int) Inspect() string {
	if i.Suffix != "" {
		return fmt.Sprintf("%d%s", i.Val, i.Suffix)
	}
	return fmt.Sprintf("%d", i.Val)
}

type Float struct{ Val float64 }

func (f *Float) Kind() Kind      { return KindFloat }
func (f *Float) String() string { return fmt.Sprintf("%g", f.Val) }
func (f *Float) Inspect() string { return fmt.Sprintf("<float %g>", f.Val) }

type Bool struct{ Val bool }

func (b *Bool) Kind() Kind      { return KindBool }
func (b *Bool) String() string { return fmt.Sprintf("%t", b.Val) }
func (b *Bool) Inspect() string { return fmt.Sprintf("<bool %t>", b.Val) }

type Byte struct{ Val byte }

func (b *Byte) Kind() Kind      { return KindByte }
func (b *Byte) String() string { return fmt.Sprintf("%d", b.Val) }
func (b *Byte) Inspect() string { return fmt.Sprintf("<byte %d>", b.Val) }

type Char struct{ Val rune }

func (c *Char) Kind() Kind      { return KindChar }
func (c *Char) String() string { return string(c.Val) }
func (c *Char) Inspect() string { return fmt.Sprintf("<char %q>", c.Val) }

type String struct{ Val string }

func (s *String) Kind() Kind      { return KindString }
func (s *String) String() string { return s.Val }
func (s *String) Inspect() string { return fmt.Sprintf("%q", s.Val) }

// Nil is the interpreter's unit/null value, distinct from an absent Option.
type Nil struct{}

func (n *Nil) Kind() Kind      { return KindNil }
func (n *Nil) String() string { return "nil" }
func (n *Nil) Inspect() string { return "<nil>" }

// Array is the interpreter's fixed-size, shared-backing-store sequence
// (spec.md Open Question 3: "shallow value-in, shared-structure-out").
type Array struct{ Elements []Value }

func (a *Array) Kind() Kind { return KindArray }
func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}
func (a *Array) Inspect() string {
	var b strings.Builder
	b.WriteString("<array [")
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Inspect())
	}
	b.WriteString("]>")
	return b.String()
}

// Tuple is immutable and heterogeneous.
type Tuple struct{ Elements []Value }

func (t *Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range t.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (t *Tuple) Inspect() string { return "<tuple " + t.String() + ">" }

// Set is a deduplicated, insertion-ordered collection.
type Set struct {
	order []string
	index map[string]Value
}

func NewSet() *Set { return &Set{index: map[string]Value{}} }

func (s *Set) Kind() Kind { return KindSet }
func (s *Set) Add(key string, v Value) {
	if _, ok := s.index[key]; !ok {
		s.order = append(s.order, key)
	}
	s.index[key] = v
}
func (s *Set) Has(key string) bool { _, ok := s.index[key]; return ok }
func (s *Set) Values() []Value {
	out := make([]Value, len(s.order))
	for i, k := range s.order {
		out[i] = s.index[k]
	}
	return out
}
func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("set{")
	for i, k := range s.order {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.index[k].String())
	}
	b.WriteByte('}')
	return b.String()
}
func (s *Set) Inspect() string { return "<" + s.String() + ">" }

// Object is a struct instance: a name tag plus an ordered field map,
// grounded on objects.GoMixObjectInstance.
type Object struct {
	TypeName string
	Fields   map[string]Value
	Order    []string
}

func NewObject(typeName string) *Object {
	return &Object{TypeName: typeName, Fields: map[string]Value{}}
}

func (o *Object) Kind() Kind { return KindObject }
func (o *Object) Set(name string, v Value) {
	if _, ok := o.Fields[name]; !ok {
		o.Order = append(o.Order, name)
	}
	o.Fields[name] = v
}
func (o *Object) String() string {
	var b strings.Builder
	b.WriteString(o.TypeName)
	b.WriteString(" { ")
	for i, name := range o.Order {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(o.Fields[name].String())
	}
	b.WriteString(" }")
	return b.String()
}
func (o *Object) Inspect() string { return "<object " + o.String() + ">" }

// Closure is a function value capturing its defining environment (env is an
// interface{} to avoid an import cycle with interp; the interpreter asserts
// it back to its own *Env type).
type Closure struct {
	Params  []string
	Body    ast.CoreNode
	Env     interface{}
	IsAsync bool
	Name    string // empty for anonymous lambdas
}

func (c *Closure) Kind() Kind { return KindClosure }
func (c *Closure) String() string {
	if c.Name != "" {
		return fmt.Sprintf("<fn %s/%d>", c.Name, len(c.Params))
	}
	return fmt.Sprintf("<closure/%d>", len(c.Params))
}
func (c *Closure) Inspect() string { return c.String() }

// BoundMethod pairs a Closure with its receiver, produced on method lookup.
type BoundMethod struct {
	Receiver Value
	Method   *Closure
}

func (b *BoundMethod) Kind() Kind      { return KindBound }
func (b *BoundMethod) String() string { return "<bound " + b.Method.String() + ">" }
func (b *BoundMethod) Inspect() string { return b.String() }

// BuiltinFunction wraps a native Go implementation of a standard-library
// function (spec §4.6 "Built-in function set").
type BuiltinFunction struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (b *BuiltinFunction) Kind() Kind      { return KindBuiltin }
func (b *BuiltinFunction) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }
func (b *BuiltinFunction) Inspect() string { return b.String() }

// EnumVariant is a tagged value of a user-defined enum type.
type EnumVariant struct {
	EnumName    string
	VariantName string
	Payload     []Value
}

func (e *EnumVariant) Kind() Kind { return KindVariant }
func (e *EnumVariant) String() string {
	if len(e.Payload) == 0 {
		return e.EnumName + "::" + e.VariantName
	}
	var b strings.Builder
	b.WriteString(e.EnumName)
	b.WriteString("::")
	b.WriteString(e.VariantName)
	b.WriteByte('(')
	for i, p := range e.Payload {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (e *EnumVariant) Inspect() string { return "<" + e.String() + ">" }

// Ok/Err/Some/None are the built-in Result/Option variants, kept as
// distinct Value kinds rather than generic EnumVariants since the
// interpreter and type checker special-case their control-flow behavior
// (try-operator desugaring, spec §4.3.1).
type Ok struct{ Value Value }

func (o *Ok) Kind() Kind      { return KindOk }
func (o *Ok) String() string { return "Ok(" + o.Value.String() + ")" }
func (o *Ok) Inspect() string { return "<" + o.String() + ">" }

type Err struct{ Value Value }

func (e *Err) Kind() Kind      { return KindErr }
func (e *Err) String() string { return "Err(" + e.Value.String() + ")" }
func (e *Err) Inspect() string { return "<" + e.String() + ">" }

type Some struct{ Value Value }

func (s *Some) Kind() Kind      { return KindSome }
func (s *Some) String() string { return "Some(" + s.Value.String() + ")" }
func (s *Some) Inspect() string { return "<" + s.String() + ">" }

type None struct{}

func (n *None) Kind() Kind      { return KindNone }
func (n *None) String() string { return "None" }
func (n *None) Inspect() string { return "<None>" }

// DataFrame is an opaque handle value referencing a native tabular
// structure maintained by a host-provided data-processing extension; the
// interpreter never interprets its contents directly (spec §4.7 "embedding
// surface for host data types").
type DataFrame struct {
	Handle interface{}
	Rows   int
	Cols   int
}

func (d *DataFrame) Kind() Kind      { return KindDataFrame }
func (d *DataFrame) String() string { return fmt.Sprintf("<dataframe %dx%d>", d.Rows, d.Cols) }
func (d *DataFrame) Inspect() string { return d.String() }

// Truthy implements the language's truthiness rule for boolean contexts
// (if/while conditions, `&&`/`||` operands): only Bool participates;
// every other kind is an error surfaced by the interpreter/type checker,
// never silently coerced.
func Truthy(v Value) (bool, bool) {
	b, ok := v.(*Bool)
	if !ok {
		return false, false
	}
	return b.Val, true
}

// Equal performs value equality, used by `==`/`!=` and match-literal
// patterns. Reference types (Array/Object/Set/Closure) compare by
// identity except where element-wise equality is well-defined.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Int:
		return av.Val == b.(*Int).Val
	case *Float:
		return av.Val == b.(*Float).Val
	case *Bool:
		return av.Val == b.(*Bool).Val
	case *Byte:
		return av.Val == b.(*Byte).Val
	case *Char:
		return av.Val == b.(*Char).Val
	case *String:
		return av.Val == b.(*String).Val
	case *Nil:
		return true
	case *None:
		return true
	case *Array:
		bv := b.(*Array)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		bv := b.(*Tuple)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Some:
		return Equal(av.Value, b.(*Some).Value)
	case *Ok:
		return Equal(av.Value, b.(*Ok).Value)
	case *Err:
		return Equal(av.Value, b.(*Err).Value)
	case *EnumVariant:
		bv := b.(*EnumVariant)
		if av.EnumName != bv.EnumName || av.VariantName != bv.VariantName || len(av.Payload) != len(bv.Payload) {
			return false
		}
		for i := range av.Payload {
			if !Equal(av.Payload[i], bv.Payload[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
