package ast

// NodeID uniquely identifies a CoreNode within one normalization pass; used
// as the key into the typed-AST side table populated by the inferencer
// (spec §3 "Typed core AST ... each expression node carries an inferred
// type"), keeping core nodes themselves immutable once produced.
type NodeID int

// CoreNode is the common interface for the desugared tree produced by the
// normalizer (spec §4.3). Every surface-syntax feature maps onto a fixed
// member of this smaller node set: pipeline -> CCall, for -> CWhile +
// iterator protocol, f-string -> CFormat, method call -> CCall with receiver
// prepended to args, compound-assign -> load+op+store, try-operator (`e?`)
// -> CMatch on Result/Option.
type CoreNode interface {
	ID() NodeID
	coreNode()
}

type coreBase struct {
	NID NodeID
}

func (b coreBase) ID() NodeID { return b.NID }
func (b coreBase) coreNode()  {}

// CLit is a literal value carried through unchanged from the surface AST.
type CLit struct {
	coreBase
	Kind   string // "int" | "float" | "bool" | "string" | "char" | "byte" | "nil"
	Value  string
	Suffix string // integer type suffix, preserved per spec §3 invariant
}

// CVar is a name reference. After alpha-renaming every CVar.Name is globally
// unique. Depth is always -1: no pass computes De Bruijn indices.
type CVar struct {
	coreBase
	Name  string
	Depth int
}

// CLambda is a function literal: normalized `fun`/`fn` declarations and
// lambda expressions both lower to this one form.
type CLambda struct {
	coreBase
	Params  []string
	Body    CoreNode
	IsAsync bool
}

// CCall unifies plain calls, method calls (receiver prepended to Args),
// and desugared pipelines.
type CCall struct {
	coreBase
	Callee CoreNode
	Args   []CoreNode
}

// CLet is `let name = Value; Body` — sequencing is explicit in core form
// (no implicit block-scoped statement list).
type CLet struct {
	coreBase
	Name  string
	Value CoreNode
	Body  CoreNode
}

// CAssign represents a mutation to an existing binding; compound-assignment
// and increment/decrement desugar into this (load+op+store, spec §4.3.1).
type CAssign struct {
	coreBase
	Target CoreNode // CVar, CIndex, or CFieldAccess
	Value  CoreNode
}

type CIf struct {
	coreBase
	Cond CoreNode
	Then CoreNode
	Else CoreNode // nil => unit
}

// CMatch is the sole pattern-dispatch form; try-operator and try/catch both
// desugar onto it (spec §4.3.1, §9 "Normalizer rewrites try/catch to match
// on a Result-like wrapper").
type CMatch struct {
	coreBase
	Subject CoreNode
	Arms    []CMatchArm
}

type CMatchArm struct {
	Pattern Pattern
	Guard   CoreNode // nil if none
	Body    CoreNode
}

// CWhile is the sole loop form; `for`/`loop` both desugar onto it (spec
// §4.3.1 "for-loop → while+iterator").
type CWhile struct {
	coreBase
	Cond CoreNode
	Body CoreNode
}

type CBreak struct{ coreBase }
type CContinue struct{ coreBase }

type CReturn struct {
	coreBase
	Value CoreNode // nil for bare return
}

type CThrow struct {
	coreBase
	Value CoreNode
}

// CBlock sequences statements, evaluating to the last expression's value.
type CBlock struct {
	coreBase
	Stmts []CoreNode
}

type CFieldAccess struct {
	coreBase
	Receiver CoreNode
	Field    string
}

type CIndex struct {
	coreBase
	X     CoreNode
	Index CoreNode
}

type CListLit struct {
	coreBase
	Elements []CoreNode
}

type CTupleLit struct {
	coreBase
	Elements []CoreNode
}

type CSetLit struct {
	coreBase
	Elements []CoreNode
}

type CObjectLit struct {
	coreBase
	Keys   []string
	Values []CoreNode
}

type CStructLit struct {
	coreBase
	TypeName string
	Keys     []string
	Values   []CoreNode
}

// CFormat is the desugared form of an f-string: a literal format template
// plus the embedded-expression operands (spec §4.3.1 "f-string → format
// call"; coercion-to-string rule decided in DESIGN.md Open Question 4).
type CFormat struct {
	coreBase
	Template string // fmt-style template with %v placeholders
	Args     []CoreNode
}

type CRange struct {
	coreBase
	Start     CoreNode
	End       CoreNode
	Inclusive bool
}

type CSpawn struct {
	coreBase
	Body CoreNode
}

type CActorSend struct {
	coreBase
	Actor   CoreNode
	Message CoreNode
}

type CActorQuery struct {
	coreBase
	Actor   CoreNode
	Message CoreNode
}

type CAwait struct {
	coreBase
	X CoreNode
}

// CTryFinally evaluates Try, then always evaluates Finally afterward
// regardless of whether Try completed normally, threw, or carried a
// break/continue/return signal — ordinary try/finally semantics (spec §9),
// distinct from the flat sequencing a plain CBlock gives two statements.
type CTryFinally struct {
	coreBase
	Try     CoreNode
	Finally CoreNode
}

type CDecl interface {
	CoreNode
	coreDeclNode()
}

type CFuncDecl struct {
	coreBase
	Name string
	Fn   *CLambda
}

func (d *CFuncDecl) coreDeclNode() {}

type CStructDecl struct {
	coreBase
	Name   string
	Fields []string
}

func (d *CStructDecl) coreDeclNode() {}

type CEnumDecl struct {
	coreBase
	Name     string
	Variants []string
}

func (d *CEnumDecl) coreDeclNode() {}

// CModule is the normalizer's top-level output: the complete core AST for
// one source file (spec §4.3 "Core AST is the sole input to type inference,
// interpreter, and transpiler").
type CModule struct {
	Decls   []CDecl
	Globals []*CLet // module-level `let`/`let mut` bindings
}
