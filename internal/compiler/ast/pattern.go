package ast

import "github.com/ruchy-lang/ruchy/internal/compiler/token"

// Pattern is the match-pattern sublanguage (spec §3 "Patterns"): literal,
// identifier (binding), wildcard, tuple, list, struct (with rest), variant
// with path, range, or-pattern, rest, at-binding.
type Pattern interface {
	Node
	patternNode()
}

type LiteralPattern struct {
	Tok     token.Token
	Value   Expression // IntLit/FloatLit/StringLit/BoolLit/CharLit/NilLit
	SpanVal Span
}

func (p *LiteralPattern) patternNode()       {}
func (p *LiteralPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *LiteralPattern) Span() Span           { return p.SpanVal }

type IdentPattern struct {
	Tok     token.Token
	Name    string
	SpanVal Span
}

func (p *IdentPattern) patternNode()       {}
func (p *IdentPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *IdentPattern) Span() Span           { return p.SpanVal }

type WildcardPattern struct {
	Tok     token.Token
	SpanVal Span
}

func (p *WildcardPattern) patternNode()       {}
func (p *WildcardPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *WildcardPattern) Span() Span           { return p.SpanVal }

type TuplePattern struct {
	Tok      token.Token
	Elements []Pattern
	SpanVal  Span
}

func (p *TuplePattern) patternNode()       {}
func (p *TuplePattern) TokenLiteral() string { return p.Tok.Literal }
func (p *TuplePattern) Span() Span           { return p.SpanVal }

type ListPattern struct {
	Tok      token.Token
	Elements []Pattern
	Rest     *RestPattern // nil if no `..rest` tail
	SpanVal  Span
}

func (p *ListPattern) patternNode()       {}
func (p *ListPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *ListPattern) Span() Span           { return p.SpanVal }

type StructFieldPattern struct {
	Name    string
	Pattern Pattern // nil for shorthand `{name}` (binds `name`)
}

type StructPattern struct {
	Tok      token.Token
	TypeName string
	Fields   []StructFieldPattern
	HasRest  bool // `{a, b, ..}` ignores remaining fields
	SpanVal  Span
}

func (p *StructPattern) patternNode()       {}
func (p *StructPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *StructPattern) Span() Span           { return p.SpanVal }

// VariantPattern matches an enum variant: `Option::Some(x)`, `Color::Red`.
type VariantPattern struct {
	Tok      token.Token
	Path     []string // e.g. ["Option", "Some"]
	Payload  []Pattern
	SpanVal  Span
}

func (p *VariantPattern) patternNode()       {}
func (p *VariantPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *VariantPattern) Span() Span           { return p.SpanVal }

type RangePattern struct {
	Tok       token.Token
	Low       Expression
	High      Expression
	Inclusive bool
	SpanVal   Span
}

func (p *RangePattern) patternNode()       {}
func (p *RangePattern) TokenLiteral() string { return p.Tok.Literal }
func (p *RangePattern) Span() Span           { return p.SpanVal }

// OrPattern requires (spec §3 invariant) that every alternative binds the
// same set of names with the same types; enforced by the resolver/inferencer,
// not the parser.
type OrPattern struct {
	Tok          token.Token
	Alternatives []Pattern
	SpanVal      Span
}

func (p *OrPattern) patternNode()       {}
func (p *OrPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *OrPattern) Span() Span           { return p.SpanVal }

type RestPattern struct {
	Tok     token.Token
	Name    string // empty for anonymous `..`
	SpanVal Span
}

func (p *RestPattern) patternNode()       {}
func (p *RestPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *RestPattern) Span() Span           { return p.SpanVal }

// AtBindingPattern is `name @ pattern`.
type AtBindingPattern struct {
	Tok     token.Token
	Name    string
	Pattern Pattern
	SpanVal Span
}

func (p *AtBindingPattern) patternNode()       {}
func (p *AtBindingPattern) TokenLiteral() string { return p.Tok.Literal }
func (p *AtBindingPattern) Span() Span           { return p.SpanVal }
