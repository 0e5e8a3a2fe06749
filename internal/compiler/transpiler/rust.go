package transpiler

import (
	"fmt"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
)

// rustEmitter walks the core AST and renders Rust source text, grounded on
// the teacher's Transpiler buffer/indent/emit idiom (script/transpiler.go).
// Zero unsafe: never emits raw pointers, `unsafe` blocks, or `static mut`
// (spec §4.7 "Key rules"); mutable module globals become
// `LazyLock<Mutex<T>>` cells instead.
type rustEmitter struct {
	buf       strings.Builder
	indent    int
	genLine   int
	sourceMap *SourceMap
	opts      Options
	globals   map[string]string // core-AST global name -> its LazyLock<Mutex<_>> static identifier
}

func transpileRust(mod *ast.CModule, opts Options) (*Result, error) {
	e := &rustEmitter{sourceMap: &SourceMap{}, opts: opts, globals: map[string]string{}}

	if len(mod.Globals) > 0 {
		e.emit("use std::sync::{LazyLock, Mutex};\n\n")
		for _, g := range mod.Globals {
			e.globals[g.Name] = strings.ToUpper(g.Name)
			e.emitGlobal(g)
		}
		e.emit("\n")
	}

	for _, d := range mod.Decls {
		switch decl := d.(type) {
		case *ast.CStructDecl:
			e.emitStruct(decl)
		case *ast.CEnumDecl:
			e.emitEnum(decl)
		case *ast.CFuncDecl:
			e.emitFunc(decl)
		}
		e.emit("\n")
	}

	return &Result{Code: e.buf.String(), SourceMap: e.sourceMap}, nil
}

func (e *rustEmitter) emit(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	e.buf.WriteString(s)
	e.genLine += strings.Count(s, "\n")
}

func (e *rustEmitter) emitIndent() {
	e.buf.WriteString(strings.Repeat("    ", e.indent))
}

// emitGlobal renders a module-level `let` as a lazily-initialized, mutex
// guarded static — the only race-free way to model process-wide mutable
// state in the target language (spec §5 "Globals").
func (e *rustEmitter) emitGlobal(g *ast.CLet) {
	e.emitIndent()
	e.emit("static %s: LazyLock<Mutex<_>> = LazyLock::new(|| Mutex::new(%s));\n",
		strings.ToUpper(g.Name), e.expr(g.Value))
}

func (e *rustEmitter) emitStruct(d *ast.CStructDecl) {
	e.emit("#[derive(Debug, Clone)]\n")
	e.emit("pub struct %s {\n", d.Name)
	e.indent++
	for _, f := range d.Fields {
		e.emitIndent()
		e.emit("pub %s: Box<dyn std::any::Any>,\n", f)
	}
	e.indent--
	e.emit("}\n")
}

func (e *rustEmitter) emitEnum(d *ast.CEnumDecl) {
	e.emit("#[derive(Debug, Clone)]\n")
	e.emit("pub enum %s {\n", d.Name)
	e.indent++
	for _, v := range d.Variants {
		e.emitIndent()
		e.emit("%s,\n", v)
	}
	e.indent--
	e.emit("}\n")
}

// emitFunc emits `fn name(p: impl Debug + Clone, ...) -> impl Debug { ... }`.
// Untyped parameters become argument-position `impl Trait` generics (spec
// §4.7 "Generic inference gaps"); the body's tail expression is left
// unterminated per Rust's expression-return convention (spec §4.7 "Return
// type inference ... do not double-wrap an expression body in braces").
func (e *rustEmitter) emitFunc(d *ast.CFuncDecl) {
	e.emitIndent()
	asyncKw := ""
	if d.Fn.IsAsync {
		asyncKw = "async "
	}
	e.emit("pub %sfn %s(", asyncKw, d.Name)
	for i, p := range d.Fn.Params {
		if i > 0 {
			e.emit(", ")
		}
		e.emit("%s: impl std::fmt::Debug + Clone", p)
	}
	e.emit(") -> impl std::fmt::Debug {\n")
	e.indent++
	e.block(d.Fn.Body, true)
	e.indent--
	e.emitIndent()
	e.emit("}\n")
}

// block emits a CBlock's statements; tail indicates whether the block's
// trailing value should be left as an unterminated tail expression (Rust
// convention for the function's implicit return value) or dropped with a
// semicolon.
func (e *rustEmitter) block(n ast.CoreNode, tail bool) {
	blk, ok := n.(*ast.CBlock)
	if !ok {
		e.emitIndent()
		if tail {
			e.emit("%s\n", e.expr(n))
		} else {
			e.emit("%s;\n", e.expr(n))
		}
		return
	}
	for i, s := range blk.Stmts {
		last := i == len(blk.Stmts)-1
		e.stmt(s, tail && last)
	}
}

// stmt renders one core node in statement position.
func (e *rustEmitter) stmt(n ast.CoreNode, asTail bool) {
	switch x := n.(type) {
	case *ast.CLet:
		e.emitIndent()
		e.emit("let mut %s = %s;\n", x.Name, e.expr(x.Value))
		e.stmt(x.Body, asTail)
	case *ast.CIf:
		e.emitIndent()
		e.emit("if %s {\n", e.expr(x.Cond))
		e.indent++
		e.block(x.Then, asTail)
		e.indent--
		e.emitIndent()
		if x.Else != nil {
			e.emit("} else {\n")
			e.indent++
			e.block(x.Else, asTail)
			e.indent--
			e.emitIndent()
			e.emit("}\n")
		} else {
			e.emit("}\n")
		}
	case *ast.CWhile:
		e.emitIndent()
		e.emit("while %s {\n", e.expr(x.Cond))
		e.indent++
		e.block(x.Body, false)
		e.indent--
		e.emitIndent()
		e.emit("}\n")
	case *ast.CMatch:
		e.emitIndent()
		e.emit("%s\n", e.matchExpr(x))
	case *ast.CReturn:
		e.emitIndent()
		if x.Value == nil {
			e.emit("return;\n")
		} else {
			e.emit("return %s;\n", e.expr(x.Value))
		}
	case *ast.CBreak:
		e.emitIndent()
		e.emit("break;\n")
	case *ast.CContinue:
		e.emitIndent()
		e.emit("continue;\n")
	case *ast.CThrow:
		e.emitIndent()
		e.emit("return Err(%s);\n", e.expr(x.Value))
	case *ast.CBlock:
		e.block(x, asTail)
	default:
		e.emitIndent()
		if asTail {
			e.emit("%s\n", e.expr(n))
		} else {
			e.emit("%s;\n", e.expr(n))
		}
	}
}

// expr renders one core node in expression position as a single Rust
// expression string, recursively. String literals bound to an owned
// context emit `.to_string()` rather than relying on an implicit coercion
// (spec §4.7 "String coercion").
func (e *rustEmitter) expr(n ast.CoreNode) string {
	switch x := n.(type) {
	case *ast.CLit:
		return e.lit(x)
	case *ast.CVar:
		if static, ok := e.globals[x.Name]; ok {
			return fmt.Sprintf("%s.lock().unwrap().clone()", static)
		}
		return x.Name
	case *ast.CLambda:
		params := strings.Join(x.Params, ", ")
		return fmt.Sprintf("|%s| { %s }", params, e.expr(x.Body))
	case *ast.CCall:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a)
		}
		return fmt.Sprintf("%s(%s)", e.expr(x.Callee), strings.Join(args, ", "))
	case *ast.CAssign:
		if gv, ok := x.Target.(*ast.CVar); ok {
			if static, ok2 := e.globals[gv.Name]; ok2 {
				return fmt.Sprintf("*%s.lock().unwrap() = %s", static, e.expr(x.Value))
			}
		}
		return fmt.Sprintf("%s = %s", e.expr(x.Target), e.expr(x.Value))
	case *ast.CFieldAccess:
		return fmt.Sprintf("%s.%s", e.expr(x.Receiver), x.Field)
	case *ast.CIndex:
		return fmt.Sprintf("%s[%s as usize]", e.expr(x.X), e.expr(x.Index))
	case *ast.CListLit:
		return fmt.Sprintf("vec![%s]", e.exprList(x.Elements))
	case *ast.CTupleLit:
		return fmt.Sprintf("(%s)", e.exprList(x.Elements))
	case *ast.CSetLit:
		return fmt.Sprintf("std::collections::HashSet::from([%s])", e.exprList(x.Elements))
	case *ast.CObjectLit, *ast.CStructLit:
		return e.objectLit(x)
	case *ast.CFormat:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a)
		}
		template := strings.ReplaceAll(x.Template, "%v", "{}")
		if len(args) == 0 {
			return fmt.Sprintf("format!(%q)", template)
		}
		return fmt.Sprintf("format!(%q, %s)", template, strings.Join(args, ", "))
	case *ast.CRange:
		op := ".."
		if x.Inclusive {
			op = "..="
		}
		return fmt.Sprintf("(%s%s%s)", e.expr(x.Start), op, e.expr(x.End))
	case *ast.CSpawn:
		return fmt.Sprintf("std::thread::spawn(move || { %s })", e.expr(x.Body))
	case *ast.CAwait:
		return fmt.Sprintf("%s.await", e.expr(x.X))
	case *ast.CMatch:
		return e.matchExpr(x)
	case *ast.CIf:
		then := e.expr(x.Then)
		elseStr := "()"
		if x.Else != nil {
			elseStr = e.expr(x.Else)
		}
		return fmt.Sprintf("if %s { %s } else { %s }", e.expr(x.Cond), then, elseStr)
	case *ast.CBlock:
		if len(x.Stmts) == 0 {
			return "()"
		}
		return e.expr(x.Stmts[len(x.Stmts)-1])
	default:
		return fmt.Sprintf("/* unsupported node %T */ ()", n)
	}
}

func (e *rustEmitter) exprList(nodes []ast.CoreNode) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = e.expr(n)
	}
	return strings.Join(parts, ", ")
}

func (e *rustEmitter) objectLit(n ast.CoreNode) string {
	switch x := n.(type) {
	case *ast.CObjectLit:
		parts := make([]string, len(x.Keys))
		for i, k := range x.Keys {
			parts[i] = fmt.Sprintf("(%q, %s)", k, e.expr(x.Values[i]))
		}
		return fmt.Sprintf("std::collections::HashMap::from([%s])", strings.Join(parts, ", "))
	case *ast.CStructLit:
		parts := make([]string, len(x.Keys))
		for i, k := range x.Keys {
			parts[i] = fmt.Sprintf("%s: %s", k, e.expr(x.Values[i]))
		}
		return fmt.Sprintf("%s { %s }", x.TypeName, strings.Join(parts, ", "))
	default:
		return "()"
	}
}

func (e *rustEmitter) lit(x *ast.CLit) string {
	switch x.Kind {
	case "int":
		if x.Suffix != "" {
			return x.Value + x.Suffix
		}
		return x.Value
	case "float":
		return x.Value
	case "bool":
		return x.Value
	case "char":
		return fmt.Sprintf("'%s'", x.Value)
	case "byte":
		return fmt.Sprintf("b'%s'", x.Value)
	case "string":
		return fmt.Sprintf("%q.to_string()", x.Value)
	case "nil":
		return "()"
	default:
		return "()"
	}
}

// matchExpr renders a CMatch as a Rust `match` over the shared pattern
// sublanguage (spec §3 "Patterns" map directly onto Rust match arms).
func (e *rustEmitter) matchExpr(x *ast.CMatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "match %s {\n", e.expr(x.Subject))
	for _, arm := range x.Arms {
		pat := e.pattern(arm.Pattern)
		guard := ""
		if arm.Guard != nil {
			guard = fmt.Sprintf(" if %s", e.expr(arm.Guard))
		}
		fmt.Fprintf(&b, "%s    %s%s => %s,\n", strings.Repeat("    ", e.indent), pat, guard, e.expr(arm.Body))
	}
	fmt.Fprintf(&b, "%s}", strings.Repeat("    ", e.indent))
	return b.String()
}

func (e *rustEmitter) pattern(p ast.Pattern) string {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return "_"
	case *ast.IdentPattern:
		return pat.Name
	case *ast.LiteralPattern:
		return pat.TokenLiteral()
	case *ast.TuplePattern:
		parts := make([]string, len(pat.Elements))
		for i, sub := range pat.Elements {
			parts[i] = e.pattern(sub)
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case *ast.ListPattern:
		parts := make([]string, len(pat.Elements))
		for i, sub := range pat.Elements {
			parts[i] = e.pattern(sub)
		}
		rest := ""
		if pat.Rest != nil {
			rest = ", .."
		}
		return fmt.Sprintf("[%s%s]", strings.Join(parts, ", "), rest)
	case *ast.VariantPattern:
		name := strings.Join(pat.Path, "::")
		if len(pat.Payload) == 0 {
			return name
		}
		parts := make([]string, len(pat.Payload))
		for i, sub := range pat.Payload {
			parts[i] = e.pattern(sub)
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
	case *ast.OrPattern:
		parts := make([]string, len(pat.Alternatives))
		for i, alt := range pat.Alternatives {
			parts[i] = e.pattern(alt)
		}
		return strings.Join(parts, " | ")
	case *ast.AtBindingPattern:
		return fmt.Sprintf("%s @ %s", pat.Name, e.pattern(pat.Pattern))
	case *ast.RestPattern:
		return ".."
	default:
		return "_"
	}
}
