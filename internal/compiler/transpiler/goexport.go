package transpiler

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/utils"
)

// goEmitter is the Go-target counterpart to rustEmitter, grounded on
// generator.Generator.generateWithComponents: build the whole file as text
// in a strings.Builder, then run it through go/format.Source once at the
// end — the teacher's determinism trick, reused here so Transpile's
// byte-identical-output contract (spec §4.7) holds regardless of
// incidental whitespace choices made while walking the tree.
type goEmitter struct {
	buf     strings.Builder
	indent  int
	opts    Options
	globals map[string]bool // names of module-level vars, which carry a paired *Mu sync.Mutex
}

func transpileGo(mod *ast.CModule, opts Options) (*Result, error) {
	e := &goEmitter{opts: opts, globals: map[string]bool{}}
	e.emit("package main\n\n")
	e.emit("import (\n\t\"fmt\"\n\t\"sync\"\n)\n\n")
	e.emitPrelude()

	if len(mod.Globals) > 0 {
		for _, g := range mod.Globals {
			e.globals[g.Name] = true
		}
		e.emit("var (\n")
		e.indent++
		for _, g := range mod.Globals {
			e.emitIndent()
			e.emit("%sMu sync.Mutex\n", g.Name)
			e.emitIndent()
			e.emit("%s = %s\n", g.Name, e.expr(g.Value))
		}
		e.indent--
		e.emit(")\n\n")
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

	formatted, err := format.Source([]byte(e.buf.String()))
	if err != nil {
		return &Result{Code: e.buf.String()}, fmt.Errorf("transpiler: generated Go did not format cleanly: %w", err)
	}
	return &Result{Code: string(formatted)}, nil
}

// emitPrelude defines the runtime helpers the expression emitter references
// unconditionally (makeRange for CRange, ternary for CIf-as-expression), plus
// a blank use of fmt so the unconditional import above never goes unused on
// a module with no CFormat nodes.
func (e *goEmitter) emitPrelude() {
	e.emit("var _ = fmt.Sprintf\n\n")
	e.emit("func makeRange(start, end interface{}) []interface{} {\n")
	e.emit("\tlo, hi := start.(int), end.(int)\n")
	e.emit("\tout := make([]interface{}, 0, hi-lo)\n")
	e.emit("\tfor i := lo; i < hi; i++ {\n")
	e.emit("\t\tout = append(out, i)\n")
	e.emit("\t}\n")
	e.emit("\treturn out\n")
	e.emit("}\n\n")
	e.emit("func ternary(cond interface{}, then, els func() interface{}) interface{} {\n")
	e.emit("\tif cond.(bool) {\n")
	e.emit("\t\treturn then()\n")
	e.emit("\t}\n")
	e.emit("\treturn els()\n")
	e.emit("}\n\n")
}

func (e *goEmitter) emit(format string, args ...interface{}) {
	fmt.Fprintf(&e.buf, format, args...)
}

func (e *goEmitter) emitIndent() {
	e.buf.WriteString(strings.Repeat("\t", e.indent))
}

// emitStruct renders a struct declaration with its type name and field names
// canonicalized to exported Go identifiers via utils.ToPascalCase, since a
// Ruchy name like `user_id` must become `UserID` to be a legal field
// accessed as `p.UserID` from other emitted declarations.
func (e *goEmitter) emitStruct(d *ast.CStructDecl) {
	e.emit("type %s struct {\n", utils.ToPascalCase(d.Name))
	e.indent++
	for _, f := range d.Fields {
		e.emitIndent()
		e.emit("%s interface{}\n", utils.ToPascalCase(f))
	}
	e.indent--
	e.emit("}\n")
}

func (e *goEmitter) emitEnum(d *ast.CEnumDecl) {
	name := utils.ToPascalCase(d.Name)
	e.emit("type %s int\n\n", name)
	e.emit("const (\n")
	e.indent++
	for i, v := range d.Variants {
		e.emitIndent()
		if i == 0 {
			e.emit("%s_%s %s = iota\n", name, utils.ToPascalCase(v), name)
		} else {
			e.emit("%s_%s\n", name, utils.ToPascalCase(v))
		}
	}
	e.indent--
	e.emit(")\n")
}

func (e *goEmitter) emitFunc(d *ast.CFuncDecl) {
	params := make([]string, len(d.Fn.Params))
	for i, p := range d.Fn.Params {
		params[i] = p + " interface{}"
	}
	e.emit("func %s(%s) interface{} {\n", d.Name, strings.Join(params, ", "))
	e.indent++
	e.block(d.Fn.Body)
	e.indent--
	e.emit("}\n")
}

func (e *goEmitter) block(n ast.CoreNode) {
	blk, ok := n.(*ast.CBlock)
	if !ok {
		e.emitIndent()
		e.emit("return %s\n", e.expr(n))
		return
	}
	for i, s := range blk.Stmts {
		if i == len(blk.Stmts)-1 {
			if _, isReturn := s.(*ast.CReturn); !isReturn {
				e.emitIndent()
				e.emit("return %s\n", e.expr(s))
				continue
			}
		}
		e.stmt(s)
	}
}

func (e *goEmitter) stmt(n ast.CoreNode) {
	switch x := n.(type) {
	case *ast.CLet:
		e.emitIndent()
		e.emit("%s := %s\n", x.Name, e.expr(x.Value))
		e.stmt(x.Body)
	case *ast.CIf:
		e.emitIndent()
		e.emit("if %s {\n", e.expr(x.Cond))
		e.indent++
		e.block(x.Then)
		e.indent--
		e.emitIndent()
		if x.Else != nil {
			e.emit("} else {\n")
			e.indent++
			e.block(x.Else)
			e.indent--
			e.emitIndent()
			e.emit("}\n")
		} else {
			e.emit("}\n")
		}
	case *ast.CWhile:
		e.emitIndent()
		e.emit("for %s {\n", e.expr(x.Cond))
		e.indent++
		e.block(x.Body)
		e.indent--
		e.emitIndent()
		e.emit("}\n")
	case *ast.CReturn:
		e.emitIndent()
		if x.Value == nil {
			e.emit("return\n")
		} else {
			e.emit("return %s\n", e.expr(x.Value))
		}
	case *ast.CBreak:
		e.emitIndent()
		e.emit("break\n")
	case *ast.CContinue:
		e.emitIndent()
		e.emit("continue\n")
	case *ast.CThrow:
		e.emitIndent()
		e.emit("panic(%s)\n", e.expr(x.Value))
	case *ast.CBlock:
		e.block(x)
	default:
		e.emitIndent()
		e.emit("_ = %s\n", e.expr(n))
	}
}

func (e *goEmitter) expr(n ast.CoreNode) string {
	switch x := n.(type) {
	case *ast.CLit:
		return e.lit(x)
	case *ast.CVar:
		if e.globals[x.Name] {
			return fmt.Sprintf("func() interface{} { %sMu.Lock(); defer %sMu.Unlock(); return %s }()", x.Name, x.Name, x.Name)
		}
		return x.Name
	case *ast.CLambda:
		params := make([]string, len(x.Params))
		for i, p := range x.Params {
			params[i] = p + " interface{}"
		}
		return fmt.Sprintf("func(%s) interface{} { return %s }", strings.Join(params, ", "), e.expr(x.Body))
	case *ast.CCall:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a)
		}
		if cv, ok := x.Callee.(*ast.CVar); ok && len(args) == 2 && strings.HasPrefix(cv.Name, "__binop_") {
			if op := strings.TrimPrefix(cv.Name, "__binop_"); strings.Contains(" + - * / % == != < > <= >= && || & | ^ << >> ", " "+op+" ") {
				return fmt.Sprintf("(%s %s %s)", args[0], op, args[1])
			}
		}
		return fmt.Sprintf("%s(%s)", e.expr(x.Callee), strings.Join(args, ", "))
	case *ast.CAssign:
		if gv, ok := x.Target.(*ast.CVar); ok && e.globals[gv.Name] {
			return fmt.Sprintf("func() interface{} { %sMu.Lock(); defer %sMu.Unlock(); %s = %s; return %s }()",
				gv.Name, gv.Name, gv.Name, e.expr(x.Value), gv.Name)
		}
		return fmt.Sprintf("%s = %s", e.expr(x.Target), e.expr(x.Value))
	case *ast.CFieldAccess:
		return fmt.Sprintf("%s.%s", e.expr(x.Receiver), utils.ToPascalCase(x.Field))
	case *ast.CIndex:
		return fmt.Sprintf("%s[%s]", e.expr(x.X), e.expr(x.Index))
	case *ast.CListLit:
		return fmt.Sprintf("[]interface{}{%s}", e.exprList(x.Elements))
	case *ast.CTupleLit:
		return fmt.Sprintf("[]interface{}{%s}", e.exprList(x.Elements))
	case *ast.CFormat:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a)
		}
		if len(args) == 0 {
			return fmt.Sprintf("%q", x.Template)
		}
		return fmt.Sprintf("fmt.Sprintf(%q, %s)", x.Template, strings.Join(args, ", "))
	case *ast.CRange:
		return fmt.Sprintf("makeRange(%s, %s)", e.expr(x.Start), e.expr(x.End))
	case *ast.CIf:
		return fmt.Sprintf("ternary(%s, func() interface{} { return %s }, func() interface{} { return %s })",
			e.expr(x.Cond), e.expr(x.Then), e.elseExpr(x.Else))
	case *ast.CBlock:
		if len(x.Stmts) == 0 {
			return "nil"
		}
		return e.expr(x.Stmts[len(x.Stmts)-1])
	default:
		return "nil /* unsupported */"
	}
}

func (e *goEmitter) elseExpr(n ast.CoreNode) string {
	if n == nil {
		return "nil"
	}
	return e.expr(n)
}

func (e *goEmitter) exprList(nodes []ast.CoreNode) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = e.expr(n)
	}
	return strings.Join(parts, ", ")
}

func (e *goEmitter) lit(x *ast.CLit) string {
	switch x.Kind {
	case "string":
		return fmt.Sprintf("%q", x.Value)
	case "char":
		return fmt.Sprintf("%q", x.Value)
	case "nil":
		return "nil"
	default:
		return x.Value
	}
}
