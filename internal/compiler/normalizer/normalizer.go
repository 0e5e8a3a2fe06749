// Package normalizer lowers the surface AST into the smaller core AST
// (spec §4.3), one core form per desugared surface construct: pipeline
// calls become CCall, for-loops become CWhile plus an iterator protocol,
// f-strings become CFormat, compound-assignment and increment/decrement
// become load+op+store CAssign, and the try-operator/try-catch both
// become CMatch on a Result-shaped value. Modeled on the teacher's
// one-surface-form-to-one-target-form transpiler methods, generalized to
// target ast.CoreNode instead of emitted text.
package normalizer

import (
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/token"
)

// Normalizer carries the alpha-renaming state across one file.
type Normalizer struct {
	diags   *errors.List
	nextID  ast.NodeID
	counter map[string]int  // base name -> next suffix, for alpha-renaming
	scopes  []map[string]string // surface name -> renamed name, one map per lexical scope
}

func New() *Normalizer {
	return &Normalizer{diags: errors.NewList(), counter: map[string]int{}}
}

func (n *Normalizer) Diagnostics() *errors.List { return n.diags }

func (n *Normalizer) id() ast.NodeID {
	n.nextID++
	return n.nextID
}

func (n *Normalizer) pushScope() { n.scopes = append(n.scopes, map[string]string{}) }
func (n *Normalizer) popScope()  { n.scopes = n.scopes[:len(n.scopes)-1] }

// bind introduces a fresh globally-unique name for a surface identifier,
// implementing the alpha-renaming pass (spec §4.3.2).
func (n *Normalizer) bind(name string) string {
	fresh := name
	if n.counter[name] > 0 {
		fresh = fmt.Sprintf("%s$%d", name, n.counter[name])
	}
	n.counter[name]++
	if len(n.scopes) > 0 {
		n.scopes[len(n.scopes)-1][name] = fresh
	}
	return fresh
}

// lookup resolves a surface identifier to its renamed form, innermost
// scope first; unresolved names pass through unchanged (module-level
// globals and not-yet-bound forward references are left to the resolver).
func (n *Normalizer) lookup(name string) string {
	for i := len(n.scopes) - 1; i >= 0; i-- {
		if renamed, ok := n.scopes[i][name]; ok {
			return renamed
		}
	}
	return name
}

// Normalize is the top-level entry point: surface ast.File -> ast.CModule.
func Normalize(f *ast.File) (*ast.CModule, *errors.List) {
	n := New()
	n.pushScope()
	mod := &ast.CModule{}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			mod.Decls = append(mod.Decls, n.normalizeFuncDecl(d))
		case *ast.StructDecl:
			mod.Decls = append(mod.Decls, n.normalizeStructDecl(d))
		case *ast.EnumDecl:
			mod.Decls = append(mod.Decls, n.normalizeEnumDecl(d))
		case *ast.LetStmt:
			mod.Globals = append(mod.Globals, n.normalizeLet(d))
		case *ast.TraitDecl, *ast.ImplDecl, *ast.TypeAliasDecl, *ast.ActorDecl, *ast.ImportDecl:
			// resolved/used by the resolver stage; nothing to lower here
		default:
			n.diags.Addf("normalizer", "UnsupportedTopLevel", 0, 0, "cannot normalize top-level form %T", decl)
		}
	}
	n.popScope()
	return mod, n.diags
}

func (n *Normalizer) normalizeFuncDecl(d *ast.FuncDecl) *ast.CFuncDecl {
	n.pushScope()
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = n.bind(p.Name)
	}
	body := n.normalizeBlock(d.Body)
	n.popScope()
	fn := &ast.CLambda{Params: params, Body: body, IsAsync: d.IsAsync}
	return &ast.CFuncDecl{Name: d.Name, Fn: fn}
}

func (n *Normalizer) normalizeStructDecl(d *ast.StructDecl) *ast.CStructDecl {
	fields := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = f.Name
	}
	return &ast.CStructDecl{Name: d.Name, Fields: fields}
}

func (n *Normalizer) normalizeEnumDecl(d *ast.EnumDecl) *ast.CEnumDecl {
	variants := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		variants[i] = v.Name
	}
	return &ast.CEnumDecl{Name: d.Name, Variants: variants}
}

// normalizeBlock sequences the statements of a surface block into a
// right-nested CLet/CBlock chain so that `let` bindings scope exactly
// over their following siblings (spec §4.3 "Core AST has no implicit
// block-scoped statement list").
func (n *Normalizer) normalizeBlock(b *ast.BlockStmt) ast.CoreNode {
	n.pushScope()
	defer n.popScope()
	return n.normalizeStmts(b.Stmts)
}

func (n *Normalizer) normalizeStmts(stmts []ast.Statement) ast.CoreNode {
	if len(stmts) == 0 {
		return &ast.CLit{Kind: "nil"}
	}
	head := stmts[0]
	rest := stmts[1:]

	if let, ok := head.(*ast.LetStmt); ok {
		value := n.normalizeExpr(let.Value)
		name := n.bind(let.Name)
		body := n.normalizeStmts(rest)
		return &ast.CLet{Name: name, Value: value, Body: body}
	}

	stmtNode := n.normalizeStmt(head)
	if len(rest) == 0 {
		return stmtNode
	}
	restNode := n.normalizeStmts(rest)
	return &ast.CBlock{Stmts: []ast.CoreNode{stmtNode, restNode}}
}

func (n *Normalizer) normalizeStmt(s ast.Statement) ast.CoreNode {
	switch st := s.(type) {
	case *ast.ExprStmt:
		return n.normalizeExpr(st.X)
	case *ast.ReturnStmt:
		var v ast.CoreNode
		if st.Value != nil {
			v = n.normalizeExpr(st.Value)
		}
		return &ast.CReturn{Value: v}
	case *ast.BreakStmt:
		return &ast.CBreak{}
	case *ast.ContinueStmt:
		return &ast.CContinue{}
	case *ast.ThrowStmt:
		return &ast.CThrow{Value: n.normalizeExpr(st.Value)}
	case *ast.AssignStmt:
		return n.normalizeAssign(st)
	case *ast.IfStmt:
		return n.normalizeIfStmt(st)
	case *ast.ForStmt:
		return n.normalizeFor(st)
	case *ast.WhileStmt:
		return &ast.CWhile{Cond: n.normalizeExpr(st.Cond), Body: n.normalizeBlock(st.Body)}
	case *ast.LoopStmt:
		return &ast.CWhile{Cond: &ast.CLit{Kind: "bool", Value: "true"}, Body: n.normalizeBlock(st.Body)}
	case *ast.TryCatchStmt:
		return n.normalizeTryCatch(st)
	case *ast.BlockStmt:
		return n.normalizeBlock(st)
	case *ast.LetStmt:
		// reachable only when a let appears as the sole remaining statement
		// with no following body: bind for side effect, body is nil/unit.
		value := n.normalizeExpr(st.Value)
		name := n.bind(st.Name)
		return &ast.CLet{Name: name, Value: value, Body: &ast.CLit{Kind: "nil"}}
	case *ast.FuncDecl:
		return n.normalizeFuncDecl(st)
	default:
		n.diags.Addf("normalizer", "UnsupportedStatement", 0, 0, "cannot normalize statement %T", s)
		return &ast.CLit{Kind: "nil"}
	}
}

// normalizeAssign desugars both plain `=` and compound `+=`/`-=`/... into
// a load+op+store sequence (spec §4.3.1).
func (n *Normalizer) normalizeAssign(st *ast.AssignStmt) ast.CoreNode {
	target := n.normalizeTarget(st.Target)
	value := n.normalizeExpr(st.Value)

	op := compoundOp(st.Op)
	if op == "" {
		return &ast.CAssign{Target: target, Value: value}
	}
	combined := &ast.CCall{
		Callee: &ast.CVar{Name: "__binop_" + op, Depth: -1},
		Args:   []ast.CoreNode{target, value},
	}
	return &ast.CAssign{Target: target, Value: combined}
}

// compoundOp maps a compound-assignment token to its underlying binary
// operator; plain `=` returns "" (no load+op+store desugaring needed).
func compoundOp(op token.TokenType) string {
	switch op {
	case token.PLUS_ASSIGN:
		return "+"
	case token.MINUS_ASSIGN:
		return "-"
	case token.STAR_ASSIGN:
		return "*"
	case token.SLASH_ASSIGN:
		return "/"
	case token.PERCENT_ASSIGN:
		return "%"
	default:
		return ""
	}
}

func (n *Normalizer) normalizeTarget(e ast.Expression) ast.CoreNode {
	switch x := e.(type) {
	case *ast.Ident:
		return &ast.CVar{Name: n.lookup(x.Name), Depth: -1}
	case *ast.IndexExpr:
		return &ast.CIndex{X: n.normalizeExpr(x.X), Index: n.normalizeExpr(x.Index)}
	case *ast.MemberExpr:
		return &ast.CFieldAccess{Receiver: n.normalizeExpr(x.Receiver), Field: x.Property}
	default:
		return n.normalizeExpr(e)
	}
}

func (n *Normalizer) normalizeIfStmt(st *ast.IfStmt) ast.CoreNode {
	var elseNode ast.CoreNode
	if st.ElseIf != nil {
		elseNode = n.normalizeIfStmt(st.ElseIf)
	} else if st.Else != nil {
		elseNode = n.normalizeBlock(st.Else)
	}
	return &ast.CIf{Cond: n.normalizeExpr(st.Cond), Then: n.normalizeBlock(st.Then), Else: elseNode}
}

// normalizeFor desugars `for x in iterable { body }` into a while loop
// driving an iterator protocol: a hidden cursor variable advanced by
// `__iter_next`, matched against Some/None each step (spec §4.3.1).
func (n *Normalizer) normalizeFor(st *ast.ForStmt) ast.CoreNode {
	iter := n.normalizeExpr(st.Iterable)
	cursorName := n.bind("__iter$" + st.VarName)
	n.pushScope()
	varName := n.bind(st.VarName)
	body := n.normalizeBlock(st.Body)
	n.popScope()

	nextCall := &ast.CCall{
		Callee: &ast.CVar{Name: "__iter_next", Depth: -1},
		Args:   []ast.CoreNode{&ast.CVar{Name: cursorName, Depth: -1}},
	}
	loopBody := &ast.CMatch{
		Subject: nextCall,
		Arms: []ast.CMatchArm{
			{
				Pattern: &ast.VariantPattern{Path: []string{"Some"}, Payload: []ast.Pattern{&ast.IdentPattern{Name: varName}}},
				Body:    &ast.CBlock{Stmts: []ast.CoreNode{body}},
			},
			{
				Pattern: &ast.VariantPattern{Path: []string{"None"}},
				Body:    &ast.CBreak{},
			},
		},
	}
	whileLoop := &ast.CWhile{Cond: &ast.CLit{Kind: "bool", Value: "true"}, Body: loopBody}
	return &ast.CLet{Name: cursorName, Value: iter, Body: whileLoop}
}

// normalizeTryCatch rewrites try/catch/finally onto CMatch over a
// Result-shaped wrapper (spec §9 "Normalizer rewrites try/catch to match
// on a Result-like wrapper"); a `finally` clause wraps the match in a
// CTryFinally node so the interpreter runs it even when the match arm
// returns, breaks, continues, or throws, rather than only when control
// falls through a flat CBlock.
func (n *Normalizer) normalizeTryCatch(st *ast.TryCatchStmt) ast.CoreNode {
	body := n.normalizeBlock(st.Body)
	wrapped := &ast.CCall{Callee: &ast.CVar{Name: "__try_wrap", Depth: -1}, Args: []ast.CoreNode{body}}

	arms := []ast.CMatchArm{{
		Pattern: &ast.VariantPattern{Path: []string{"Ok"}, Payload: []ast.Pattern{&ast.WildcardPattern{}}},
		Body:    &ast.CLit{Kind: "nil"},
	}}
	for _, c := range st.Catches {
		n.pushScope()
		cbody := n.normalizeBlock(c.Body)
		n.popScope()
		arms = append(arms, ast.CMatchArm{
			Pattern: &ast.VariantPattern{Path: []string{"Err"}, Payload: []ast.Pattern{c.Pattern}},
			Body:    cbody,
		})
	}
	matchNode := &ast.CMatch{Subject: wrapped, Arms: arms}

	if st.Finally != nil {
		finallyNode := n.normalizeBlock(st.Finally)
		return &ast.CTryFinally{Try: matchNode, Finally: finallyNode}
	}
	return matchNode
}

// ---------- Expressions ----------

func (n *Normalizer) normalizeExpr(e ast.Expression) ast.CoreNode {
	switch x := e.(type) {
	case *ast.Ident:
		return &ast.CVar{Name: n.lookup(x.Name), Depth: -1}
	case *ast.IntLit:
		return &ast.CLit{Kind: "int", Value: x.Value, Suffix: x.Suffix}
	case *ast.FloatLit:
		return &ast.CLit{Kind: "float", Value: x.Value}
	case *ast.BoolLit:
		return &ast.CLit{Kind: "bool", Value: boolStr(x.Value)}
	case *ast.NilLit:
		return &ast.CLit{Kind: "nil"}
	case *ast.CharLit:
		return &ast.CLit{Kind: "char", Value: string(x.Value)}
	case *ast.ByteLit:
		return &ast.CLit{Kind: "byte", Value: string(rune(x.Value))}
	case *ast.StringLit:
		return &ast.CLit{Kind: "string", Value: x.Value}
	case *ast.FStringLit:
		return n.normalizeFString(x)
	case *ast.ListLit:
		return &ast.CListLit{Elements: n.normalizeExprList(x.Elements)}
	case *ast.TupleLit:
		return &ast.CTupleLit{Elements: n.normalizeExprList(x.Elements)}
	case *ast.SetLit:
		return &ast.CSetLit{Elements: n.normalizeExprList(x.Elements)}
	case *ast.ObjectLit:
		keys := make([]string, len(x.Fields))
		vals := make([]ast.CoreNode, len(x.Fields))
		for i, f := range x.Fields {
			keys[i] = f.Key
			vals[i] = n.normalizeExpr(f.Value)
		}
		return &ast.CObjectLit{Keys: keys, Values: vals}
	case *ast.StructLit:
		keys := make([]string, len(x.Fields))
		vals := make([]ast.CoreNode, len(x.Fields))
		for i, f := range x.Fields {
			keys[i] = f.Key
			vals[i] = n.normalizeExpr(f.Value)
		}
		return &ast.CStructLit{TypeName: x.Name, Keys: keys, Values: vals}
	case *ast.RangeExpr:
		return &ast.CRange{Start: n.normalizeExpr(x.Start), End: n.normalizeExpr(x.End), Inclusive: x.Inclusive}
	case *ast.UnaryExpr:
		op := "__unop_" + x.Op
		if x.Postfix {
			// `i++`/`i--` desugar to load+op+store, evaluating to the
			// pre-increment value (spec §4.3.1).
			return n.normalizePostfixIncDec(x)
		}
		return &ast.CCall{Callee: &ast.CVar{Name: op, Depth: -1}, Args: []ast.CoreNode{n.normalizeExpr(x.Operand)}}
	case *ast.BinaryExpr:
		return &ast.CCall{
			Callee: &ast.CVar{Name: "__binop_" + x.Op, Depth: -1},
			Args:   []ast.CoreNode{n.normalizeExpr(x.Left), n.normalizeExpr(x.Right)},
		}
	case *ast.CallExpr:
		return &ast.CCall{Callee: n.normalizeExpr(x.Callee), Args: n.normalizeExprList(x.Args)}
	case *ast.MemberExpr:
		return &ast.CFieldAccess{Receiver: n.normalizeExpr(x.Receiver), Field: x.Property}
	case *ast.IndexExpr:
		return &ast.CIndex{X: n.normalizeExpr(x.X), Index: n.normalizeExpr(x.Index)}
	case *ast.IfExpr:
		var elseNode ast.CoreNode
		if x.Else != nil {
			elseNode = n.normalizeExpr(x.Else)
		}
		return &ast.CIf{Cond: n.normalizeExpr(x.Cond), Then: n.normalizeExpr(x.Then), Else: elseNode}
	case *ast.MatchExpr:
		return n.normalizeMatch(x)
	case *ast.TryExpr:
		return n.normalizeTryOperator(x)
	case *ast.PipelineExpr:
		// `a |> f` desugars to `f(a)` (spec §4.3.1 "pipeline -> CCall").
		return &ast.CCall{Callee: n.normalizeExpr(x.Right), Args: []ast.CoreNode{n.normalizeExpr(x.Left)}}
	case *ast.SpawnExpr:
		return &ast.CSpawn{Body: n.normalizeExpr(x.Body)}
	case *ast.ActorSendExpr:
		return &ast.CActorSend{Actor: n.normalizeExpr(x.Actor), Message: n.normalizeExpr(x.Message)}
	case *ast.ActorQueryExpr:
		return &ast.CActorQuery{Actor: n.normalizeExpr(x.Actor), Message: n.normalizeExpr(x.Message)}
	case *ast.AwaitExpr:
		return &ast.CAwait{X: n.normalizeExpr(x.X)}
	case *ast.OkExpr:
		return &ast.CCall{Callee: &ast.CVar{Name: "Ok", Depth: -1}, Args: []ast.CoreNode{n.normalizeExpr(x.Value)}}
	case *ast.ErrExpr:
		return &ast.CCall{Callee: &ast.CVar{Name: "Err", Depth: -1}, Args: []ast.CoreNode{n.normalizeExpr(x.Value)}}
	case *ast.SomeExpr:
		return &ast.CCall{Callee: &ast.CVar{Name: "Some", Depth: -1}, Args: []ast.CoreNode{n.normalizeExpr(x.Value)}}
	case *ast.NoneExpr:
		return &ast.CVar{Name: "None", Depth: -1}
	case *ast.LambdaExpr:
		return n.normalizeLambda(x)
	case *ast.MacroCall:
		n.diags.Addf("normalizer", "UnsupportedMacro", 0, 0, "macro %q has no core-AST lowering", x.Name)
		return &ast.CLit{Kind: "nil"}
	case *ast.BadExpr:
		return &ast.CLit{Kind: "nil"}
	default:
		n.diags.Addf("normalizer", "UnsupportedExpression", 0, 0, "cannot normalize expression %T", e)
		return &ast.CLit{Kind: "nil"}
	}
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (n *Normalizer) normalizeExprList(list []ast.Expression) []ast.CoreNode {
	out := make([]ast.CoreNode, len(list))
	for i, e := range list {
		out[i] = n.normalizeExpr(e)
	}
	return out
}

func (n *Normalizer) normalizeLet(s *ast.LetStmt) *ast.CLet {
	value := n.normalizeExpr(s.Value)
	name := n.bind(s.Name)
	return &ast.CLet{Name: name, Value: value, Body: &ast.CLit{Kind: "nil"}}
}

// normalizeFString turns interpolation parts into a fmt-style template
// plus an operand list (spec §4.3.1 "f-string -> CFormat"); every embedded
// expression is coerced via ToString regardless of static type, per
// DESIGN.md Open Question 4.
func (n *Normalizer) normalizeFString(f *ast.FStringLit) ast.CoreNode {
	var template string
	var args []ast.CoreNode
	for _, part := range f.Parts {
		if part.IsExpr {
			template += "%v"
			args = append(args, n.normalizeExpr(part.Expr))
		} else {
			template += escapePercent(part.Text)
		}
	}
	return &ast.CFormat{Template: template, Args: args}
}

func escapePercent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			out = append(out, '%', '%')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func (n *Normalizer) normalizeMatch(m *ast.MatchExpr) ast.CoreNode {
	subject := n.normalizeExpr(m.Subject)
	arms := make([]ast.CMatchArm, len(m.Arms))
	for i, a := range m.Arms {
		n.pushScope()
		var guard ast.CoreNode
		if a.Guard != nil {
			guard = n.normalizeExpr(a.Guard)
		}
		body := n.normalizeExpr(a.Body)
		n.popScope()
		arms[i] = ast.CMatchArm{Pattern: a.Pattern, Guard: guard, Body: body}
	}
	return &ast.CMatch{Subject: subject, Arms: arms}
}

// normalizeTryOperator desugars postfix `e?` into a match over the
// Result/Option value of `e`: Ok(v)/Some(v) unwrap to v, Err(e)/None
// short-circuit the enclosing function with an early CReturn (spec §9).
func (n *Normalizer) normalizeTryOperator(x *ast.TryExpr) ast.CoreNode {
	subject := n.normalizeExpr(x.X)
	bindName := n.bind("__try$v")
	return &ast.CMatch{
		Subject: subject,
		Arms: []ast.CMatchArm{
			{
				Pattern: &ast.VariantPattern{Path: []string{"Ok"}, Payload: []ast.Pattern{&ast.IdentPattern{Name: bindName}}},
				Body:    &ast.CVar{Name: bindName, Depth: -1},
			},
			{
				Pattern: &ast.VariantPattern{Path: []string{"Some"}, Payload: []ast.Pattern{&ast.IdentPattern{Name: bindName}}},
				Body:    &ast.CVar{Name: bindName, Depth: -1},
			},
			{
				Pattern: &ast.VariantPattern{Path: []string{"Err"}, Payload: []ast.Pattern{&ast.IdentPattern{Name: bindName}}},
				Body:    &ast.CReturn{Value: &ast.CCall{Callee: &ast.CVar{Name: "Err", Depth: -1}, Args: []ast.CoreNode{&ast.CVar{Name: bindName, Depth: -1}}}},
			},
			{
				Pattern: &ast.VariantPattern{Path: []string{"None"}},
				Body:    &ast.CReturn{Value: &ast.CVar{Name: "None", Depth: -1}},
			},
		},
	}
}

func (n *Normalizer) normalizeLambda(l *ast.LambdaExpr) ast.CoreNode {
	n.pushScope()
	params := make([]string, len(l.Params))
	for i, p := range l.Params {
		params[i] = n.bind(p.Name)
	}
	var body ast.CoreNode
	switch b := l.Body.(type) {
	case *ast.BlockStmt:
		body = n.normalizeBlock(b)
	case ast.Expression:
		body = n.normalizeExpr(b)
	}
	n.popScope()
	return &ast.CLambda{Params: params, Body: body}
}

// normalizePostfixIncDec desugars `i++`/`i--` to an assignment sequenced
// with the pre-mutation value (spec §4.3.1 "increment/decrement -> load+op+store").
func (n *Normalizer) normalizePostfixIncDec(x *ast.UnaryExpr) ast.CoreNode {
	target := n.normalizeTarget(x.Operand)
	op := "+"
	if x.Op == "--" {
		op = "-"
	}
	updated := &ast.CCall{
		Callee: &ast.CVar{Name: "__binop_" + op, Depth: -1},
		Args:   []ast.CoreNode{target, &ast.CLit{Kind: "int", Value: "1"}},
	}
	assign := &ast.CAssign{Target: target, Value: updated}
	old := n.bind("__incdec_old")
	return &ast.CLet{Name: old, Value: target, Body: &ast.CBlock{Stmts: []ast.CoreNode{assign, &ast.CVar{Name: old, Depth: -1}}}}
}
