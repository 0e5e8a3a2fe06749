// Package infer implements Hindley-Milner type inference with effect
// tracking over the core AST (spec §4.5). Inference runs in synthesis mode
// only (given a term, produce a type); there is no checking mode that
// pushes an expected type into a term. let-bindings generalize, and
// function parameters receive fresh type variables unified from use. Hand-rolled rather than built on a general
// constraint-solving library: the pack's available HM implementations
// target context-free algebraic expressions, the wrong shape for a
// normalized imperative core AST with mutation and effects (see
// DESIGN.md).
package infer

import (
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/resolver"
	"github.com/ruchy-lang/ruchy/internal/compiler/types"
)

// Substitution maps type-variable ids to their resolved type.
type Substitution map[int]*types.Type

func (s Substitution) apply(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KVar:
		if bound, ok := s[t.VarID]; ok {
			return s.apply(bound)
		}
		return t
	case types.KArray:
		return types.Array(s.apply(t.Elem))
	case types.KOption:
		return types.Option(s.apply(t.Elem))
	case types.KReference:
		return types.Reference(s.apply(t.Elem), t.Mutable)
	case types.KTuple:
		elems := make([]*types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = s.apply(e)
		}
		return types.Tuple(elems...)
	case types.KResult:
		return types.Result(s.apply(t.Result), s.apply(t.ErrT))
	case types.KFunction:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = s.apply(p)
		}
		fn := types.Function(params, s.apply(t.Result))
		fn.Effects = t.Effects
		return fn
	case types.KGeneric:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = s.apply(p)
		}
		return &types.Type{Kind: types.KGeneric, Name: t.Name, Params: params}
	default:
		return t
	}
}

// TypeEnv is a persistent-ish (copy-on-extend) mapping from core-variable
// name to a type scheme; generalization/instantiation happens at `let`
// boundaries (spec §4.5 "let-generalization permits polymorphism").
type TypeEnv struct {
	parent *TypeEnv
	vars   map[string]*Scheme
}

// Scheme is a universally-quantified type: `forall Quantified. Body`.
type Scheme struct {
	Quantified []int
	Body       *types.Type
}

func newEnv(parent *TypeEnv) *TypeEnv { return &TypeEnv{parent: parent, vars: map[string]*Scheme{}} }

func (e *TypeEnv) lookup(name string) (*Scheme, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if sc, ok := cur.vars[name]; ok {
			return sc, true
		}
	}
	return nil, false
}

func (e *TypeEnv) bindMono(name string, t *types.Type) {
	e.vars[name] = &Scheme{Body: t}
}

// Inferencer holds the inference session state: the union-find-style
// substitution, the next fresh type-variable counter, the typed side
// table (keyed by core-node identity since ast.CoreNode's NodeID field is
// populated by the normalizer, not reassignable from this package), and
// diagnostics.
type Inferencer struct {
	subst    Substitution
	nextVar  int
	types    map[ast.CoreNode]*types.Type
	effects  map[ast.CoreNode]types.EffectSet
	diags    *errors.List
	program  *resolver.Program
}

func New(prog *resolver.Program) *Inferencer {
	return &Inferencer{
		subst:   Substitution{},
		types:   map[ast.CoreNode]*types.Type{},
		effects: map[ast.CoreNode]types.EffectSet{},
		diags:   errors.NewList(),
		program: prog,
	}
}

func (inf *Inferencer) Diagnostics() *errors.List { return inf.diags }

func (inf *Inferencer) fresh(display string) *types.Type {
	inf.nextVar++
	return &types.Type{Kind: types.KVar, Name: display, VarID: inf.nextVar}
}

// TypeOf returns the fully-substituted type recorded for a core node,
// after Infer has completed.
func (inf *Inferencer) TypeOf(n ast.CoreNode) *types.Type {
	return inf.subst.apply(inf.types[n])
}

func (inf *Inferencer) EffectsOf(n ast.CoreNode) types.EffectSet { return inf.effects[n] }

func (inf *Inferencer) record(n ast.CoreNode, t *types.Type, eff types.EffectSet) *types.Type {
	inf.types[n] = t
	inf.effects[n] = eff
	return t
}

// unify solves t1 ~ t2, extending the substitution in place; failures are
// collected as diagnostics (never panics on user input, spec §4.5/§7).
func (inf *Inferencer) unify(t1, t2 *types.Type) {
	a := inf.subst.apply(t1)
	b := inf.subst.apply(t2)
	if a == nil || b == nil {
		return
	}
	if b.Kind == types.KVar && a.Kind != types.KVar {
		a, b = b, a
	}
	if a.Kind == types.KVar {
		if b.Kind == types.KVar && b.VarID == a.VarID {
			return
		}
		occurs := map[int]bool{}
		collectFreeVars(b, occurs)
		if occurs[a.VarID] {
			inf.diags.Addf("infer", "TypeMismatch", 0, 0, "cannot construct infinite type %s ~ %s", a, b)
			return
		}
		inf.subst[a.VarID] = b
		return
	}
	if a.Kind != b.Kind {
		inf.diags.Addf("infer", "TypeMismatch", 0, 0, "cannot unify %s with %s", a, b)
		return
	}
	switch a.Kind {
	case types.KPrimitive, types.KNamed, types.KUnit:
		if a.Name != b.Name {
			inf.diags.Addf("infer", "TypeMismatch", 0, 0, "cannot unify %s with %s", a, b)
		}
	case types.KArray, types.KOption:
		inf.unify(a.Elem, b.Elem)
	case types.KReference:
		inf.unify(a.Elem, b.Elem)
	case types.KTuple:
		if len(a.Elems) != len(b.Elems) {
			inf.diags.Addf("infer", "TypeMismatch", 0, 0, "tuple arity mismatch: %s vs %s", a, b)
			return
		}
		for i := range a.Elems {
			inf.unify(a.Elems[i], b.Elems[i])
		}
	case types.KResult:
		inf.unify(a.Result, b.Result)
		inf.unify(a.ErrT, b.ErrT)
	case types.KFunction:
		if len(a.Params) != len(b.Params) {
			inf.diags.Addf("infer", "TypeMismatch", 0, 0, "function arity mismatch: %s vs %s", a, b)
			return
		}
		for i := range a.Params {
			inf.unify(a.Params[i], b.Params[i])
		}
		inf.unify(a.Result, b.Result)
	case types.KGeneric:
		if a.Name != b.Name || len(a.Params) != len(b.Params) {
			inf.diags.Addf("infer", "TypeMismatch", 0, 0, "cannot unify %s with %s", a, b)
			return
		}
		for i := range a.Params {
			inf.unify(a.Params[i], b.Params[i])
		}
	}
}

// generalize turns a monomorphic type into a scheme by quantifying over
// every still-free type variable not bound in the enclosing environment.
func (inf *Inferencer) generalize(env *TypeEnv, t *types.Type) *Scheme {
	t = inf.subst.apply(t)
	free := map[int]bool{}
	collectFreeVars(t, free)
	inEnv := map[int]bool{}
	for cur := env; cur != nil; cur = cur.parent {
		for _, sc := range cur.vars {
			collectFreeVars(inf.subst.apply(sc.Body), inEnv)
		}
	}
	quantified := make([]int, 0, len(free))
	for v := range free {
		if !inEnv[v] {
			quantified = append(quantified, v)
		}
	}
	return &Scheme{Quantified: quantified, Body: t}
}

func collectFreeVars(t *types.Type, out map[int]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case types.KVar:
		out[t.VarID] = true
	case types.KArray, types.KOption, types.KReference:
		collectFreeVars(t.Elem, out)
	case types.KTuple:
		for _, e := range t.Elems {
			collectFreeVars(e, out)
		}
	case types.KResult:
		collectFreeVars(t.Result, out)
		collectFreeVars(t.ErrT, out)
	case types.KFunction:
		for _, p := range t.Params {
			collectFreeVars(p, out)
		}
		collectFreeVars(t.Result, out)
	case types.KGeneric:
		for _, p := range t.Params {
			collectFreeVars(p, out)
		}
	}
}

// instantiate replaces a scheme's quantified variables with fresh ones,
// implementing let-polymorphism at each use site.
func (inf *Inferencer) instantiate(sc *Scheme) *types.Type {
	if len(sc.Quantified) == 0 {
		return sc.Body
	}
	mapping := map[int]*types.Type{}
	for _, v := range sc.Quantified {
		mapping[v] = inf.fresh("t")
	}
	return substituteVars(sc.Body, mapping)
}

func substituteVars(t *types.Type, mapping map[int]*types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KVar:
		if fresh, ok := mapping[t.VarID]; ok {
			return fresh
		}
		return t
	case types.KArray:
		return types.Array(substituteVars(t.Elem, mapping))
	case types.KOption:
		return types.Option(substituteVars(t.Elem, mapping))
	case types.KReference:
		return types.Reference(substituteVars(t.Elem, mapping), t.Mutable)
	case types.KTuple:
		elems := make([]*types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = substituteVars(e, mapping)
		}
		return types.Tuple(elems...)
	case types.KResult:
		return types.Result(substituteVars(t.Result, mapping), substituteVars(t.ErrT, mapping))
	case types.KFunction:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = substituteVars(p, mapping)
		}
		fn := types.Function(params, substituteVars(t.Result, mapping))
		fn.Effects = t.Effects
		return fn
	default:
		return t
	}
}

// Infer is the top-level entry point: resolved core module -> (typed side
// table is retained on the Inferencer, queryable via TypeOf) + diagnostics.
func Infer(mod *ast.CModule, prog *resolver.Program) (*Inferencer, *errors.List) {
	inf := New(prog)
	env := newEnv(nil)

	// Seed function signatures before inferring bodies so forward/mutual
	// calls resolve against a type variable instead of an unresolved name.
	for _, decl := range mod.Decls {
		if fd, ok := decl.(*ast.CFuncDecl); ok {
			params := make([]*types.Type, len(fd.Fn.Params))
			for i := range params {
				params[i] = inf.fresh("p")
			}
			ret := inf.fresh("r")
			fnType := types.Function(params, ret)
			env.bindMono(fd.Name, fnType)
		}
	}

	for _, g := range mod.Globals {
		t := inf.synth(g.Value, env)
		env.vars[g.Name] = inf.generalize(env, t)
	}

	for _, decl := range mod.Decls {
		if fd, ok := decl.(*ast.CFuncDecl); ok {
			inf.inferFuncDecl(fd, env)
		}
	}

	return inf, inf.diags
}

func (inf *Inferencer) inferFuncDecl(fd *ast.CFuncDecl, env *TypeEnv) {
	sc, _ := env.lookup(fd.Name)
	fnType := sc.Body
	fnScope := newEnv(env)
	for i, p := range fd.Fn.Params {
		fnScope.bindMono(p, fnType.Params[i])
	}
	bodyType := inf.synth(fd.Fn.Body, fnScope)
	inf.unify(fnType.Result, bodyType)

	eff := inf.effects[fd.Fn.Body]
	if fd.Fn.IsAsync {
		eff = eff.Union(types.EffectSet{types.EffAsync: true})
	}
	fnType.Effects = eff
	inf.record(fd.Fn, fnType, eff)
}

// synth implements the synthesis judgment: given a term, produce its type
// and effect set, extending the substitution as needed (spec §4.5).
func (inf *Inferencer) synth(n ast.CoreNode, env *TypeEnv) *types.Type {
	switch x := n.(type) {
	case *ast.CLit:
		return inf.synthLit(x)
	case *ast.CVar:
		if sc, ok := env.lookup(x.Name); ok {
			t := inf.instantiate(sc)
			return inf.record(n, t, nil)
		}
		t := inf.fresh("v")
		return inf.record(n, t, nil)
	case *ast.CLambda:
		return inf.synthLambda(x, env)
	case *ast.CCall:
		return inf.synthCall(x, env)
	case *ast.CLet:
		valType := inf.synth(x.Value, env)
		inner := newEnv(env)
		inner.vars[x.Name] = inf.generalize(env, valType)
		bodyType := inf.synth(x.Body, inner)
		eff := inf.effects[x.Value].Union(inf.effects[x.Body])
		return inf.record(n, bodyType, eff)
	case *ast.CAssign:
		valType := inf.synth(x.Value, env)
		targetType := inf.synth(x.Target, env)
		inf.unify(targetType, valType)
		eff := types.EffectSet{types.EffMutates: true}.Union(inf.effects[x.Value])
		return inf.record(n, types.Unit(), eff)
	case *ast.CIf:
		condType := inf.synth(x.Cond, env)
		inf.unify(condType, types.Primitive(types.Bool))
		thenType := inf.synth(x.Then, env)
		eff := inf.effects[x.Cond].Union(inf.effects[x.Then])
		if x.Else != nil {
			elseType := inf.synth(x.Else, env)
			inf.unify(thenType, elseType)
			eff = eff.Union(inf.effects[x.Else])
		}
		return inf.record(n, thenType, eff)
	case *ast.CMatch:
		return inf.synthMatch(x, env)
	case *ast.CWhile:
		condType := inf.synth(x.Cond, env)
		inf.unify(condType, types.Primitive(types.Bool))
		inf.synth(x.Body, env)
		eff := inf.effects[x.Cond].Union(inf.effects[x.Body])
		return inf.record(n, types.Unit(), eff)
	case *ast.CBreak, *ast.CContinue:
		return inf.record(n, types.Unit(), nil)
	case *ast.CReturn:
		var eff types.EffectSet
		if x.Value != nil {
			inf.synth(x.Value, env)
			eff = inf.effects[x.Value]
		}
		return inf.record(n, types.Unit(), eff)
	case *ast.CThrow:
		inf.synth(x.Value, env)
		eff := types.EffectSet{types.EffError: true}.Union(inf.effects[x.Value])
		return inf.record(n, types.Unit(), eff)
	case *ast.CBlock:
		var last *types.Type = types.Unit()
		var eff types.EffectSet
		for _, s := range x.Stmts {
			last = inf.synth(s, env)
			eff = eff.Union(inf.effects[s])
		}
		return inf.record(n, last, eff)
	case *ast.CFieldAccess:
		inf.synth(x.Receiver, env)
		t := inf.fresh("field")
		return inf.record(n, t, inf.effects[x.Receiver])
	case *ast.CIndex:
		xt := inf.synth(x.X, env)
		inf.synth(x.Index, env)
		elem := inf.fresh("elem")
		inf.unify(xt, types.Array(elem))
		return inf.record(n, elem, inf.effects[x.X])
	case *ast.CListLit:
		elem := inf.fresh("elem")
		var eff types.EffectSet
		for _, e := range x.Elements {
			et := inf.synth(e, env)
			inf.unify(elem, et)
			eff = eff.Union(inf.effects[e])
		}
		return inf.record(n, types.Array(elem), eff)
	case *ast.CTupleLit:
		elems := make([]*types.Type, len(x.Elements))
		var eff types.EffectSet
		for i, e := range x.Elements {
			elems[i] = inf.synth(e, env)
			eff = eff.Union(inf.effects[e])
		}
		return inf.record(n, types.Tuple(elems...), eff)
	case *ast.CSetLit:
		elem := inf.fresh("elem")
		for _, e := range x.Elements {
			inf.unify(elem, inf.synth(e, env))
		}
		return inf.record(n, types.Array(elem), nil)
	case *ast.CObjectLit:
		var eff types.EffectSet
		for _, v := range x.Values {
			inf.synth(v, env)
			eff = eff.Union(inf.effects[v])
		}
		return inf.record(n, types.Named("object"), eff)
	case *ast.CStructLit:
		var eff types.EffectSet
		for _, v := range x.Values {
			inf.synth(v, env)
			eff = eff.Union(inf.effects[v])
		}
		return inf.record(n, types.Named(x.TypeName), eff)
	case *ast.CFormat:
		var eff types.EffectSet
		for _, a := range x.Args {
			inf.synth(a, env)
			eff = eff.Union(inf.effects[a])
		}
		return inf.record(n, types.Primitive(types.Str), eff)
	case *ast.CRange:
		st := inf.synth(x.Start, env)
		inf.synth(x.End, env)
		return inf.record(n, types.Array(st), nil)
	case *ast.CSpawn:
		bodyType := inf.synth(x.Body, env)
		eff := types.EffectSet{types.EffAsync: true}.Union(inf.effects[x.Body])
		return inf.record(n, bodyType, eff)
	case *ast.CActorSend:
		inf.synth(x.Actor, env)
		inf.synth(x.Message, env)
		eff := types.EffectSet{types.EffAsync: true, types.EffIO: true}
		return inf.record(n, types.Unit(), eff)
	case *ast.CActorQuery:
		inf.synth(x.Actor, env)
		inf.synth(x.Message, env)
		t := inf.fresh("reply")
		eff := types.EffectSet{types.EffAsync: true, types.EffIO: true}
		return inf.record(n, t, eff)
	case *ast.CAwait:
		t := inf.synth(x.X, env)
		eff := types.EffectSet{types.EffAsync: true}.Union(inf.effects[x.X])
		return inf.record(n, t, eff)
	case *ast.CFuncDecl:
		inf.inferFuncDecl(x, env)
		return inf.record(n, types.Unit(), nil)
	default:
		inf.diags.Addf("infer", "UnsupportedCoreNode", 0, 0, "cannot infer type for %T", n)
		return inf.record(n, inf.fresh("?"), nil)
	}
}

func (inf *Inferencer) synthLit(x *ast.CLit) *types.Type {
	var t *types.Type
	switch x.Kind {
	case "int":
		if x.Suffix != "" {
			t = types.Primitive(x.Suffix)
		} else {
			// unsuffixed integer literals get a fresh type variable that is
			// resolved only by unification with a concrete type; a variable
			// still unconstrained at generalization stays free (there is no
			// defaulting to i32).
			t = inf.fresh("int")
		}
	case "float":
		t = types.Primitive(types.F64)
	case "bool":
		t = types.Primitive(types.Bool)
	case "char":
		t = types.Primitive(types.Char)
	case "byte":
		t = types.Primitive(types.U8)
	case "string":
		t = types.Primitive(types.Str)
	case "nil":
		t = types.Unit()
	default:
		t = inf.fresh("lit")
	}
	return inf.record(x, t, nil)
}

func (inf *Inferencer) synthLambda(x *ast.CLambda, env *TypeEnv) *types.Type {
	inner := newEnv(env)
	params := make([]*types.Type, len(x.Params))
	for i, p := range x.Params {
		params[i] = inf.fresh("p")
		inner.bindMono(p, params[i])
	}
	bodyType := inf.synth(x.Body, inner)
	eff := inf.effects[x.Body]
	if x.IsAsync {
		eff = eff.Union(types.EffectSet{types.EffAsync: true})
	}
	fn := types.Function(params, bodyType)
	fn.Effects = eff
	return inf.record(x, fn, eff)
}

func (inf *Inferencer) synthCall(x *ast.CCall, env *TypeEnv) *types.Type {
	calleeType := inf.synth(x.Callee, env)
	argTypes := make([]*types.Type, len(x.Args))
	var eff types.EffectSet
	for i, a := range x.Args {
		argTypes[i] = inf.synth(a, env)
		eff = eff.Union(inf.effects[a])
	}
	result := inf.fresh("call")
	expected := types.Function(argTypes, result)
	inf.unify(calleeType, expected)
	eff = eff.Union(inf.effects[x.Callee])
	if fn := inf.subst.apply(calleeType); fn.Kind == types.KFunction {
		eff = eff.Union(fn.Effects)
	}
	return inf.record(x, result, eff)
}

func (inf *Inferencer) synthMatch(x *ast.CMatch, env *TypeEnv) *types.Type {
	subjectType := inf.synth(x.Subject, env)
	result := inf.fresh("match")
	var eff types.EffectSet
	for _, arm := range x.Arms {
		armEnv := newEnv(env)
		inf.bindPattern(arm.Pattern, subjectType, armEnv)
		if arm.Guard != nil {
			guardType := inf.synth(arm.Guard, armEnv)
			inf.unify(guardType, types.Primitive(types.Bool))
			eff = eff.Union(inf.effects[arm.Guard])
		}
		bodyType := inf.synth(arm.Body, armEnv)
		inf.unify(result, bodyType)
		eff = eff.Union(inf.effects[arm.Body])
	}
	return inf.record(x, result, eff)
}

// bindPattern declares every name a pattern introduces into env, typed
// against the subject's (possibly still-unresolved) type.
func (inf *Inferencer) bindPattern(p ast.Pattern, subject *types.Type, env *TypeEnv) {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		env.bindMono(pat.Name, subject)
	case *ast.WildcardPattern:
	case *ast.AtBindingPattern:
		env.bindMono(pat.Name, subject)
		inf.bindPattern(pat.Pattern, subject, env)
	case *ast.TuplePattern:
		for i, e := range pat.Elements {
			elemType := inf.fresh(fmt.Sprintf("tup%d", i))
			inf.bindPattern(e, elemType, env)
		}
	case *ast.ListPattern:
		elem := inf.fresh("elem")
		inf.unify(subject, types.Array(elem))
		for _, e := range pat.Elements {
			inf.bindPattern(e, elem, env)
		}
		if pat.Rest != nil && pat.Rest.Name != "" {
			env.bindMono(pat.Rest.Name, types.Array(elem))
		}
	case *ast.StructPattern:
		for _, f := range pat.Fields {
			fieldType := inf.fresh("field")
			if f.Pattern != nil {
				inf.bindPattern(f.Pattern, fieldType, env)
			} else {
				env.bindMono(f.Name, fieldType)
			}
		}
	case *ast.VariantPattern:
		for i, e := range pat.Payload {
			payloadType := inf.fresh(fmt.Sprintf("variant%d", i))
			inf.bindPattern(e, payloadType, env)
		}
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			inf.bindPattern(alt, subject, env)
		}
	case *ast.LiteralPattern, *ast.RangePattern, *ast.RestPattern:
		// no bindings introduced
	}
}
