// Package interp implements the tree-walking evaluator (spec §5):
// CoreNode + runtime Env -> value.Value, with short-circuit `&&`/`||`/`??`,
// pattern matching with guards, try/catch/finally via CMatch on a
// Result-shaped wrapper, and resource-limit/cancellation checks at loop
// headers and call sites. Grounded on the pack's Evaluator.Eval dispatch
// switch and Break/Continue/ReturnValue sentinel-object idiom.
package interp

import (
	"context"
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/value"
)

// control-flow sentinels: values that unwind the Go call stack via normal
// return values (never via panic/recover), exactly as the pack's
// objects.Break/Continue/ReturnValue propagate up evalStatements.
type breakSignal struct{}

func (b *breakSignal) Kind() value.Kind  { return "ctrl:break" }
func (b *breakSignal) String() string    { return "break" }
func (b *breakSignal) Inspect() string   { return "<break>" }

type continueSignal struct{}

func (c *continueSignal) Kind() value.Kind { return "ctrl:continue" }
func (c *continueSignal) String() string   { return "continue" }
func (c *continueSignal) Inspect() string  { return "<continue>" }

type returnSignal struct{ Value value.Value }

func (r *returnSignal) Kind() value.Kind { return "ctrl:return" }
func (r *returnSignal) String() string   { return r.Value.String() }
func (r *returnSignal) Inspect() string  { return "<return " + r.Value.Inspect() + ">" }

// Limits bounds runaway execution (spec §5 "resource-limit/cancellation
// checks at loop headers and call sites").
type Limits struct {
	MaxSteps int // 0 = unlimited
}

// Interp is one evaluation session: global environment, method/struct
// registries populated from the core module's declarations, and the
// resource-limit counters.
type Interp struct {
	globals *Env
	structs map[string]*ast.CStructDecl
	enums   map[string]*ast.CEnumDecl
	methods map[string]map[string]*value.Closure // type name -> method name -> closure
	limits  Limits
	steps   int
}

func New(limits Limits) *Interp {
	return &Interp{
		globals: NewEnv(nil),
		structs: map[string]*ast.CStructDecl{},
		enums:   map[string]*ast.CEnumDecl{},
		methods: map[string]map[string]*value.Closure{},
		limits:  limits,
	}
}

// Load registers a module's top-level declarations and globals without
// running anything, per the Driver API contract (spec §6 "load then run").
func (it *Interp) Load(mod *ast.CModule) error {
	RegisterBuiltins(it.globals)
	registerOperators(it.globals)
	for _, decl := range mod.Decls {
		switch d := decl.(type) {
		case *ast.CFuncDecl:
			cl := &value.Closure{Params: d.Fn.Params, Body: d.Fn.Body, Env: it.globals, IsAsync: d.Fn.IsAsync, Name: d.Name}
			it.globals.Define(d.Name, cl, false)
		case *ast.CStructDecl:
			it.structs[d.Name] = d
		case *ast.CEnumDecl:
			it.enums[d.Name] = d
		}
	}
	for _, g := range mod.Globals {
		v, err := it.Eval(context.Background(), g.Value, it.globals)
		if err != nil {
			return err
		}
		it.globals.Define(g.Name, v, true)
	}
	return nil
}

// RegisterMethod attaches a method closure to a type name (populated by
// the driver from the resolver's impl registry, spec §4.4 method
// resolution precedence — the driver picks the winning candidate before
// calling this).
func (it *Interp) RegisterMethod(typeName, methodName string, cl *value.Closure) {
	if it.methods[typeName] == nil {
		it.methods[typeName] = map[string]*value.Closure{}
	}
	it.methods[typeName][methodName] = cl
}

// Run evaluates `name()` with no arguments, the entry point convention for
// `main`-style scripts (spec §6 "Driver API").
func (it *Interp) Run(ctx context.Context, name string) (value.Value, error) {
	fn, ok := it.globals.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("undefined entry point %q", name)
	}
	cl, ok := fn.(*value.Closure)
	if !ok {
		return nil, fmt.Errorf("%q is not callable", name)
	}
	return it.callClosure(ctx, cl, nil)
}

func (it *Interp) tick() error {
	it.steps++
	if it.limits.MaxSteps > 0 && it.steps > it.limits.MaxSteps {
		return &errors.RuntimeError{Kind: errors.ResourceExhausted, Context: fmt.Sprintf("execution exceeded step limit (%d)", it.limits.MaxSteps)}
	}
	return nil
}

// Eval is the central dispatcher, parallel to the pack's Evaluator.Eval
// type switch, generalized from its GoMixObject return to an explicit
// (value.Value, error) pair so host errors never need a sentinel Error
// value threaded through every call site.
func (it *Interp) Eval(ctx context.Context, n ast.CoreNode, env *Env) (value.Value, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch x := n.(type) {
	case *ast.CLit:
		return it.evalLit(x)
	case *ast.CVar:
		if v, ok := env.Lookup(x.Name); ok {
			return v, nil
		}
		return nil, &errors.RuntimeError{Kind: errors.UndefinedVariable, Context: fmt.Sprintf("undefined variable %q", x.Name)}
	case *ast.CLambda:
		return &value.Closure{Params: x.Params, Body: x.Body, Env: env, IsAsync: x.IsAsync}, nil
	case *ast.CLet:
		v, err := it.Eval(ctx, x.Value, env)
		if err != nil {
			return nil, err
		}
		if sig := signalIn([]value.Value{v}); sig != nil {
			return sig, nil
		}
		inner := NewEnv(env)
		inner.Define(x.Name, v, true)
		return it.Eval(ctx, x.Body, inner)
	case *ast.CAssign:
		return it.evalAssign(ctx, x, env)
	case *ast.CIf:
		return it.evalIf(ctx, x, env)
	case *ast.CMatch:
		return it.evalMatch(ctx, x, env)
	case *ast.CWhile:
		return it.evalWhile(ctx, x, env)
	case *ast.CBreak:
		return &breakSignal{}, nil
	case *ast.CContinue:
		return &continueSignal{}, nil
	case *ast.CReturn:
		var v value.Value = &value.Nil{}
		if x.Value != nil {
			var err error
			v, err = it.Eval(ctx, x.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return &returnSignal{Value: v}, nil
	case *ast.CThrow:
		v, err := it.Eval(ctx, x.Value, env)
		if err != nil {
			return nil, err
		}
		return &value.Err{Value: v}, nil
	case *ast.CBlock:
		return it.evalBlock(ctx, x, env)
	case *ast.CTryFinally:
		return it.evalTryFinally(ctx, x, env)
	case *ast.CFieldAccess:
		return it.evalFieldAccess(ctx, x, env)
	case *ast.CIndex:
		return it.evalIndex(ctx, x, env)
	case *ast.CListLit:
		elems, err := it.evalList(ctx, x.Elements, env)
		if err != nil {
			return nil, err
		}
		return &value.Array{Elements: elems}, nil
	case *ast.CTupleLit:
		elems, err := it.evalList(ctx, x.Elements, env)
		if err != nil {
			return nil, err
		}
		return &value.Tuple{Elements: elems}, nil
	case *ast.CSetLit:
		s := value.NewSet()
		for _, e := range x.Elements {
			v, err := it.Eval(ctx, e, env)
			if err != nil {
				return nil, err
			}
			s.Add(v.String(), v)
		}
		return s, nil
	case *ast.CObjectLit:
		obj := value.NewObject("object")
		for i, k := range x.Keys {
			v, err := it.Eval(ctx, x.Values[i], env)
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	case *ast.CStructLit:
		obj := value.NewObject(x.TypeName)
		for i, k := range x.Keys {
			v, err := it.Eval(ctx, x.Values[i], env)
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	case *ast.CFormat:
		return it.evalFormat(ctx, x, env)
	case *ast.CRange:
		return it.evalRange(ctx, x, env)
	case *ast.CCall:
		return it.evalCall(ctx, x, env)
	case *ast.CSpawn:
		// no host async runtime is wired into this evaluator, so spawning a
		// task is a capability gap, not a no-op (spec §5 "async and actor
		// operations parse but raise UnsupportedRuntime at execution").
		return nil, &errors.RuntimeError{Kind: errors.UnsupportedRuntime, Context: "spawn requires a host async runtime"}
	case *ast.CAwait:
		return nil, &errors.RuntimeError{Kind: errors.UnsupportedRuntime, Context: "await requires a host async runtime"}
	case *ast.CActorSend:
		return nil, &errors.RuntimeError{Kind: errors.UnsupportedRuntime, Context: "actor send requires a host actor runtime"}
	case *ast.CActorQuery:
		return nil, &errors.RuntimeError{Kind: errors.UnsupportedRuntime, Context: "actor query requires a host actor runtime"}
	case *ast.CFuncDecl:
		cl := &value.Closure{Params: x.Fn.Params, Body: x.Fn.Body, Env: env, IsAsync: x.Fn.IsAsync, Name: x.Name}
		env.Define(x.Name, cl, false)
		return &value.Nil{}, nil
	default:
		return nil, fmt.Errorf("interp: unsupported core node %T", n)
	}
}

func (it *Interp) evalLit(x *ast.CLit) (value.Value, error) {
	switch x.Kind {
	case "int":
		var n int64
		fmt.Sscanf(x.Value, "%d", &n)
		return &value.Int{Val: n, Suffix: x.Suffix}, nil
	case "float":
		var f float64
		fmt.Sscanf(x.Value, "%g", &f)
		return &value.Float{Val: f}, nil
	case "bool":
		return &value.Bool{Val: x.Value == "true"}, nil
	case "char":
		r := []rune(x.Value)
		if len(r) == 0 {
			return &value.Char{}, nil
		}
		return &value.Char{Val: r[0]}, nil
	case "byte":
		if len(x.Value) == 0 {
			return &value.Byte{}, nil
		}
		return &value.Byte{Val: x.Value[0]}, nil
	case "string":
		return &value.String{Val: x.Value}, nil
	case "nil":
		return &value.Nil{}, nil
	default:
		return &value.Nil{}, nil
	}
}

// evalList evaluates each node in order, short-circuiting as soon as one
// evaluates to a break/continue/return signal. Ordinary argument
// expressions never produce a signal, but the try/catch desugaring passes
// a whole statement body through this same path (as the sole argument to
// the `__try_wrap` builtin, see normalizeTryCatch), so a `return`/`break`/
// `continue` inside a try block must stop here rather than be handed to
// the builtin as if it were an ordinary value.
func (it *Interp) evalList(ctx context.Context, nodes []ast.CoreNode, env *Env) ([]value.Value, error) {
	out := make([]value.Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := it.Eval(ctx, n, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		switch v.(type) {
		case *breakSignal, *continueSignal, *returnSignal:
			return out, nil
		}
	}
	return out, nil
}

// signalIn reports the first break/continue/return sentinel found among
// already-evaluated call arguments, so a call whose argument evaluation
// was hijacked by enclosing control flow propagates that signal instead
// of invoking the callee with it as if it were a plain value.
func signalIn(args []value.Value) value.Value {
	for _, v := range args {
		switch v.(type) {
		case *breakSignal, *continueSignal, *returnSignal:
			return v
		}
	}
	return nil
}

func (it *Interp) evalAssign(ctx context.Context, x *ast.CAssign, env *Env) (value.Value, error) {
	v, err := it.Eval(ctx, x.Value, env)
	if err != nil {
		return nil, err
	}
	switch target := x.Target.(type) {
	case *ast.CVar:
		if !env.Assign(target.Name, v) {
			return nil, &errors.RuntimeError{Kind: errors.UndefinedVariable, Context: fmt.Sprintf("cannot assign to undefined or immutable binding %q", target.Name)}
		}
	case *ast.CIndex:
		xv, err := it.Eval(ctx, target.X, env)
		if err != nil {
			return nil, err
		}
		idx, err := it.Eval(ctx, target.Index, env)
		if err != nil {
			return nil, err
		}
		arr, ok := xv.(*value.Array)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("index assignment target is not an array, got %s", xv.Kind())}
		}
		i, ok := idx.(*value.Int)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: "index must be an integer"}
		}
		if int(i.Val) < 0 || int(i.Val) >= len(arr.Elements) {
			return nil, &errors.RuntimeError{Kind: errors.InvalidIndex, Context: fmt.Sprintf("index %d out of range (len %d)", i.Val, len(arr.Elements))}
		}
		arr.Elements[i.Val] = v
	case *ast.CFieldAccess:
		rv, err := it.Eval(ctx, target.Receiver, env)
		if err != nil {
			return nil, err
		}
		obj, ok := rv.(*value.Object)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("field assignment target is not an object, got %s", rv.Kind())}
		}
		obj.Set(target.Field, v)
	default:
		return nil, fmt.Errorf("invalid assignment target %T", x.Target)
	}
	return v, nil
}

func (it *Interp) evalIf(ctx context.Context, x *ast.CIf, env *Env) (value.Value, error) {
	cond, err := it.Eval(ctx, x.Cond, env)
	if err != nil {
		return nil, err
	}
	truthy, ok := value.Truthy(cond)
	if !ok {
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("if condition is not a bool, got %s", cond.Kind())}
	}
	if truthy {
		return it.Eval(ctx, x.Then, NewEnv(env))
	}
	if x.Else != nil {
		return it.Eval(ctx, x.Else, NewEnv(env))
	}
	return &value.Nil{}, nil
}

func (it *Interp) evalWhile(ctx context.Context, x *ast.CWhile, env *Env) (value.Value, error) {
	for {
		if err := it.tick(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		cond, err := it.Eval(ctx, x.Cond, env)
		if err != nil {
			return nil, err
		}
		truthy, ok := value.Truthy(cond)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("while condition is not a bool, got %s", cond.Kind())}
		}
		if !truthy {
			return &value.Nil{}, nil
		}
		result, err := it.Eval(ctx, x.Body, NewEnv(env))
		if err != nil {
			return nil, err
		}
		switch result.(type) {
		case *breakSignal:
			return &value.Nil{}, nil
		case *returnSignal:
			return result, nil
		}
	}
}

func (it *Interp) evalBlock(ctx context.Context, x *ast.CBlock, env *Env) (value.Value, error) {
	var last value.Value = &value.Nil{}
	for _, s := range x.Stmts {
		v, err := it.Eval(ctx, s, env)
		if err != nil {
			return nil, err
		}
		switch v.(type) {
		case *breakSignal, *continueSignal, *returnSignal:
			return v, nil
		}
		last = v
	}
	return last, nil
}

// evalTryFinally runs Finally unconditionally after Try, whether Try
// completed normally, threw, or carried a break/continue/return signal
// (spec §9 "finally always runs"). Finally's own outcome takes priority
// only when it itself fails or carries a competing control-flow signal;
// otherwise Try's original outcome propagates, matching ordinary
// try/finally semantics rather than the flat sequencing a CBlock gives.
func (it *Interp) evalTryFinally(ctx context.Context, x *ast.CTryFinally, env *Env) (value.Value, error) {
	tryResult, tryErr := it.Eval(ctx, x.Try, env)
	finResult, finErr := it.Eval(ctx, x.Finally, NewEnv(env))
	if finErr != nil {
		return nil, finErr
	}
	switch finResult.(type) {
	case *breakSignal, *continueSignal, *returnSignal:
		return finResult, nil
	}
	if tryErr != nil {
		return nil, tryErr
	}
	return tryResult, nil
}

func (it *Interp) evalFieldAccess(ctx context.Context, x *ast.CFieldAccess, env *Env) (value.Value, error) {
	rv, err := it.Eval(ctx, x.Receiver, env)
	if err != nil {
		return nil, err
	}
	if obj, ok := rv.(*value.Object); ok {
		if fv, ok := obj.Fields[x.Field]; ok {
			return fv, nil
		}
	}
	if cl, ok := it.lookupMethod(rv, x.Field); ok {
		return &value.BoundMethod{Receiver: rv, Method: cl}, nil
	}
	if _, ok := rv.(*value.Object); ok {
		return nil, &errors.RuntimeError{Kind: errors.UnknownField, Context: fmt.Sprintf("no field or method %q on %s", x.Field, rv.Kind())}
	}
	return nil, &errors.RuntimeError{Kind: errors.UnknownMethod, Context: fmt.Sprintf("no method %q on %s", x.Field, rv.Kind())}
}

func (it *Interp) lookupMethod(receiver value.Value, name string) (*value.Closure, bool) {
	typeName := string(receiver.Kind())
	if obj, ok := receiver.(*value.Object); ok {
		typeName = obj.TypeName
	}
	if methods, ok := it.methods[typeName]; ok {
		if cl, ok := methods[name]; ok {
			return cl, true
		}
	}
	return nil, false
}

func (it *Interp) evalIndex(ctx context.Context, x *ast.CIndex, env *Env) (value.Value, error) {
	xv, err := it.Eval(ctx, x.X, env)
	if err != nil {
		return nil, err
	}
	idx, err := it.Eval(ctx, x.Index, env)
	if err != nil {
		return nil, err
	}
	i, ok := idx.(*value.Int)
	if !ok {
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: "index must be an integer"}
	}
	switch container := xv.(type) {
	case *value.Array:
		if int(i.Val) < 0 || int(i.Val) >= len(container.Elements) {
			return nil, &errors.RuntimeError{Kind: errors.InvalidIndex, Context: fmt.Sprintf("index %d out of range (len %d)", i.Val, len(container.Elements))}
		}
		return container.Elements[i.Val], nil
	case *value.Tuple:
		if int(i.Val) < 0 || int(i.Val) >= len(container.Elements) {
			return nil, &errors.RuntimeError{Kind: errors.InvalidIndex, Context: fmt.Sprintf("index %d out of range (len %d)", i.Val, len(container.Elements))}
		}
		return container.Elements[i.Val], nil
	case *value.String:
		r := []rune(container.Val)
		if int(i.Val) < 0 || int(i.Val) >= len(r) {
			return nil, &errors.RuntimeError{Kind: errors.InvalidIndex, Context: fmt.Sprintf("index %d out of range (len %d)", i.Val, len(r))}
		}
		return &value.Char{Val: r[i.Val]}, nil
	default:
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("cannot index into %s", xv.Kind())}
	}
}

func (it *Interp) evalFormat(ctx context.Context, x *ast.CFormat, env *Env) (value.Value, error) {
	args := make([]interface{}, len(x.Args))
	for i, a := range x.Args {
		v, err := it.Eval(ctx, a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v.String()
	}
	return &value.String{Val: fmt.Sprintf(x.Template, args...)}, nil
}

func (it *Interp) evalRange(ctx context.Context, x *ast.CRange, env *Env) (value.Value, error) {
	start, err := it.Eval(ctx, x.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := it.Eval(ctx, x.End, env)
	if err != nil {
		return nil, err
	}
	si, ok1 := start.(*value.Int)
	ei, ok2 := end.(*value.Int)
	if !ok1 || !ok2 {
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: "range bounds must be integers"}
	}
	hi := ei.Val
	if x.Inclusive {
		hi++
	}
	var elems []value.Value
	for v := si.Val; v < hi; v++ {
		elems = append(elems, &value.Int{Val: v})
	}
	return &value.Array{Elements: elems}, nil
}

// evalMatch implements pattern dispatch: each arm's pattern is tried in
// order against the subject, extending a child scope with any bindings it
// introduces; the first pattern that matches (and whose guard, if any,
// is truthy) wins (spec §5 "pattern matching with guards").
func (it *Interp) evalMatch(ctx context.Context, x *ast.CMatch, env *Env) (value.Value, error) {
	subject, err := it.Eval(ctx, x.Subject, env)
	if err != nil {
		return nil, err
	}
	switch subject.(type) {
	case *breakSignal, *continueSignal, *returnSignal:
		return subject, nil
	}
	for _, arm := range x.Arms {
		armEnv := NewEnv(env)
		if !matchPattern(arm.Pattern, subject, armEnv) {
			continue
		}
		if arm.Guard != nil {
			gv, err := it.Eval(ctx, arm.Guard, armEnv)
			if err != nil {
				return nil, err
			}
			truthy, ok := value.Truthy(gv)
			if !ok || !truthy {
				continue
			}
		}
		return it.Eval(ctx, arm.Body, armEnv)
	}
	return nil, &errors.RuntimeError{Kind: errors.UserException, Context: fmt.Sprintf("match is not exhaustive: no arm matched %s", subject.Inspect())}
}

// evalCall handles plain calls, method calls (Callee is a CFieldAccess,
// receiver prepended to args), and built-in/closure invocation.
func (it *Interp) evalCall(ctx context.Context, x *ast.CCall, env *Env) (value.Value, error) {
	if err := it.tick(); err != nil {
		return nil, err
	}

	if fa, ok := x.Callee.(*ast.CFieldAccess); ok {
		rv, err := it.Eval(ctx, fa.Receiver, env)
		if err != nil {
			return nil, err
		}
		args, err := it.evalList(ctx, x.Args, env)
		if err != nil {
			return nil, err
		}
		if sig := signalIn(args); sig != nil {
			return sig, nil
		}
		if bv, handled, err := it.callBuiltinMethod(ctx, rv, fa.Field, args); handled {
			if err != nil {
				return nil, err
			}
			return bv, nil
		}
		if cl, ok := it.lookupMethod(rv, fa.Field); ok {
			return it.callClosure(ctx, cl, append([]value.Value{rv}, args...))
		}
		return nil, &errors.RuntimeError{Kind: errors.UnknownMethod, Context: fmt.Sprintf("no method %q on %s", fa.Field, rv.Kind())}
	}

	callee, err := it.Eval(ctx, x.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := it.evalList(ctx, x.Args, env)
	if err != nil {
		return nil, err
	}
	if sig := signalIn(args); sig != nil {
		return sig, nil
	}
	switch fn := callee.(type) {
	case *value.Closure:
		return it.callClosure(ctx, fn, args)
	case *value.BuiltinFunction:
		return fn.Fn(args)
	case *value.BoundMethod:
		return it.callClosure(ctx, fn.Method, append([]value.Value{fn.Receiver}, args...))
	default:
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("%s is not callable", callee.Kind())}
	}
}

func (it *Interp) callClosure(ctx context.Context, cl *value.Closure, args []value.Value) (value.Value, error) {
	parent, _ := cl.Env.(*Env)
	fnEnv := NewEnv(parent)
	for i, p := range cl.Params {
		if i < len(args) {
			fnEnv.Define(p, args[i], true)
		} else {
			fnEnv.Define(p, &value.Nil{}, true)
		}
	}
	result, err := it.Eval(ctx, cl.Body, fnEnv)
	if err != nil {
		return nil, err
	}
	if ret, ok := result.(*returnSignal); ok {
		return ret.Value, nil
	}
	return result, nil
}
