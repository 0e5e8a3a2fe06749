package interp

import (
	"strconv"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/value"
)

// matchPattern tries to match v against p, defining any names p introduces
// in env. It never errors: an unmatchable pattern just returns false, so
// evalMatch can fall through to the next arm (spec §3 "Patterns").
func matchPattern(p ast.Pattern, v value.Value, env *Env) bool {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.IdentPattern:
		env.Define(pat.Name, v, true)
		return true
	case *ast.LiteralPattern:
		lit := literalValue(pat.Value)
		return lit != nil && value.Equal(lit, v)
	case *ast.TuplePattern:
		t, ok := v.(*value.Tuple)
		if !ok || len(t.Elements) != len(pat.Elements) {
			return false
		}
		for i, sub := range pat.Elements {
			if !matchPattern(sub, t.Elements[i], env) {
				return false
			}
		}
		return true
	case *ast.ListPattern:
		return matchListPattern(pat, v, env)
	case *ast.StructPattern:
		return matchStructPattern(pat, v, env)
	case *ast.VariantPattern:
		return matchVariantPattern(pat, v, env)
	case *ast.RangePattern:
		return matchRangePattern(pat, v)
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			if matchPattern(alt, v, env) {
				return true
			}
		}
		return false
	case *ast.RestPattern:
		if pat.Name != "" {
			env.Define(pat.Name, v, true)
		}
		return true
	case *ast.AtBindingPattern:
		if !matchPattern(pat.Pattern, v, env) {
			return false
		}
		env.Define(pat.Name, v, true)
		return true
	default:
		return false
	}
}

func matchListPattern(pat *ast.ListPattern, v value.Value, env *Env) bool {
	arr, ok := v.(*value.Array)
	if !ok {
		return false
	}
	if pat.Rest == nil {
		if len(arr.Elements) != len(pat.Elements) {
			return false
		}
		for i, sub := range pat.Elements {
			if !matchPattern(sub, arr.Elements[i], env) {
				return false
			}
		}
		return true
	}
	if len(arr.Elements) < len(pat.Elements) {
		return false
	}
	for i, sub := range pat.Elements {
		if !matchPattern(sub, arr.Elements[i], env) {
			return false
		}
	}
	rest := append([]value.Value{}, arr.Elements[len(pat.Elements):]...)
	if pat.Rest.Name != "" {
		env.Define(pat.Rest.Name, &value.Array{Elements: rest}, true)
	}
	return true
}

func matchStructPattern(pat *ast.StructPattern, v value.Value, env *Env) bool {
	obj, ok := v.(*value.Object)
	if !ok || (pat.TypeName != "" && obj.TypeName != pat.TypeName) {
		return false
	}
	for _, f := range pat.Fields {
		fv, ok := obj.Fields[f.Name]
		if !ok {
			return false
		}
		if f.Pattern == nil {
			env.Define(f.Name, fv, true)
			continue
		}
		if !matchPattern(f.Pattern, fv, env) {
			return false
		}
	}
	return true
}

// matchVariantPattern handles the built-in Result/Option constructors
// (Ok/Err/Some/None) as well as user-defined enum variants.
func matchVariantPattern(pat *ast.VariantPattern, v value.Value, env *Env) bool {
	name := pat.Path[len(pat.Path)-1]
	switch name {
	case "Ok":
		ok, isOk := v.(*value.Ok)
		if !isOk {
			return false
		}
		return matchPayload(pat.Payload, []value.Value{ok.Value}, env)
	case "Err":
		e, isErr := v.(*value.Err)
		if !isErr {
			return false
		}
		return matchPayload(pat.Payload, []value.Value{e.Value}, env)
	case "Some":
		s, isSome := v.(*value.Some)
		if !isSome {
			return false
		}
		return matchPayload(pat.Payload, []value.Value{s.Value}, env)
	case "None":
		_, isNone := v.(*value.None)
		return isNone
	default:
		ev, ok := v.(*value.EnumVariant)
		if !ok || ev.VariantName != name {
			return false
		}
		return matchPayload(pat.Payload, ev.Payload, env)
	}
}

func matchPayload(patterns []ast.Pattern, vals []value.Value, env *Env) bool {
	if len(patterns) != len(vals) {
		return false
	}
	for i, p := range patterns {
		if !matchPattern(p, vals[i], env) {
			return false
		}
	}
	return true
}

func matchRangePattern(pat *ast.RangePattern, v value.Value) bool {
	i, ok := v.(*value.Int)
	if !ok {
		return false
	}
	lo := literalValue(pat.Low)
	hi := literalValue(pat.High)
	loI, ok1 := lo.(*value.Int)
	hiI, ok2 := hi.(*value.Int)
	if !ok1 || !ok2 {
		return false
	}
	if pat.Inclusive {
		return i.Val >= loI.Val && i.Val <= hiI.Val
	}
	return i.Val >= loI.Val && i.Val < hiI.Val
}

// literalValue converts a surface-AST literal expression (the only
// expression shapes a LiteralPattern/RangePattern ever holds) into its
// runtime value, without routing through the core-AST evaluator.
func literalValue(e ast.Expression) value.Value {
	switch lit := e.(type) {
	case *ast.IntLit:
		n, _ := strconv.ParseInt(lit.Value, 10, 64)
		return &value.Int{Val: n, Suffix: lit.Suffix}
	case *ast.FloatLit:
		f, _ := strconv.ParseFloat(lit.Value, 64)
		return &value.Float{Val: f}
	case *ast.BoolLit:
		return &value.Bool{Val: lit.Value}
	case *ast.CharLit:
		return &value.Char{Val: lit.Value}
	case *ast.ByteLit:
		return &value.Byte{Val: lit.Value}
	case *ast.StringLit:
		return &value.String{Val: lit.Value}
	case *ast.NilLit:
		return &value.Nil{}
	default:
		return nil
	}
}
