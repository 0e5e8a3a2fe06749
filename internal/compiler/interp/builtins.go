package interp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ruchy-lang/ruchy/internal/compiler/value"
)

// RegisterBuiltins populates the free-function built-ins (spec §4.6): I/O,
// collection constructors, and assertions. Primitive methods (abs, push,
// len, ...) are dispatched separately by callBuiltinMethod, since they're
// invoked as `receiver.method(...)` rather than bare calls.
func RegisterBuiltins(env *Env) {
	def := func(name string, fn func([]value.Value) (value.Value, error)) {
		env.Define(name, &value.BuiltinFunction{Name: name, Fn: fn}, false)
	}

	def("print", func(args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Print(strings.Join(parts, " "))
		return &value.Nil{}, nil
	})
	def("println", func(args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Println(strings.Join(parts, " "))
		return &value.Nil{}, nil
	})
	def("len", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("len expects 1 argument, got %d", len(args))
		}
		n, err := lengthOf(args[0])
		if err != nil {
			return nil, err
		}
		return &value.Int{Val: int64(n)}, nil
	})
	def("push", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("push expects 2 arguments, got %d", len(args))
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nil, fmt.Errorf("push expects an array receiver")
		}
		arr.Elements = append(arr.Elements, args[1])
		return arr, nil
	})
	def("pop", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("pop expects 1 argument, got %d", len(args))
		}
		arr, ok := args[0].(*value.Array)
		if !ok || len(arr.Elements) == 0 {
			return &value.None{}, nil
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return &value.Some{Value: last}, nil
	})
	def("range", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("range expects 2 arguments, got %d", len(args))
		}
		lo, ok1 := args[0].(*value.Int)
		hi, ok2 := args[1].(*value.Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("range expects integer bounds")
		}
		var elems []value.Value
		for v := lo.Val; v < hi.Val; v++ {
			elems = append(elems, &value.Int{Val: v})
		}
		return &value.Array{Elements: elems}, nil
	})
	def("assert", func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("assert expects at least 1 argument")
		}
		truthy, ok := value.Truthy(args[0])
		if !ok {
			return nil, fmt.Errorf("assert condition is not a bool")
		}
		if !truthy {
			msg := "assertion failed"
			if len(args) > 1 {
				msg = args[1].String()
			}
			return nil, fmt.Errorf("%s", msg)
		}
		return &value.Nil{}, nil
	})
	def("panic", func(args []value.Value) (value.Value, error) {
		msg := "panic"
		if len(args) > 0 {
			msg = args[0].String()
		}
		return nil, fmt.Errorf("%s", msg)
	})
	def("type_of", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("type_of expects 1 argument, got %d", len(args))
		}
		return &value.String{Val: string(args[0].Kind())}, nil
	})
	def("Ok", func(args []value.Value) (value.Value, error) {
		return &value.Ok{Value: argOrNil(args)}, nil
	})
	def("Err", func(args []value.Value) (value.Value, error) {
		return &value.Err{Value: argOrNil(args)}, nil
	})
	def("Some", func(args []value.Value) (value.Value, error) {
		return &value.Some{Value: argOrNil(args)}, nil
	})
	def("None", func(args []value.Value) (value.Value, error) {
		return &value.None{}, nil
	})
	def("map", func(args []value.Value) (value.Value, error) {
		return nil, fmt.Errorf("map must be called as arr.map(fn)")
	})
	def("filter", func(args []value.Value) (value.Value, error) {
		return nil, fmt.Errorf("filter must be called as arr.filter(fn)")
	})
	def("reduce", func(args []value.Value) (value.Value, error) {
		return nil, fmt.Errorf("reduce must be called as arr.reduce(init, fn)")
	})
}

func argOrNil(args []value.Value) value.Value {
	if len(args) == 0 {
		return &value.Nil{}
	}
	return args[0]
}

func lengthOf(v value.Value) (int, error) {
	switch x := v.(type) {
	case *value.Array:
		return len(x.Elements), nil
	case *value.Tuple:
		return len(x.Elements), nil
	case *value.String:
		return len([]rune(x.Val)), nil
	default:
		return 0, fmt.Errorf("len is not defined for %s", v.Kind())
	}
}

// callBuiltinMethod dispatches the primitive method set (spec §4.6):
// integer abs/pow/to_string; float sqrt/abs/floor/ceil/round/to_string;
// string len/case-conversion/trim/split/replace/contains/starts_with/
// ends_with/chars/repeat/substring; array len/push/pop/first/last/get/
// contains/map/filter/reduce/any/all/find. handled is false when no
// builtin matches, so the caller falls through to user-defined methods
// and finally an UnknownMethod-shaped error.
func (it *Interp) callBuiltinMethod(ctx context.Context, receiver value.Value, method string, args []value.Value) (value.Value, bool, error) {
	switch r := receiver.(type) {
	case *value.Int:
		return intMethod(r, method, args)
	case *value.Float:
		return floatMethod(r, method, args)
	case *value.String:
		return stringMethod(r, method, args)
	case *value.Array:
		return it.arrayMethod(ctx, r, method, args)
	}
	return nil, false, nil
}

func (it *Interp) callAsPredicate(ctx context.Context, fn value.Value, args []value.Value) (bool, error) {
	v, err := it.callValue(ctx, fn, args)
	if err != nil {
		return false, err
	}
	truthy, ok := value.Truthy(v)
	if !ok {
		return false, fmt.Errorf("callback did not return a bool")
	}
	return truthy, nil
}

func (it *Interp) callValue(ctx context.Context, fn value.Value, args []value.Value) (value.Value, error) {
	switch f := fn.(type) {
	case *value.Closure:
		return it.callClosure(ctx, f, args)
	case *value.BuiltinFunction:
		return f.Fn(args)
	case *value.BoundMethod:
		return it.callClosure(ctx, f.Method, append([]value.Value{f.Receiver}, args...))
	default:
		return nil, fmt.Errorf("%s is not callable", fn.Kind())
	}
}

func intMethod(r *value.Int, method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "abs":
		if r.Val < 0 {
			return &value.Int{Val: -r.Val, Suffix: r.Suffix}, true, nil
		}
		return r, true, nil
	case "pow":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("pow expects 1 argument")
		}
		n, ok := args[0].(*value.Int)
		if !ok {
			return nil, true, fmt.Errorf("pow expects an integer exponent")
		}
		result := int64(math.Pow(float64(r.Val), float64(n.Val)))
		return &value.Int{Val: result, Suffix: r.Suffix}, true, nil
	case "to_string":
		return &value.String{Val: r.String()}, true, nil
	default:
		return nil, false, nil
	}
}

func floatMethod(r *value.Float, method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "sqrt":
		return &value.Float{Val: math.Sqrt(r.Val)}, true, nil
	case "abs":
		return &value.Float{Val: math.Abs(r.Val)}, true, nil
	case "floor":
		return &value.Float{Val: math.Floor(r.Val)}, true, nil
	case "ceil":
		return &value.Float{Val: math.Ceil(r.Val)}, true, nil
	case "round":
		return &value.Float{Val: math.Round(r.Val)}, true, nil
	case "to_string":
		return &value.String{Val: r.String()}, true, nil
	default:
		return nil, false, nil
	}
}

func stringMethod(r *value.String, method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "len":
		return &value.Int{Val: int64(len([]rune(r.Val)))}, true, nil
	case "to_upper":
		return &value.String{Val: strings.ToUpper(r.Val)}, true, nil
	case "to_lower":
		return &value.String{Val: strings.ToLower(r.Val)}, true, nil
	case "trim":
		return &value.String{Val: strings.TrimSpace(r.Val)}, true, nil
	case "split":
		sep := ""
		if len(args) == 1 {
			if s, ok := args[0].(*value.String); ok {
				sep = s.Val
			}
		}
		parts := strings.Split(r.Val, sep)
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = &value.String{Val: p}
		}
		return &value.Array{Elements: elems}, true, nil
	case "replace":
		if len(args) != 2 {
			return nil, true, fmt.Errorf("replace expects 2 arguments")
		}
		from, ok1 := args[0].(*value.String)
		to, ok2 := args[1].(*value.String)
		if !ok1 || !ok2 {
			return nil, true, fmt.Errorf("replace expects string arguments")
		}
		return &value.String{Val: strings.ReplaceAll(r.Val, from.Val, to.Val)}, true, nil
	case "contains":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("contains expects 1 argument")
		}
		s, ok := args[0].(*value.String)
		if !ok {
			return nil, true, fmt.Errorf("contains expects a string argument")
		}
		return &value.Bool{Val: strings.Contains(r.Val, s.Val)}, true, nil
	case "starts_with":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("starts_with expects 1 argument")
		}
		s, ok := args[0].(*value.String)
		if !ok {
			return nil, true, fmt.Errorf("starts_with expects a string argument")
		}
		return &value.Bool{Val: strings.HasPrefix(r.Val, s.Val)}, true, nil
	case "ends_with":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("ends_with expects 1 argument")
		}
		s, ok := args[0].(*value.String)
		if !ok {
			return nil, true, fmt.Errorf("ends_with expects a string argument")
		}
		return &value.Bool{Val: strings.HasSuffix(r.Val, s.Val)}, true, nil
	case "chars":
		runes := []rune(r.Val)
		elems := make([]value.Value, len(runes))
		for i, ru := range runes {
			elems[i] = &value.Char{Val: ru}
		}
		return &value.Array{Elements: elems}, true, nil
	case "repeat":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("repeat expects 1 argument")
		}
		n, ok := args[0].(*value.Int)
		if !ok {
			return nil, true, fmt.Errorf("repeat expects an integer count")
		}
		return &value.String{Val: strings.Repeat(r.Val, int(n.Val))}, true, nil
	case "substring":
		if len(args) != 2 {
			return nil, true, fmt.Errorf("substring expects 2 arguments")
		}
		lo, ok1 := args[0].(*value.Int)
		hi, ok2 := args[1].(*value.Int)
		if !ok1 || !ok2 {
			return nil, true, fmt.Errorf("substring expects integer bounds")
		}
		runes := []rune(r.Val)
		if lo.Val < 0 || hi.Val > int64(len(runes)) || lo.Val > hi.Val {
			return nil, true, fmt.Errorf("substring bounds out of range")
		}
		return &value.String{Val: string(runes[lo.Val:hi.Val])}, true, nil
	case "to_string":
		return r, true, nil
	default:
		return nil, false, nil
	}
}

func (it *Interp) arrayMethod(ctx context.Context, r *value.Array, method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "map":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("map expects 1 argument")
		}
		out := make([]value.Value, len(r.Elements))
		for i, e := range r.Elements {
			v, err := it.callValue(ctx, args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			out[i] = v
		}
		return &value.Array{Elements: out}, true, nil
	case "filter":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("filter expects 1 argument")
		}
		var out []value.Value
		for _, e := range r.Elements {
			keep, err := it.callAsPredicate(ctx, args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			if keep {
				out = append(out, e)
			}
		}
		return &value.Array{Elements: out}, true, nil
	case "reduce":
		if len(args) != 2 {
			return nil, true, fmt.Errorf("reduce expects 2 arguments")
		}
		acc := args[0]
		for _, e := range r.Elements {
			v, err := it.callValue(ctx, args[1], []value.Value{acc, e})
			if err != nil {
				return nil, true, err
			}
			acc = v
		}
		return acc, true, nil
	case "any":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("any expects 1 argument")
		}
		for _, e := range r.Elements {
			ok, err := it.callAsPredicate(ctx, args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			if ok {
				return &value.Bool{Val: true}, true, nil
			}
		}
		return &value.Bool{Val: false}, true, nil
	case "all":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("all expects 1 argument")
		}
		for _, e := range r.Elements {
			ok, err := it.callAsPredicate(ctx, args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			if !ok {
				return &value.Bool{Val: false}, true, nil
			}
		}
		return &value.Bool{Val: true}, true, nil
	case "find":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("find expects 1 argument")
		}
		for _, e := range r.Elements {
			ok, err := it.callAsPredicate(ctx, args[0], []value.Value{e})
			if err != nil {
				return nil, true, err
			}
			if ok {
				return &value.Some{Value: e}, true, nil
			}
		}
		return &value.None{}, true, nil
	}
	switch method {
	case "len":
		return &value.Int{Val: int64(len(r.Elements))}, true, nil
	case "push":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("push expects 1 argument")
		}
		r.Elements = append(r.Elements, args[0])
		return r, true, nil
	case "pop":
		if len(r.Elements) == 0 {
			return &value.None{}, true, nil
		}
		last := r.Elements[len(r.Elements)-1]
		r.Elements = r.Elements[:len(r.Elements)-1]
		return &value.Some{Value: last}, true, nil
	case "first":
		if len(r.Elements) == 0 {
			return &value.None{}, true, nil
		}
		return &value.Some{Value: r.Elements[0]}, true, nil
	case "last":
		if len(r.Elements) == 0 {
			return &value.None{}, true, nil
		}
		return &value.Some{Value: r.Elements[len(r.Elements)-1]}, true, nil
	case "get":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("get expects 1 argument")
		}
		idx, ok := args[0].(*value.Int)
		if !ok || idx.Val < 0 || int(idx.Val) >= len(r.Elements) {
			return &value.None{}, true, nil
		}
		return &value.Some{Value: r.Elements[idx.Val]}, true, nil
	case "contains":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("contains expects 1 argument")
		}
		for _, e := range r.Elements {
			if value.Equal(e, args[0]) {
				return &value.Bool{Val: true}, true, nil
			}
		}
		return &value.Bool{Val: false}, true, nil
	case "to_string":
		return &value.String{Val: r.String()}, true, nil
	default:
		return nil, false, nil
	}
}
