package interp

import (
	"fmt"

	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/value"
)

// registerOperators wires the normalizer's desugared `__binop_*`/`__unop_*`
// calls (spec §4.3.1 "binary/unary expressions desugar to builtin calls")
// plus the `__iter_next`/`__try_wrap` protocol hooks the for-loop and
// try/catch desugarings emit, so every CCall the normalizer produces
// resolves against a real builtin rather than an undefined name.
func registerOperators(env *Env) {
	def := func(name string, fn func([]value.Value) (value.Value, error)) {
		env.Define(name, &value.BuiltinFunction{Name: name, Fn: fn}, false)
	}

	arithF := map[string]func(float64, float64) float64{
		"+": func(a, b float64) float64 { return a + b },
		"-": func(a, b float64) float64 { return a - b },
		"*": func(a, b float64) float64 { return a * b },
	}
	for _, op := range []string{"+", "-", "*", "%"} {
		op, ffn := op, arithF[op]
		def("__binop_"+op, func(args []value.Value) (value.Value, error) {
			return binArith(op, args, ffn)
		})
	}
	def("__binop_/", func(args []value.Value) (value.Value, error) { return binDivide(args) })
	def("__binop_**", func(args []value.Value) (value.Value, error) { return binPow(args) })

	def("__binop_+", func(args []value.Value) (value.Value, error) {
		if len(args) == 2 {
			if l, ok := args[0].(*value.String); ok {
				r, ok := args[1].(*value.String)
				if !ok {
					return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("cannot add string and %s", args[1].Kind())}
				}
				return &value.String{Val: l.Val + r.Val}, nil
			}
		}
		return binArith("+", args, arithF["+"])
	})

	cmp := map[string]func(int, int) bool{
		"<":  func(c, _ int) bool { return c < 0 },
		"<=": func(c, _ int) bool { return c <= 0 },
		">":  func(c, _ int) bool { return c > 0 },
		">=": func(c, _ int) bool { return c >= 0 },
	}
	for op, fn := range cmp {
		op, fn := op, fn
		def("__binop_"+op, func(args []value.Value) (value.Value, error) {
			return binCompare(op, args, fn)
		})
	}
	def("__binop_==", func(args []value.Value) (value.Value, error) {
		if err := need2(args, "=="); err != nil {
			return nil, err
		}
		return &value.Bool{Val: value.Equal(args[0], args[1])}, nil
	})
	def("__binop_!=", func(args []value.Value) (value.Value, error) {
		if err := need2(args, "!="); err != nil {
			return nil, err
		}
		return &value.Bool{Val: !value.Equal(args[0], args[1])}, nil
	})
	def("__binop_&&", func(args []value.Value) (value.Value, error) {
		return binBool(args, func(a, b bool) bool { return a && b })
	})
	def("__binop_||", func(args []value.Value) (value.Value, error) {
		return binBool(args, func(a, b bool) bool { return a || b })
	})
	def("__binop_??", func(args []value.Value) (value.Value, error) {
		if err := need2(args, "??"); err != nil {
			return nil, err
		}
		switch l := args[0].(type) {
		case *value.None:
			return args[1], nil
		case *value.Some:
			return l.Value, nil
		case *value.Nil:
			return args[1], nil
		default:
			return l, nil
		}
	})

	bitwise := map[string]func(int64, int64) int64{
		"&":  func(a, b int64) int64 { return a & b },
		"|":  func(a, b int64) int64 { return a | b },
		"^":  func(a, b int64) int64 { return a ^ b },
		"<<": func(a, b int64) int64 { return a << uint(b) },
		">>": func(a, b int64) int64 { return a >> uint(b) },
	}
	for op, fn := range bitwise {
		op, fn := op, fn
		def("__binop_"+op, func(args []value.Value) (value.Value, error) {
			if err := need2(args, op); err != nil {
				return nil, err
			}
			l, ok1 := args[0].(*value.Int)
			r, ok2 := args[1].(*value.Int)
			if !ok1 || !ok2 {
				return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("%q expects two integers, got %s and %s", op, args[0].Kind(), args[1].Kind())}
			}
			return &value.Int{Val: fn(l.Val, r.Val), Suffix: l.Suffix}, nil
		})
	}

	def("__unop_-", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("unary - expects 1 argument")
		}
		switch v := args[0].(type) {
		case *value.Int:
			if v.Val == -v.Val && v.Val != 0 {
				return nil, &errors.RuntimeError{Kind: errors.IntegerOverflow, Context: "negating the minimum representable integer overflows"}
			}
			return &value.Int{Val: -v.Val, Suffix: v.Suffix}, nil
		case *value.Float:
			return &value.Float{Val: -v.Val}, nil
		default:
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("cannot negate %s", v.Kind())}
		}
	})
	def("__unop_!", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("unary ! expects 1 argument")
		}
		b, ok := args[0].(*value.Bool)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("unary ! expects a bool, got %s", args[0].Kind())}
		}
		return &value.Bool{Val: !b.Val}, nil
	})
	def("__unop_~", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("unary ~ expects 1 argument")
		}
		i, ok := args[0].(*value.Int)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("unary ~ expects an integer, got %s", args[0].Kind())}
		}
		return &value.Int{Val: ^i.Val, Suffix: i.Suffix}, nil
	})
	// __unop_* is the deref operator. There is no host pointer/reference
	// value in this interpreter to dereference into, so it always raises
	// the capability gap documented in spec §9's worked example rather
	// than pretending to succeed.
	def("__unop_*", func(args []value.Value) (value.Value, error) {
		return nil, &errors.RuntimeError{Kind: errors.UnsupportedRuntime, Context: "dereference has no interpreter value representation"}
	})

	// __iter_next consumes one element off the front of the cursor, which
	// the for-loop desugaring always binds to the iterable value itself
	// (spec §4.3.1 "for-loop desugars to a while loop over __iter_next").
	// Arrays act as their own cursor: Go's shared backing array means the
	// CLet-bound cursor variable sees every subsequent shrink in place.
	def("__iter_next", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("__iter_next expects 1 argument")
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("cannot iterate over %s", args[0].Kind())}
		}
		if len(arr.Elements) == 0 {
			return &value.None{}, nil
		}
		next := arr.Elements[0]
		arr.Elements = arr.Elements[1:]
		return &value.Some{Value: next}, nil
	})

	// __try_wrap normalizes a try-block's result into a Result value: a
	// throw anywhere inside already evaluates to an Err, everything else
	// succeeds as Ok (spec §4.3.1 "try/catch matches on a Result wrapper").
	def("__try_wrap", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("__try_wrap expects 1 argument")
		}
		if e, ok := args[0].(*value.Err); ok {
			return e, nil
		}
		return &value.Ok{Value: args[0]}, nil
	})
}

func need2(args []value.Value, op string) error {
	if len(args) != 2 {
		return fmt.Errorf("%q expects 2 arguments, got %d", op, len(args))
	}
	return nil
}

// intArithChecked performs a checked int64 +/-/*/% using the standard
// two's-complement overflow tests (sign of the result disagrees with what
// both/either operand's sign predicts), raising overflow exactly where
// Go's own silent-wraparound semantics would otherwise hide it (spec
// §4.6/§8 "IntegerOverflow").
func intArithChecked(op string, a, b int64) (int64, bool) {
	switch op {
	case "+":
		sum := a + b
		return sum, ((a ^ sum) & (b ^ sum)) < 0
	case "-":
		diff := a - b
		return diff, ((a ^ b) & (a ^ diff)) < 0
	case "*":
		if a == 0 || b == 0 {
			return 0, false
		}
		p := a * b
		return p, p/b != a || (a == -1 && b == minInt64) || (b == -1 && a == minInt64)
	case "%":
		return a % b, false
	}
	return 0, false
}

const minInt64 = -1 << 63

func binArith(op string, args []value.Value, floatFn func(float64, float64) float64) (value.Value, error) {
	if err := need2(args, op); err != nil {
		return nil, err
	}
	li, lok := args[0].(*value.Int)
	ri, rok := args[1].(*value.Int)
	if lok && rok {
		if op == "%" && ri.Val == 0 {
			return nil, &errors.RuntimeError{Kind: errors.DivisionByZero, Context: "modulo by zero"}
		}
		result, overflow := intArithChecked(op, li.Val, ri.Val)
		if overflow {
			return nil, &errors.RuntimeError{Kind: errors.IntegerOverflow, Context: fmt.Sprintf("%s %s %s overflows a 64-bit integer", li.Inspect(), op, ri.Inspect())}
		}
		return &value.Int{Val: result, Suffix: li.Suffix}, nil
	}
	lf, lok := asFloat(args[0])
	rf, rok := asFloat(args[1])
	if lok && rok && floatFn != nil {
		return &value.Float{Val: floatFn(lf, rf)}, nil
	}
	return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("%q expects two numbers, got %s and %s", op, args[0].Kind(), args[1].Kind())}
}

func binDivide(args []value.Value) (value.Value, error) {
	if err := need2(args, "/"); err != nil {
		return nil, err
	}
	li, lok := args[0].(*value.Int)
	ri, rok := args[1].(*value.Int)
	if lok && rok {
		if ri.Val == 0 {
			return nil, &errors.RuntimeError{Kind: errors.DivisionByZero, Context: "division by zero"}
		}
		if li.Val == minInt64 && ri.Val == -1 {
			return nil, &errors.RuntimeError{Kind: errors.IntegerOverflow, Context: "dividing the minimum representable integer by -1 overflows"}
		}
		return &value.Int{Val: li.Val / ri.Val, Suffix: li.Suffix}, nil
	}
	lf, lok := asFloat(args[0])
	rf, rok := asFloat(args[1])
	if lok && rok {
		return &value.Float{Val: lf / rf}, nil
	}
	return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("%q expects two numbers, got %s and %s", "/", args[0].Kind(), args[1].Kind())}
}

func binPow(args []value.Value) (value.Value, error) {
	if err := need2(args, "**"); err != nil {
		return nil, err
	}
	lf, lok := asFloat(args[0])
	rf, rok := asFloat(args[1])
	if !lok || !rok {
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("%q expects two numbers, got %s and %s", "**", args[0].Kind(), args[1].Kind())}
	}
	result := 1.0
	for i := 0.0; i < rf; i++ {
		result *= lf
	}
	if _, isInt := args[0].(*value.Int); isInt {
		if _, isIntR := args[1].(*value.Int); isIntR {
			return &value.Int{Val: int64(result)}, nil
		}
	}
	return &value.Float{Val: result}, nil
}

func binCompare(op string, args []value.Value, pred func(c, _ int) bool) (value.Value, error) {
	if err := need2(args, op); err != nil {
		return nil, err
	}
	lf, lok := asFloat(args[0])
	rf, rok := asFloat(args[1])
	if lok && rok {
		c := 0
		switch {
		case lf < rf:
			c = -1
		case lf > rf:
			c = 1
		}
		return &value.Bool{Val: pred(c, 0)}, nil
	}
	ls, lok := args[0].(*value.String)
	rs, rok := args[1].(*value.String)
	if lok && rok {
		c := 0
		switch {
		case ls.Val < rs.Val:
			c = -1
		case ls.Val > rs.Val:
			c = 1
		}
		return &value.Bool{Val: pred(c, 0)}, nil
	}
	return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: fmt.Sprintf("%q expects two comparable operands, got %s and %s", op, args[0].Kind(), args[1].Kind())}
}

func binBool(args []value.Value, fn func(a, b bool) bool) (value.Value, error) {
	if err := need2(args, "logical"); err != nil {
		return nil, err
	}
	l, lok := args[0].(*value.Bool)
	r, rok := args[1].(*value.Bool)
	if !lok || !rok {
		return nil, &errors.RuntimeError{Kind: errors.TypeMismatch, Context: "logical operator expects two bools"}
	}
	return &value.Bool{Val: fn(l.Val, r.Val)}, nil
}

func asFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case *value.Int:
		return float64(x.Val), true
	case *value.Float:
		return x.Val, true
	default:
		return 0, false
	}
}
