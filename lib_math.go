package clay

import (
	"math"
)

// floatFunc wraps a one-argument float function with a domain check
func floatFunc(name string, valid func(float64) bool, fn func(float64) float64) builtin {
	return builtin{1, 1, name + "(x)", func(e *Engine, args []Value) (Value, error) {
		x := args[0].ToFloat()
		if valid != nil && !valid(x) {
			return Value{}, evalErrorf("%s(%s): argument out of domain", name, args[0])
		}
		return Float(fn(x)), nil
	}}
}

// roundFunc applies fn and returns an integer
func roundFunc(name string, fn func(float64) float64) builtin {
	return builtin{1, 1, name + "(x)", func(e *Engine, args []Value) (Value, error) {
		n := args[0].numeric()
		if n.Kind() == KindInt {
			return n, nil
		}
		return Int(int64(fn(n.ToFloat()))), nil
	}}
}

func nonNegative(x float64) bool { return x >= 0 }

func positive(x float64) bool { return x > 0 }

func unitRange(x float64) bool { return x >= -1 && x <= 1 }

// extreme returns the smallest (sign -1) or largest (sign 1) argument
func extreme(sign int) builtinFunc {
	return func(e *Engine, args []Value) (Value, error) {
		best := args[0].numeric()
		for _, a := range args[1:] {
			n := a.numeric()
			if compareValues(n, best)*sign > 0 {
				best = n
			}
		}
		return best, nil
	}
}

func buildMathLib() {
	builtins["abs"] = builtin{1, 1, "abs(x)", func(e *Engine, args []Value) (Value, error) {
		n := args[0].numeric()
		if n.Kind() == KindInt {
			if n.ToInt() < 0 {
				return Int(-n.ToInt()), nil
			}
			return n, nil
		}
		return Float(math.Abs(n.ToFloat())), nil
	}}

	builtins["sgn"] = builtin{1, 1, "sgn(x)", func(e *Engine, args []Value) (Value, error) {
		x := args[0].ToFloat()
		switch {
		case x > 0:
			return Int(1), nil
		case x < 0:
			return Int(-1), nil
		}
		return Int(0), nil
	}}

	builtins["min"] = builtin{1, -1, "min(x, ...)", extreme(-1)}
	builtins["max"] = builtin{1, -1, "max(x, ...)", extreme(1)}

	builtins["mod"] = builtin{2, 2, "mod(a, b)", func(e *Engine, args []Value) (Value, error) {
		return arith("%", Int(args[0].ToInt()), Int(args[1].ToInt()))
	}}

	builtins["trunc"] = roundFunc("trunc", math.Trunc)
	builtins["round"] = roundFunc("round", math.Round)
	builtins["ceil"] = roundFunc("ceil", math.Ceil)
	builtins["floor"] = roundFunc("floor", math.Floor)

	builtins["int"] = builtin{1, 1, "int(x)", func(e *Engine, args []Value) (Value, error) {
		return Int(args[0].ToInt()), nil
	}}

	builtins["float"] = builtin{1, 1, "float(x)", func(e *Engine, args []Value) (Value, error) {
		return Float(args[0].ToFloat()), nil
	}}

	builtins["sqrt"] = floatFunc("sqrt", nonNegative, math.Sqrt)
	builtins["exp"] = floatFunc("exp", nil, math.Exp)
	builtins["ln"] = floatFunc("ln", positive, math.Log)
	builtins["log10"] = floatFunc("log10", positive, math.Log10)
	builtins["sin"] = floatFunc("sin", nil, math.Sin)
	builtins["cos"] = floatFunc("cos", nil, math.Cos)
	builtins["tan"] = floatFunc("tan", nil, math.Tan)
	builtins["asin"] = floatFunc("asin", unitRange, math.Asin)
	builtins["acos"] = floatFunc("acos", unitRange, math.Acos)
	builtins["atan"] = floatFunc("atan", nil, math.Atan)

	builtins["pow"] = builtin{2, 2, "pow(x, y)", func(e *Engine, args []Value) (Value, error) {
		x, y := args[0].ToFloat(), args[1].ToFloat()
		r := math.Pow(x, y)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Value{}, evalErrorf("pow(%s, %s): result out of range", args[0], args[1])
		}
		return Float(r), nil
	}}

	// rand() is any non-negative integer, rand(n) is 0..n-1, rand(a, b) is a..b
	builtins["rand"] = builtin{0, 2, "rand([[min,] max])", func(e *Engine, args []Value) (Value, error) {
		switch len(args) {
		case 0:
			return Int(e.rng.Int63()), nil
		case 1:
			n := args[0].ToInt()
			if n <= 0 {
				return Value{}, evalErrorf("rand(%d): bound must be positive", n)
			}
			return Int(e.rng.Int63n(n)), nil
		}
		lo, hi := args[0].ToInt(), args[1].ToInt()
		if hi < lo {
			return Value{}, evalErrorf("rand(%d, %d): empty range", lo, hi)
		}
		return Int(lo + e.rng.Int63n(hi-lo+1)), nil
	}}

	builtins["isnumber"] = builtin{1, 1, "isnumber(x)", func(e *Engine, args []Value) (Value, error) {
		return Bool(args[0].IsNumeric()), nil
	}}
}
