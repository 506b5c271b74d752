package clay

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the scalar held by a Value
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Value is the scalar every expression evaluates to. The zero Value is "".
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

// Int makes an integer value
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float makes a float value
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str makes a string value
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Bool makes the integer 1 or 0
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Kind returns the value's tag
func (v Value) Kind() ValueKind { return v.kind }

// ToBool is false only for 0, 0.0, "" and "0"
func (v Value) ToBool() bool {
	switch v.kind {
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	default:
		return v.s != "" && v.s != "0"
	}
}

// String renders the value the way substitution and #echo show it
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	default:
		return v.s
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numeric returns the value as a number. Strings that parse as integers stay
// integers; anything else becomes a float (0.0 when unparseable).
func (v Value) numeric() Value {
	switch v.kind {
	case KindInt, KindFloat:
		return v
	}
	s := strings.TrimSpace(v.s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if !decimalNumber(s) {
		return Float(0)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return Float(0)
}

// IsNumeric reports whether v is a number or a string that reads as one
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindInt, KindFloat:
		return true
	}
	s := strings.TrimSpace(v.s)
	if s == "" {
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if !decimalNumber(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// decimalNumber reports whether s is written as [sign]digits[.digits][e[sign]digits].
// Words like "inf" and "nan" and hex forms are strings.
func decimalNumber(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for ; i < len(s) && isDigit(s[i]); i++ {
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

// ToInt coerces to an integer, truncating floats
func (v Value) ToInt() int64 {
	n := v.numeric()
	if n.kind == KindInt {
		return n.i
	}
	return int64(n.f)
}

// ToFloat coerces to a float
func (v Value) ToFloat() float64 {
	n := v.numeric()
	if n.kind == KindInt {
		return float64(n.i)
	}
	return n.f
}

// Equal compares numerically when both sides are numeric, else as strings
func (v Value) Equal(o Value) bool {
	return compareValues(v, o) == 0
}

// compareValues returns -1, 0 or 1
func compareValues(a, b Value) int {
	if a.IsNumeric() && b.IsNumeric() {
		na, nb := a.numeric(), b.numeric()
		if na.kind == KindInt && nb.kind == KindInt {
			switch {
			case na.i < nb.i:
				return -1
			case na.i > nb.i:
				return 1
			}
			return 0
		}
		fa, fb := na.ToFloat(), nb.ToFloat()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a.String(), b.String())
}

// arith applies + - * / % with integer/float promotion
func arith(op string, a, b Value) (Value, error) {
	na, nb := a.numeric(), b.numeric()
	if na.kind == KindInt && nb.kind == KindInt {
		x, y := na.i, nb.i
		switch op {
		case "+":
			return Int(x + y), nil
		case "-":
			return Int(x - y), nil
		case "*":
			return Int(x * y), nil
		case "/":
			if y == 0 {
				return Value{}, evalErrorf("division by zero")
			}
			return Int(x / y), nil
		case "%":
			if y == 0 {
				return Value{}, evalErrorf("modulo by zero")
			}
			return Int(x % y), nil
		}
		return Value{}, evalErrorf("unknown arithmetic operator %q", op)
	}

	x, y := na.ToFloat(), nb.ToFloat()
	switch op {
	case "+":
		return Float(x + y), nil
	case "-":
		return Float(x - y), nil
	case "*":
		return Float(x * y), nil
	case "/":
		if y == 0 {
			return Value{}, evalErrorf("division by zero")
		}
		return Float(x / y), nil
	case "%":
		if y == 0 {
			return Value{}, evalErrorf("modulo by zero")
		}
		return Float(math.Mod(x, y)), nil
	}
	return Value{}, evalErrorf("unknown arithmetic operator %q", op)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// atoi reads a non-negative decimal, returning -1 on anything else
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
