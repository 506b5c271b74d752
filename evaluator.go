package clay

import (
	"regexp"
	"strings"
)

// Evaluate parses and evaluates one expression
func (e *Engine) Evaluate(src string) (Value, error) {
	expr, err := ParseExpression(src)
	if err != nil {
		return Value{}, err
	}
	return e.eval(expr)
}

func (e *Engine) eval(x Expr) (Value, error) {
	switch n := x.(type) {
	case Literal:
		return n.Value, nil

	case VarRef:
		return e.lookup(n.Name), nil

	case Call:
		return e.callBuiltin(n.Name, n.Args)

	case Unary:
		v, err := e.eval(n.X)
		if err != nil {
			return Value{}, err
		}
		switch n.Op {
		case "!":
			return Bool(!v.ToBool()), nil
		case "-":
			num := v.numeric()
			if num.kind == KindInt {
				return Int(-num.i), nil
			}
			return Float(-num.f), nil
		default:
			return v.numeric(), nil
		}

	case IncDec:
		next, err := arith("+", e.lookup(n.Name), Int(n.Delta))
		if err != nil {
			return Value{}, err
		}
		e.setVar(n.Name, next)
		return next, nil

	case Binary:
		l, err := e.eval(n.L)
		if err != nil {
			return Value{}, err
		}
		r, err := e.eval(n.R)
		if err != nil {
			return Value{}, err
		}
		return e.binary(n.Op, l, r)

	case Logical:
		l, err := e.eval(n.L)
		if err != nil {
			return Value{}, err
		}
		if n.Op == "&" && !l.ToBool() {
			return Int(0), nil
		}
		if n.Op == "|" && l.ToBool() {
			return Int(1), nil
		}
		r, err := e.eval(n.R)
		if err != nil {
			return Value{}, err
		}
		return Bool(r.ToBool()), nil

	case Ternary:
		c, err := e.eval(n.Cond)
		if err != nil {
			return Value{}, err
		}
		if c.ToBool() {
			if n.Then == nil {
				return c, nil
			}
			return e.eval(n.Then)
		}
		return e.eval(n.Else)

	case Assign:
		v, err := e.eval(n.Value)
		if err != nil {
			return Value{}, err
		}
		e.setVar(n.Name, v)
		return v, nil
	}
	return Value{}, evalErrorf("cannot evaluate %T", x)
}

func (e *Engine) binary(op string, l, r Value) (Value, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		return arith(op, l, r)
	case "==":
		return Bool(compareValues(l, r) == 0), nil
	case "!=":
		return Bool(compareValues(l, r) != 0), nil
	case "<":
		return Bool(compareValues(l, r) < 0), nil
	case "<=":
		return Bool(compareValues(l, r) <= 0), nil
	case ">":
		return Bool(compareValues(l, r) > 0), nil
	case ">=":
		return Bool(compareValues(l, r) >= 0), nil
	case "=~":
		return Bool(l.String() == r.String()), nil
	case "!~":
		return Bool(l.String() != r.String()), nil
	case "=/", "!/":
		re, err := e.globRegexp(r.String())
		if err != nil {
			return Value{}, err
		}
		matched := re.MatchString(l.String())
		if op == "!/" {
			matched = !matched
		}
		return Bool(matched), nil
	}
	return Value{}, evalErrorf("unknown operator %q", op)
}

// globRegexp compiles an anchored glob pattern, caching by pattern text
func (e *Engine) globRegexp(pattern string) (*regexp.Regexp, error) {
	if re, found := e.globCache[pattern]; found {
		return re, nil
	}
	re, err := regexp.Compile(globMatchSource(pattern))
	if err != nil {
		return nil, evalErrorf("bad glob pattern %q: %v", pattern, err)
	}
	e.globCache[pattern] = re
	return re, nil
}

// globMatchSource translates a glob for the =/ operator: "*" is any run,
// "?" is one non-blank character, "[...]" is a class, all else is literal.
func globMatchSource(pattern string) string {
	var sb strings.Builder
	sb.WriteString(`(?s)^`)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`\S`)
		case '[':
			if end := classEnd(pattern, i); end > 0 {
				sb.WriteString(classSource(pattern[i : end+1]))
				i = end
				continue
			}
			sb.WriteString(`\[`)
		case '\\':
			if i+1 < len(pattern) {
				i++
				sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
				continue
			}
			sb.WriteString(`\\`)
		default:
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	sb.WriteString(`$`)
	return sb.String()
}

// classEnd returns the index of the "]" closing the class opened at start, or -1
func classEnd(pattern string, start int) int {
	i := start + 1
	if i < len(pattern) && (pattern[i] == '^' || pattern[i] == '!') {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for ; i < len(pattern); i++ {
		if pattern[i] == ']' {
			return i
		}
	}
	return -1
}

// classSource turns a glob class into a regexp class; "[!x]" negates like "[^x]"
func classSource(class string) string {
	inner := class[1 : len(class)-1]
	if strings.HasPrefix(inner, "!") {
		inner = "^" + inner[1:]
	}
	inner = strings.ReplaceAll(inner, `\`, `\\`)
	return "[" + inner + "]"
}
