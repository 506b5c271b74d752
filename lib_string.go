package clay

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// runeIndex converts a byte offset in s to a rune offset
func runeIndex(s string, byteIdx int) int {
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func buildStringLib() {
	builtins["strlen"] = builtin{1, 1, "strlen(s)", func(e *Engine, args []Value) (Value, error) {
		return Int(int64(utf8.RuneCountInString(args[0].String()))), nil
	}}

	builtins["substr"] = builtin{2, 3, "substr(s, start[, len])", func(e *Engine, args []Value) (Value, error) {
		r := []rune(args[0].String())
		start := int(args[1].ToInt())
		if start < 0 {
			start += len(r)
		}
		start = clamp(start, 0, len(r))
		end := len(r)
		if len(args) == 3 {
			n := int(args[2].ToInt())
			if n < 0 {
				end += n
			} else {
				end = start + n
			}
			end = clamp(end, start, len(r))
		}
		return Str(string(r[start:end])), nil
	}}

	builtins["strcat"] = builtin{0, -1, "strcat(s...)", func(e *Engine, args []Value) (Value, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(a.String())
		}
		return Str(sb.String()), nil
	}}

	builtins["strstr"] = builtin{2, 3, "strstr(s, sub[, start])", func(e *Engine, args []Value) (Value, error) {
		s, sub := args[0].String(), args[1].String()
		offset := 0
		if len(args) == 3 {
			r := []rune(s)
			offset = clamp(int(args[2].ToInt()), 0, len(r))
			s = string(r[offset:])
		}
		idx := runeIndex(s, strings.Index(s, sub))
		if idx < 0 {
			return Int(-1), nil
		}
		return Int(int64(idx + offset)), nil
	}}

	builtins["strrstr"] = builtin{2, 2, "strrstr(s, sub)", func(e *Engine, args []Value) (Value, error) {
		s := args[0].String()
		return Int(int64(runeIndex(s, strings.LastIndex(s, args[1].String())))), nil
	}}

	builtins["strchr"] = builtin{2, 2, "strchr(s, chars)", func(e *Engine, args []Value) (Value, error) {
		s := args[0].String()
		return Int(int64(runeIndex(s, strings.IndexAny(s, args[1].String())))), nil
	}}

	builtins["strrchr"] = builtin{2, 2, "strrchr(s, chars)", func(e *Engine, args []Value) (Value, error) {
		s := args[0].String()
		return Int(int64(runeIndex(s, strings.LastIndexAny(s, args[1].String())))), nil
	}}

	builtins["strrep"] = builtin{2, 2, "strrep(s, n)", func(e *Engine, args []Value) (Value, error) {
		n := args[1].ToInt()
		if n < 0 {
			return Value{}, evalErrorf("strrep: negative count %d", n)
		}
		return Str(strings.Repeat(args[0].String(), int(n))), nil
	}}

	builtins["strcmp"] = builtin{2, 2, "strcmp(a, b)", func(e *Engine, args []Value) (Value, error) {
		return Int(int64(strings.Compare(args[0].String(), args[1].String()))), nil
	}}

	builtins["strncmp"] = builtin{3, 3, "strncmp(a, b, n)", func(e *Engine, args []Value) (Value, error) {
		n := int(args[2].ToInt())
		if n < 0 {
			return Value{}, evalErrorf("strncmp: negative length %d", n)
		}
		a, b := []rune(args[0].String()), []rune(args[1].String())
		if len(a) > n {
			a = a[:n]
		}
		if len(b) > n {
			b = b[:n]
		}
		return Int(int64(strings.Compare(string(a), string(b)))), nil
	}}

	builtins["toupper"] = builtin{1, 1, "toupper(s)", func(e *Engine, args []Value) (Value, error) {
		return Str(strings.ToUpper(args[0].String())), nil
	}}

	builtins["tolower"] = builtin{1, 1, "tolower(s)", func(e *Engine, args []Value) (Value, error) {
		return Str(strings.ToLower(args[0].String())), nil
	}}

	builtins["replace"] = builtin{3, 3, "replace(old, new, s)", func(e *Engine, args []Value) (Value, error) {
		old := args[0].String()
		if old == "" {
			return args[2], nil
		}
		return Str(strings.ReplaceAll(args[2].String(), old, args[1].String())), nil
	}}

	// pad(s, width, ...) right-aligns in a positive width, left-aligns in a negative one
	builtins["pad"] = builtin{1, -1, "pad(s, width[, s, width]...)", func(e *Engine, args []Value) (Value, error) {
		var sb strings.Builder
		for i := 0; i < len(args); i += 2 {
			s := args[i].String()
			if i+1 >= len(args) {
				sb.WriteString(s)
				break
			}
			width := int(args[i+1].ToInt())
			fill := 0
			n := utf8.RuneCountInString(s)
			if width < 0 {
				if fill = -width - n; fill > 0 {
					sb.WriteString(s + strings.Repeat(" ", fill))
					continue
				}
			} else if fill = width - n; fill > 0 {
				sb.WriteString(strings.Repeat(" ", fill) + s)
				continue
			}
			sb.WriteString(s)
		}
		return Str(sb.String()), nil
	}}

	builtins["ascii"] = builtin{1, 1, "ascii(s)", func(e *Engine, args []Value) (Value, error) {
		s := args[0].String()
		if s == "" {
			return Int(0), nil
		}
		r, _ := utf8.DecodeRuneInString(s)
		return Int(int64(r)), nil
	}}

	builtins["char"] = builtin{1, 1, "char(n)", func(e *Engine, args []Value) (Value, error) {
		n := args[0].ToInt()
		if n < 0 || n > utf8.MaxRune {
			return Value{}, evalErrorf("char: code %d out of range", n)
		}
		return Str(string(rune(n))), nil
	}}

	builtins["trim"] = builtin{1, 2, "trim(s[, chars])", func(e *Engine, args []Value) (Value, error) {
		if len(args) == 2 {
			return Str(strings.Trim(args[0].String(), args[1].String())), nil
		}
		return Str(strings.TrimSpace(args[0].String())), nil
	}}

	builtins["textencode"] = builtin{1, 1, "textencode(s)", func(e *Engine, args []Value) (Value, error) {
		return Str(escapeValue(args[0].String())), nil
	}}

	builtins["textdecode"] = builtin{1, 1, "textdecode(s)", func(e *Engine, args []Value) (Value, error) {
		return Str(unescapeValue(args[0].String())), nil
	}}

	builtins["strip_attr"] = builtin{1, 1, "strip_attr(s)", func(e *Engine, args []Value) (Value, error) {
		return Str(ansiSequence.ReplaceAllString(args[0].String(), "")), nil
	}}

	builtins["sprintf"] = builtin{1, -1, "sprintf(format, args...)", func(e *Engine, args []Value) (Value, error) {
		s, err := sprintf(args[0].String(), args[1:])
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil
	}}
}

// sprintf formats like C printf with the conversions d i o x X c e f g s and
// %%; flags, width and precision pass through to fmt.
func sprintf(format string, args []Value) (string, error) {
	var sb strings.Builder
	next := 0
	arg := func() Value {
		if next < len(args) {
			next++
			return args[next-1]
		}
		next++
		return Str("")
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ #0", format[j]) >= 0 {
			j++
		}
		spec := format[i+1 : j]
		if j < len(format) && format[j] == '*' {
			spec += strconv.FormatInt(arg().ToInt(), 10)
			j++
		}
		for j < len(format) && (isDigit(format[j]) || format[j] == '.') {
			spec += format[j : j+1]
			j++
		}
		if j >= len(format) {
			return "", evalErrorf("sprintf: incomplete conversion at end of format")
		}
		verb := format[j]
		i = j
		switch verb {
		case '%':
			sb.WriteByte('%')
		case 'd', 'i':
			fmt.Fprintf(&sb, "%"+spec+"d", arg().ToInt())
		case 'o', 'x', 'X':
			fmt.Fprintf(&sb, "%"+spec+string(verb), arg().ToInt())
		case 'c':
			v := arg()
			if v.Kind() == KindString && !v.IsNumeric() {
				r, _ := utf8.DecodeRuneInString(v.String())
				fmt.Fprintf(&sb, "%"+spec+"c", r)
			} else {
				fmt.Fprintf(&sb, "%"+spec+"c", rune(v.ToInt()))
			}
		case 'e', 'E', 'f', 'g', 'G':
			fmt.Fprintf(&sb, "%"+spec+string(verb), arg().ToFloat())
		case 's':
			fmt.Fprintf(&sb, "%"+spec+"s", arg().String())
		default:
			return "", evalErrorf("sprintf: unknown conversion %%%c", verb)
		}
	}
	return sb.String(), nil
}
