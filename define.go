package clay

import (
	"strconv"
	"strings"
)

// ParseDefinition parses the text after "#def": "[flags] name = body".
// The returned macro is not registered.
func ParseDefinition(spec string) (*Macro, error) {
	m := &Macro{}
	var (
		pattern    string
		hasPattern bool
		mode       = MatchGlob
	)

	rest := spec
	for {
		rest = strings.TrimLeft(rest, " \t")
		if len(rest) < 2 || rest[0] != '-' {
			break
		}
		if strings.HasPrefix(rest, "-- ") || rest == "--" {
			rest = strings.TrimPrefix(rest, "--")
			break
		}
		flag := rest[1]

		if isDigit(flag) {
			end := 1
			for end < len(rest) && isDigit(rest[end]) {
				end++
			}
			shots, _ := strconv.Atoi(rest[1:end])
			if shots <= 0 {
				return nil, defineErrorf("shot count must be positive")
			}
			m.Shots = shots
			rest = rest[end:]
			continue
		}

		switch flag {
		case 'F':
			m.FallThrough = true
			rest = rest[2:]
			continue
		case 'i':
			m.Internal = true
			rest = rest[2:]
			continue
		case 't', 'm', 'p', 'n', 'a', 'E', 'c', 'w', 'h', 'b':
		default:
			return nil, defineErrorf("unknown flag -%c", flag)
		}

		value, remainder, err := readFlagValue(rest[2:])
		if err != nil {
			return nil, err
		}
		if value == "" && flag != 't' {
			return nil, defineErrorf("flag -%c needs a value", flag)
		}
		rest = remainder

		switch flag {
		case 't':
			pattern = value
			hasPattern = true
		case 'm':
			if mode, err = ParseMatchMode(value); err != nil {
				return nil, err
			}
		case 'p':
			p, err := strconv.Atoi(value)
			if err != nil {
				return nil, defineErrorf("bad priority %q", value)
			}
			m.Priority = p
		case 'n':
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, defineErrorf("bad shot count %q", value)
			}
			m.Shots = n
		case 'a':
			attrs, err := parseAttributes(value)
			if err != nil {
				return nil, err
			}
			m.Attrs = m.Attrs.Merge(attrs)
		case 'E':
			expr, err := ParseExpression(value)
			if err != nil {
				return nil, &ScriptError{Kind: ErrDefine, Message: "bad -E condition", Err: err}
			}
			m.Condition = value
			m.condExpr = expr
		case 'c':
			chance, err := strconv.ParseFloat(value, 64)
			if err != nil || chance < 0 || chance > 1 {
				return nil, defineErrorf("chance %q must be a number from 0 to 1", value)
			}
			m.Probability = chance
			m.HasChance = true
		case 'w':
			m.World = value
		case 'h':
			event, err := ParseHookEvent(value)
			if err != nil {
				return nil, err
			}
			m.Hook = event
		case 'b':
			m.Key = NormalizeKey(value)
		}
	}

	eq := unescapedIndex(rest, '=')
	if eq < 0 {
		return nil, defineErrorf("missing '=' in definition")
	}
	name := unescapeName(strings.TrimSpace(rest[:eq]))
	if name == "" {
		return nil, defineErrorf("empty macro name")
	}
	if strings.ContainsAny(name, " \t") {
		return nil, defineErrorf("macro name %q may not contain spaces", name)
	}
	m.Name = name
	body := strings.TrimLeft(rest[eq+1:], " \t")
	// line breaks separate commands like "%;"
	m.Body = strings.NewReplacer("\r\n", "%;", "\n", "%;", "\r", "%;").Replace(body)

	if hasPattern {
		trig, err := CompileTrigger(pattern, mode)
		if err != nil {
			return nil, err
		}
		m.Trigger = trig
	}
	return m, nil
}

// unescapeName reverses escapeName
func unescapeName(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '\\') {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// readFlagValue reads a flag argument attached to the flag letter, either
// double-quoted (with \" and \\ escapes) or up to the next blank
func readFlagValue(s string) (value, rest string, err error) {
	if strings.HasPrefix(s, `"`) {
		var sb strings.Builder
		for i := 1; i < len(s); i++ {
			c := s[i]
			switch {
			case c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
				sb.WriteByte(s[i+1])
				i++
			case c == '"':
				return sb.String(), s[i+1:], nil
			default:
				sb.WriteByte(c)
			}
		}
		return "", "", defineErrorf("unterminated quoted flag value")
	}
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, "", nil
	}
	return s[:end], s[end:], nil
}

// unescapedIndex finds the first c not preceded by a backslash
func unescapedIndex(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			continue
		}
		if s[i] == c {
			return i
		}
	}
	return -1
}

// Define parses and registers a macro, firing the Redef hook on replacement
func (e *Engine) Define(spec string) (*Macro, error) {
	m, err := ParseDefinition(spec)
	if err != nil {
		e.logger.DebugCat(CatMacro, "definition rejected: %v", err)
		return nil, err
	}
	e.register(m)
	return m, nil
}

func (e *Engine) register(m *Macro) {
	replaced := e.registry.Add(m)
	e.logger.DebugCat(CatMacro, "defined macro %q (seq %d, priority %d)", m.Name, m.Seq, m.Priority)
	if replaced {
		e.FireHook(HookRedef)
	}
}

// autoName generates a name for shorthand-defined triggers
func (e *Engine) autoName(prefix string) string {
	for {
		name := prefix + itoa(e.registry.nextSeq)
		if _, taken := e.registry.Get(name); !taken {
			return name
		}
		e.registry.nextSeq++
	}
}

// defineShorthand implements #trig, #gag and #hilite: "pattern [= body]"
func (e *Engine) defineShorthand(prefix, attrs, args string, needBody bool) Result {
	args = strings.TrimSpace(args)
	var pattern, body string
	if strings.HasPrefix(args, `"`) {
		value, rest, err := readFlagValue(args)
		if err != nil {
			return failure(err)
		}
		pattern = value
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "=") {
			body = strings.TrimLeft(rest[1:], " \t")
		} else if rest != "" {
			return failf("expected '=' after pattern")
		}
	} else if eq := unescapedIndex(args, '='); eq >= 0 {
		pattern = strings.TrimSpace(args[:eq])
		body = strings.TrimLeft(args[eq+1:], " \t")
	} else {
		pattern = args
	}
	if pattern == "" {
		return failf("missing pattern")
	}
	if needBody && body == "" {
		return failf("missing '=' and body")
	}

	spec := ""
	if attrs != "" {
		spec = "-a" + attrs + " "
	}
	spec += "-t" + quoteFlag(pattern) + " " + e.autoName(prefix) + " = " + body
	if _, err := e.Define(spec); err != nil {
		return failure(err)
	}
	return ok
}
