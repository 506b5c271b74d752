package clay

import (
	"strings"
	"unicode/utf8"
)

// SubstituteVariables expands %name, %{name} and %% in arbitrary text.
// Unknown variables expand to "". A "%" not followed by a name stays as is.
func (e *Engine) SubstituteVariables(text string) string {
	return e.substituteVarPass(text, true)
}

// substituteBody expands a macro body inside its already pushed frame.
// Positional arguments go first, then capture groups, then variables; the
// order is inherited behavior that scripts may rely on.
func (e *Engine) substituteBody(body string, frame *scope) string {
	if !strings.Contains(body, "%") {
		return body
	}
	s := substituteArgPass(body, frame)
	s = e.substituteCapturePass(s)
	return e.substituteVarPass(s, true)
}

// substituteArgPass expands %0..%9, %*, %# and %-n
func substituteArgPass(text string, frame *scope) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '%' || i+1 >= len(text) {
			sb.WriteByte(c)
			continue
		}
		next := text[i+1]
		switch {
		case next == '%':
			sb.WriteString("%%")
			i++
		case isDigit(next):
			sb.WriteString(frame.positional(text[i+1 : i+2]))
			i++
		case next == '*' || next == '#':
			sb.WriteString(frame.positional(text[i+1 : i+2]))
			i++
		case next == '-' && i+2 < len(text) && isDigit(text[i+2]):
			sb.WriteString(frame.positional(text[i+1 : i+3]))
			i += 2
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// substituteCapturePass expands %P0..%P9, %PL, %PR and %P*
func (e *Engine) substituteCapturePass(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '%' || i+1 >= len(text) {
			sb.WriteByte(c)
			continue
		}
		if text[i+1] == '%' {
			sb.WriteString("%%")
			i++
			continue
		}
		if i+2 >= len(text) || text[i+1] != 'P' {
			sb.WriteByte(c)
			continue
		}
		sel := text[i+2]
		followsIdent := i+3 < len(text) && isIdentByte(text[i+3])
		switch {
		case isDigit(sel):
			sb.WriteString(e.captures.group(int(sel - '0')))
			i += 2
		case sel == '*':
			sb.WriteString(e.captures.all())
			i += 2
		case sel == 'L' && !followsIdent:
			sb.WriteString(e.captures.left)
			i += 2
		case sel == 'R' && !followsIdent:
			sb.WriteString(e.captures.right)
			i += 2
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// substituteVarPass expands %name and %{name}; collapse turns %% into %
func (e *Engine) substituteVarPass(text string, collapse bool) string {
	if !strings.Contains(text, "%") {
		return text
	}
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '%' || i+1 >= len(text) {
			sb.WriteByte(c)
			continue
		}
		next := text[i+1]
		switch {
		case next == '%':
			if collapse {
				sb.WriteByte('%')
			} else {
				sb.WriteString("%%")
			}
			i++
		case next == '{':
			end := strings.IndexByte(text[i+2:], '}')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			name := strings.TrimSpace(text[i+2 : i+2+end])
			sb.WriteString(e.lookup(name).String())
			i += 2 + end
		default:
			r, _ := utf8.DecodeRuneInString(text[i+1:])
			if !isIdentStart(r) {
				sb.WriteByte(c)
				continue
			}
			j := i + 1
			for j < len(text) {
				r, size := utf8.DecodeRuneInString(text[j:])
				if !isIdentPart(r) {
					break
				}
				j += size
			}
			sb.WriteString(e.lookup(text[i+1 : j]).String())
			i = j - 1
		}
	}
	return sb.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splitCommands breaks a body into sub-commands at "%;" and at ";". A ";"
// inside parentheses (or inside a quoted string within them) does not split,
// and "\;" is a literal semicolon. Empty pieces are dropped.
func splitCommands(body string) []string {
	var (
		parts []string
		sb    strings.Builder
		depth int
		quote bool
	)
	flush := func() {
		if piece := strings.TrimSpace(sb.String()); piece != "" {
			parts = append(parts, piece)
		}
		sb.Reset()
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '%' && i+1 < len(body) && body[i+1] == ';':
			flush()
			depth, quote = 0, false
			i++
		case c == '\\' && i+1 < len(body) && body[i+1] == ';':
			sb.WriteByte(';')
			i++
		case quote:
			if c == '\\' && i+1 < len(body) {
				sb.WriteByte(c)
				sb.WriteByte(body[i+1])
				i++
				continue
			}
			if c == '"' {
				quote = false
			}
			sb.WriteByte(c)
		case c == '"' && depth > 0:
			quote = true
			sb.WriteByte(c)
		case c == '(':
			depth++
			sb.WriteByte(c)
		case c == ')':
			if depth > 0 {
				depth--
			}
			sb.WriteByte(c)
		case c == ';' && depth == 0:
			flush()
		default:
			sb.WriteByte(c)
		}
	}
	flush()
	return parts
}
