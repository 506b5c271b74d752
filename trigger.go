package clay

import (
	"regexp"
	"strings"
)

// MatchMode selects how a trigger pattern is read
type MatchMode int

const (
	MatchGlob MatchMode = iota
	MatchSimple
	MatchRegexp
)

func (m MatchMode) String() string {
	switch m {
	case MatchSimple:
		return "simple"
	case MatchRegexp:
		return "regexp"
	default:
		return "glob"
	}
}

// ParseMatchMode reads "simple", "glob" or "regexp" (any case, "regex" allowed)
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(s) {
	case "simple":
		return MatchSimple, nil
	case "glob":
		return MatchGlob, nil
	case "regexp", "regex":
		return MatchRegexp, nil
	}
	return MatchGlob, defineErrorf("unknown match mode %q", s)
}

// Trigger is a compiled pattern matched against server lines
type Trigger struct {
	Pattern string
	Mode    MatchMode
	re      *regexp.Regexp
}

// CompileTrigger compiles pattern according to mode
func CompileTrigger(pattern string, mode MatchMode) (*Trigger, error) {
	var source string
	switch mode {
	case MatchSimple:
		source = regexp.QuoteMeta(pattern)
	case MatchRegexp:
		source = pattern
	default:
		source = globTriggerSource(pattern)
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &ScriptError{Kind: ErrDefine, Message: "invalid trigger pattern " + quoteFlag(pattern), Err: err}
	}
	return &Trigger{Pattern: pattern, Mode: mode, re: re}, nil
}

// Match returns submatch index pairs, or nil when line does not match
func (t *Trigger) Match(line string) []int {
	return t.re.FindStringSubmatchIndex(line)
}

// Regexp returns the compiled matcher
func (t *Trigger) Regexp() *regexp.Regexp {
	return t.re
}

// globTriggerSource rewrites a trigger glob: "*" becomes "(.*)", "?" becomes
// "(.)", "[...]" passes through, a leading "^" and trailing "$" stay anchors
// and every other metacharacter is escaped.
func globTriggerSource(pattern string) string {
	var sb strings.Builder
	body := pattern
	if strings.HasPrefix(body, "^") {
		sb.WriteByte('^')
		body = body[1:]
	}
	anchorEnd := false
	if strings.HasSuffix(body, "$") && !strings.HasSuffix(body, `\$`) {
		anchorEnd = true
		body = body[:len(body)-1]
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '*':
			sb.WriteString("(.*)")
		case '?':
			sb.WriteString("(.)")
		case '[':
			if end := classEnd(body, i); end > 0 {
				sb.WriteString(classSource(body[i : end+1]))
				i = end
				continue
			}
			sb.WriteString(`\[`)
		case '\\':
			if i+1 < len(body) {
				i++
				sb.WriteString(regexp.QuoteMeta(body[i : i+1]))
				continue
			}
			sb.WriteString(`\\`)
		default:
			sb.WriteString(regexp.QuoteMeta(body[i : i+1]))
		}
	}
	if anchorEnd {
		sb.WriteByte('$')
	}
	return sb.String()
}

// captureBuffer is the last-match buffer: P0 is the full match, P1..P9 groups
type captureBuffer struct {
	groups [10]string
	count  int // groups set, including P0
	left   string
	right  string
}

func (c *captureBuffer) set(line string, loc []int) {
	*c = captureBuffer{}
	if len(loc) < 2 || loc[0] < 0 {
		return
	}
	for g := 0; g*2+1 < len(loc) && g < len(c.groups); g++ {
		start, end := loc[g*2], loc[g*2+1]
		if start >= 0 && end >= 0 {
			c.groups[g] = line[start:end]
		}
		c.count = g + 1
	}
	c.left = line[:loc[0]]
	c.right = line[loc[1]:]
}

func (c *captureBuffer) group(n int) string {
	if n < 0 || n >= len(c.groups) {
		return ""
	}
	return c.groups[n]
}

// all joins P1..Pn with spaces
func (c *captureBuffer) all() string {
	if c.count <= 1 {
		return ""
	}
	return strings.Join(c.groups[1:c.count], " ")
}
