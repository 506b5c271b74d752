package clay

import (
	"path"
	"sort"
	"strings"
)

// Macro is a named script body, optionally bound to a trigger, hook or key
type Macro struct {
	Name        string
	Body        string
	Trigger     *Trigger
	Priority    int
	FallThrough bool
	World       string
	Condition   string // guard expression source, "" for none
	condExpr    Expr
	Probability float64 // firing chance in [0,1], used when HasChance
	HasChance   bool
	Shots       int // remaining firings; 0 means unlimited
	Hook        HookEvent
	Key         string
	Attrs       Attributes
	Internal    bool // excluded from #save
	Seq         int
}

// Registry holds macros ordered by descending priority, stable on ties
type Registry struct {
	macros  []*Macro
	byName  map[string]*Macro
	nextSeq int
}

// NewRegistry creates an empty macro registry
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*Macro),
		nextSeq: 1,
	}
}

// Add inserts m, replacing any macro of the same name. It reports whether a
// macro was replaced.
func (r *Registry) Add(m *Macro) bool {
	replaced := r.Remove(m.Name)
	m.Seq = r.nextSeq
	r.nextSeq++

	pos := len(r.macros)
	for i, existing := range r.macros {
		if existing.Priority < m.Priority {
			pos = i
			break
		}
	}
	r.macros = append(r.macros, nil)
	copy(r.macros[pos+1:], r.macros[pos:])
	r.macros[pos] = m
	r.byName[m.Name] = m
	return replaced
}

// Get returns the macro with the given name
func (r *Registry) Get(name string) (*Macro, bool) {
	m, found := r.byName[name]
	return m, found
}

// Remove deletes a macro by name, reporting whether it existed
func (r *Registry) Remove(name string) bool {
	m, found := r.byName[name]
	if !found {
		return false
	}
	delete(r.byName, name)
	for i, existing := range r.macros {
		if existing == m {
			r.macros = append(r.macros[:i], r.macros[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of macros
func (r *Registry) Len() int {
	return len(r.macros)
}

// Ordered returns a snapshot in firing order (priority descending, then definition order)
func (r *Registry) Ordered() []*Macro {
	out := make([]*Macro, len(r.macros))
	copy(out, r.macros)
	return out
}

// BySequence returns a snapshot in definition order
func (r *Registry) BySequence() []*Macro {
	out := r.Ordered()
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Match returns macros whose name matches the glob pattern ("" matches all), in definition order
func (r *Registry) Match(pattern string) []*Macro {
	var out []*Macro
	for _, m := range r.BySequence() {
		if pattern == "" {
			out = append(out, m)
			continue
		}
		if matched, err := path.Match(pattern, m.Name); err == nil && matched {
			out = append(out, m)
		}
	}
	return out
}

// Purge removes every non-internal macro matching pattern and returns how many went
func (r *Registry) Purge(pattern string) int {
	n := 0
	for _, m := range r.Match(pattern) {
		if m.Internal {
			continue
		}
		r.Remove(m.Name)
		n++
	}
	return n
}

// Listing renders "% <seq>: #def ..." lines for macros matching pattern
func (r *Registry) Listing(pattern string) []string {
	var lines []string
	for _, m := range r.Match(pattern) {
		lines = append(lines, "% "+itoa(m.Seq)+": "+m.Definition())
	}
	return lines
}

// Definition reconstructs the #def line that creates m
func (m *Macro) Definition() string {
	var sb strings.Builder
	sb.WriteString("#def")
	if m.Internal {
		sb.WriteString(" -i")
	}
	if m.Priority != 0 {
		sb.WriteString(" -p" + itoa(m.Priority))
	}
	if m.FallThrough {
		sb.WriteString(" -F")
	}
	if m.Shots > 0 {
		sb.WriteString(" -n" + itoa(m.Shots))
	}
	if m.Trigger != nil {
		sb.WriteString(" -t" + quoteFlag(m.Trigger.Pattern))
		if m.Trigger.Mode != MatchGlob {
			sb.WriteString(" -m" + m.Trigger.Mode.String())
		}
	}
	if attrs := m.Attrs.String(); attrs != "" {
		sb.WriteString(" -a" + attrs)
	}
	if m.Condition != "" {
		sb.WriteString(" -E" + quoteFlag(m.Condition))
	}
	if m.HasChance {
		sb.WriteString(" -c" + formatFloat(m.Probability))
	}
	if m.World != "" {
		sb.WriteString(" -w" + quoteFlag(m.World))
	}
	if m.Hook != "" {
		sb.WriteString(" -h" + string(m.Hook))
	}
	if m.Key != "" {
		sb.WriteString(" -b" + quoteFlag(m.Key))
	}
	sb.WriteString(" " + escapeName(m.Name) + " = " + m.Body)
	return sb.String()
}

// escapeName backslash-escapes "=" and backslashes in a macro name
func escapeName(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, "=", `\=`)
}

// quoteFlag double-quotes a flag value, escaping backslashes and quotes
func quoteFlag(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
