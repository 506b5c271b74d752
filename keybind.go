package clay

import (
	"strconv"
	"strings"
)

// namedKeys maps lower-cased aliases to the names the key decoder emits
var namedKeys = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"ret":       "Enter",
	"tab":       "Tab",
	"escape":    "Escape",
	"esc":       "Escape",
	"^[":        "Escape",
	"space":     "Space",
	"spc":       "Space",
	"backspace": "Backspace",
	"bs":        "Backspace",
	"bksp":      "Backspace",
	"delete":    "Delete",
	"del":       "Delete",
	"insert":    "Insert",
	"ins":       "Insert",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pgup":      "PageUp",
	"page-up":   "PageUp",
	"pagedown":  "PageDown",
	"pgdn":      "PageDown",
	"page-down": "PageDown",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
}

var ctrlPrefixes = []string{"ctrl-", "ctrl+", "control-", "control+", "c-"}

var metaPrefixes = []string{"alt-", "alt+", "meta-", "meta+", "m-", `\e`, "^[", "\x1b"}

var shiftPrefixes = []string{"shift-", "shift+", "s-"}

// NormalizeKey maps the many spellings of a key to one canonical name:
// "F1".."F12", "^A" for control letters, "M-x" for meta (letters lower-cased),
// "C-Left"/"M-Left"/"S-Left" for modified named keys and the named keys
// themselves. Anything else is returned unchanged.
func NormalizeKey(key string) string {
	k := strings.TrimSpace(key)
	if k == "" {
		return ""
	}
	lower := strings.ToLower(k)

	if named, found := namedKeys[lower]; found {
		return named
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= 12 {
			return "F" + strconv.Itoa(n)
		}
	}

	for _, prefix := range metaPrefixes {
		if rest, found := cutPrefix(k, lower, prefix); found {
			if len(rest) == 1 {
				return "M-" + strings.ToLower(rest)
			}
			return "M-" + NormalizeKey(rest)
		}
	}
	for _, prefix := range ctrlPrefixes {
		if rest, found := cutPrefix(k, lower, prefix); found {
			return ctrlKey(rest)
		}
	}
	if len(k) == 2 && k[0] == '^' {
		return ctrlKey(k[1:])
	}
	for _, prefix := range shiftPrefixes {
		if rest, found := cutPrefix(k, lower, prefix); found && len(rest) > 1 {
			return "S-" + NormalizeKey(rest)
		}
	}
	return k
}

// cutPrefix strips a case-insensitive prefix, requiring something after it
func cutPrefix(k, lower, prefix string) (string, bool) {
	if len(k) <= len(prefix) || !strings.HasPrefix(lower, prefix) {
		return "", false
	}
	return k[len(prefix):], true
}

func ctrlKey(rest string) string {
	if len(rest) == 1 {
		c := rest[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		return "^" + string(c)
	}
	return "C-" + NormalizeKey(rest)
}

// Binding is one key to command entry
type Binding struct {
	Key     string
	Command string
}

// KeyTable holds keybindings in the order they were first bound
type KeyTable struct {
	order    []string
	commands map[string]string
}

// NewKeyTable creates an empty keybinding table
func NewKeyTable() *KeyTable {
	return &KeyTable{commands: make(map[string]string)}
}

// Bind sets the command for key, reporting whether a binding was replaced
func (t *KeyTable) Bind(key, command string) bool {
	key = NormalizeKey(key)
	_, replaced := t.commands[key]
	if !replaced {
		t.order = append(t.order, key)
	}
	t.commands[key] = command
	return replaced
}

// Unbind removes key, reporting whether it was bound
func (t *KeyTable) Unbind(key string) bool {
	key = NormalizeKey(key)
	if _, found := t.commands[key]; !found {
		return false
	}
	delete(t.commands, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the command bound to key
func (t *KeyTable) Lookup(key string) (string, bool) {
	command, found := t.commands[NormalizeKey(key)]
	return command, found
}

// List returns the bindings in order
func (t *KeyTable) List() []Binding {
	out := make([]Binding, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, Binding{Key: key, Command: t.commands[key]})
	}
	return out
}

// Len returns the number of bindings
func (t *KeyTable) Len() int {
	return len(t.order)
}

// HandleKey runs the command bound to key, or a macro defined with a
// matching -b. It reports false when nothing is bound.
func (e *Engine) HandleKey(key string) (Result, bool) {
	key = NormalizeKey(key)
	if command, found := e.keys.Lookup(key); found {
		e.logger.DebugCat(CatKey, "%s -> %s", key, command)
		return strayBreak(e.runLines(splitCommands(command))), true
	}
	for _, m := range e.registry.BySequence() {
		if m.Key == key {
			e.logger.DebugCat(CatKey, "%s -> macro %s", key, m.Name)
			return e.runMacro(m, nil), true
		}
	}
	return nil, false
}
