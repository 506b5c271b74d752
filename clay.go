// Package clay is the scripting engine of the Clay MUD client: a TinyFugue
// compatible expression language, pattern-triggered macros, structured control
// flow, lifecycle hooks and keybindings. An Engine is single-threaded; feed it
// script lines with Execute and server lines with ProcessServerLine, then Drain
// the effects it queued.
package clay

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/itchyny/gojq"
)

// Version of the engine, reported by #version
const Version = "0.9.0"

// Engine holds all session state. Independent engines share nothing.
type Engine struct {
	config *Config
	logger *Logger
	host   Host

	globals map[string]Value
	scopes  []*scope

	registry *Registry
	hooks    *HookTable
	keys     *KeyTable
	files    *fileTable

	captures captureBuffer
	pending  Pending

	kbText   string
	kbCursor int

	globCache map[string]*regexp.Regexp
	jqCache   map[string]*gojq.Code
	rng       *rand.Rand

	// top-level assembler for interactively typed lines
	assembler *assembler
	depth     int
}

// scope is one local variable frame; macro frames also carry positional args
type scope struct {
	vars    map[string]Value
	isMacro bool
	macro   string
	args    []string
}

// New creates a new engine
func New(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if config.LoopLimit <= 0 {
		config.LoopLimit = defaults.LoopLimit
	}
	if config.MaxMacroDepth <= 0 {
		config.MaxMacroDepth = defaults.MaxMacroDepth
	}

	logger := NewLogger(config.Debug)
	if config.LogOut != nil {
		logger.SetWriters(config.LogOut, config.LogOut)
	}

	seed := config.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	host := config.Host
	if host == nil {
		host = NewWorldTable()
	}

	return &Engine{
		config:    config,
		logger:    logger,
		host:      host,
		globals:   make(map[string]Value),
		registry:  NewRegistry(),
		hooks:     NewHookTable(),
		keys:      NewKeyTable(),
		files:     newFileTable(),
		globCache: make(map[string]*regexp.Regexp),
		jqCache:   make(map[string]*gojq.Code),
		rng:       rand.New(rand.NewSource(seed)),
		assembler: &assembler{},
	}
}

// Logger returns the engine's logger
func (e *Engine) Logger() *Logger {
	return e.logger
}

// Registry returns the macro registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Hooks returns the hook table
func (e *Engine) Hooks() *HookTable {
	return e.hooks
}

// Keys returns the keybinding table
func (e *Engine) Keys() *KeyTable {
	return e.keys
}

// Host returns the host facts the builtins read
func (e *Engine) Host() Host {
	return e.host
}

// Close flushes and releases open file handles
func (e *Engine) Close() {
	for _, err := range e.files.closeAll() {
		e.logger.ErrorCat(CatIO, "%v", err)
	}
}

// InBlock reports whether an interactively opened #if/#while/#for is still collecting
func (e *Engine) InBlock() bool {
	return e.assembler.active()
}

// SetKeyboardBuffer mirrors the host's input line for the kb* builtins.
// cursor counts runes from the start of text.
func (e *Engine) SetKeyboardBuffer(text string, cursor int) {
	n := len([]rune(text))
	if cursor < 0 {
		cursor = 0
	}
	if cursor > n {
		cursor = n
	}
	e.kbText = text
	e.kbCursor = cursor
}

// ---- variables ----

// GetVar returns a variable's value and whether it is set
func (e *Engine) GetVar(name string) (Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, found := e.scopes[i].vars[name]; found {
			return v, true
		}
	}
	v, found := e.globals[name]
	return v, found
}

// SetGlobal sets a global variable
func (e *Engine) SetGlobal(name string, v Value) {
	e.globals[name] = v
	e.logger.DebugCat(CatVariable, "set %s=%s", name, v)
}

// UnsetVar removes a variable from the innermost scope holding it, or from globals
func (e *Engine) UnsetVar(name string) bool {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, found := e.scopes[i].vars[name]; found {
			delete(e.scopes[i].vars, name)
			return true
		}
	}
	if _, found := e.globals[name]; found {
		delete(e.globals, name)
		return true
	}
	return false
}

// setVar updates the innermost scope already holding name, else the globals
func (e *Engine) setVar(name string, v Value) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, found := e.scopes[i].vars[name]; found {
			e.scopes[i].vars[name] = v
			return
		}
	}
	e.SetGlobal(name, v)
}

// setLocal sets name in the innermost scope, or globally when no scope is open
func (e *Engine) setLocal(name string, v Value) {
	if len(e.scopes) == 0 {
		e.SetGlobal(name, v)
		return
	}
	e.scopes[len(e.scopes)-1].vars[name] = v
}

// lookup resolves a variable reference; unknown names are ""
func (e *Engine) lookup(name string) Value {
	if frame := e.macroFrame(); frame != nil && isPositionalName(name) {
		return Str(frame.positional(name))
	}
	if v, found := e.GetVar(name); found {
		return v
	}
	return Str("")
}

// GlobalNames returns the sorted global variable names
func (e *Engine) GlobalNames() []string {
	names := make([]string, 0, len(e.globals))
	for name := range e.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) pushScope(s *scope) {
	if s.vars == nil {
		s.vars = make(map[string]Value)
	}
	e.scopes = append(e.scopes, s)
}

func (e *Engine) popScope() {
	if len(e.scopes) > 0 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

func (e *Engine) macroFrame() *scope {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if e.scopes[i].isMacro {
			return e.scopes[i]
		}
	}
	return nil
}

// isPositionalName matches "0".."n", "-n", "n-", "*" and "#"
func isPositionalName(name string) bool {
	if name == "*" || name == "#" {
		return true
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "-"), "-")
	if digits == "" || (strings.HasPrefix(name, "-") && strings.HasSuffix(name, "-")) {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return false
		}
	}
	return true
}

func (s *scope) positional(name string) string {
	switch {
	case name == "*":
		return strings.Join(s.args, " ")
	case name == "#":
		return itoa(len(s.args))
	case name == "0":
		return s.macro
	case strings.HasPrefix(name, "-"):
		n := atoi(name[1:])
		if n <= 0 || n > len(s.args) {
			return ""
		}
		return s.args[len(s.args)-n]
	case strings.HasSuffix(name, "-"):
		n := atoi(strings.TrimSuffix(name, "-"))
		if n <= 0 || n > len(s.args) {
			return ""
		}
		return strings.Join(s.args[n-1:], " ")
	default:
		n := atoi(name)
		if n <= 0 || n > len(s.args) {
			return ""
		}
		return s.args[n-1]
	}
}
