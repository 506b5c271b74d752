package clay

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LogLevel orders log messages by severity
type LogLevel int

const (
	LevelTrace LogLevel = iota // per-line execution detail
	LevelDebug                 // engine decisions, shown for enabled categories
	LevelWarn                  // script limits hit, always shown
	LevelError                 // host-level failures, always shown
)

// LogCategory names the engine subsystem a message comes from
type LogCategory string

const (
	CatNone     LogCategory = ""
	CatParse    LogCategory = "parse"
	CatCommand  LogCategory = "command"
	CatVariable LogCategory = "variable"
	CatMacro    LogCategory = "macro"
	CatTrigger  LogCategory = "trigger"
	CatFlow     LogCategory = "flow"
	CatHook     LogCategory = "hook"
	CatKey      LogCategory = "key"
	CatIO       LogCategory = "io"
	CatWorld    LogCategory = "world"
	CatApp      LogCategory = "app"
)

var allCategories = []LogCategory{
	CatParse, CatCommand, CatVariable, CatMacro, CatTrigger,
	CatFlow, CatHook, CatKey, CatIO, CatWorld, CatApp,
}

// ANSI color codes for terminal output
const (
	colorYellow = "\x1b[93m"
	colorReset  = "\x1b[0m"
)

// Logger writes engine diagnostics. Trace and debug lines go to out and
// only appear for enabled categories; warnings and errors go to errOut.
type Logger struct {
	debug      bool
	categories map[LogCategory]bool
	out        io.Writer
	errOut     io.Writer
	color      bool
}

// NewLogger creates a logger on stdout and stderr
func NewLogger(debug bool) *Logger {
	return &Logger{
		debug:      debug,
		categories: make(map[LogCategory]bool),
		out:        os.Stdout,
		errOut:     os.Stderr,
		color:      isColorTerminal(os.Stderr),
	}
}

// isColorTerminal reports whether f is a terminal that accepts color
func isColorTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// SetWriters redirects log output. A nil writer leaves that stream as it is;
// replacing errOut turns color off.
func (l *Logger) SetWriters(out, errOut io.Writer) {
	if out != nil {
		l.out = out
	}
	if errOut != nil {
		l.errOut = errOut
		l.color = false
	}
}

// EnableCategory turns on debug output for cat
func (l *Logger) EnableCategory(cat LogCategory) {
	l.debug = true
	l.categories[cat] = true
}

// EnableCategoryNames enables categories by name; "all" enables every one.
// Names that match no category are returned.
func (l *Logger) EnableCategoryNames(names []string) []string {
	var unknown []string
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == "":
		case name == "all":
			for _, cat := range allCategories {
				l.EnableCategory(cat)
			}
		case isCategory(name):
			l.EnableCategory(LogCategory(name))
		default:
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func isCategory(name string) bool {
	for _, cat := range allCategories {
		if string(cat) == name {
			return true
		}
	}
	return false
}

// Enabled reports whether messages of level in cat are written
func (l *Logger) Enabled(level LogLevel, cat LogCategory) bool {
	if level >= LevelWarn {
		return true
	}
	return l.debug && (cat == CatNone || l.categories[cat])
}

func (l *Logger) logf(level LogLevel, cat LogCategory, format string, args []interface{}) {
	if !l.Enabled(level, cat) {
		return
	}
	tag := ""
	if cat != CatNone {
		tag = ":" + string(cat)
	}
	message := fmt.Sprintf(format, args...)
	switch level {
	case LevelTrace:
		fmt.Fprintf(l.out, "[TRACE%s] %s\n", tag, message)
	case LevelDebug:
		fmt.Fprintf(l.out, "[DEBUG%s] %s\n", tag, message)
	default:
		severity := "WARN"
		if level == LevelError {
			severity = "ERROR"
		}
		line := fmt.Sprintf("[Clay%s %s] %s", tag, severity, message)
		if l.color {
			line = colorYellow + line + colorReset
		}
		fmt.Fprintln(l.errOut, line)
	}
}

// TraceCat logs execution detail
func (l *Logger) TraceCat(cat LogCategory, format string, args ...interface{}) {
	l.logf(LevelTrace, cat, format, args)
}

// DebugCat logs an engine decision
func (l *Logger) DebugCat(cat LogCategory, format string, args ...interface{}) {
	l.logf(LevelDebug, cat, format, args)
}

// WarnCat logs a warning
func (l *Logger) WarnCat(cat LogCategory, format string, args ...interface{}) {
	l.logf(LevelWarn, cat, format, args)
}

// ErrorCat logs an error
func (l *Logger) ErrorCat(cat LogCategory, format string, args ...interface{}) {
	l.logf(LevelError, cat, format, args)
}
