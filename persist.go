package clay

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// escapeValue encodes a value for a saved script line: "\" -> "\\",
// newline -> "\n", carriage return -> "\r", "=" -> "\e"
func escapeValue(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '=':
			sb.WriteString(`\e`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// unescapeValue reverses escapeValue; unknown escapes are kept as written
func unescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 'e':
			sb.WriteByte('=')
		default:
			sb.WriteByte(c)
			sb.WriteByte(s[i+1])
		}
		i++
	}
	return sb.String()
}

// resolvePath expands "~" and makes relative paths relative to ScriptDir
func (e *Engine) resolvePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if !filepath.IsAbs(path) && e.config.ScriptDir != "" {
		path = filepath.Join(e.config.ScriptDir, path)
	}
	return path
}

// SaveScript writes globals, macros, keybindings and hook registrations
// as a script #load can read back.
func (e *Engine) SaveScript(path string) error {
	full := e.resolvePath(path)
	if dir := filepath.Dir(full); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ioError("cannot create "+dir, err)
		}
	}
	f, err := os.Create(full)
	if err != nil {
		return ioError("cannot write "+path, err)
	}
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, ";; Clay %s saved script\n", Version)
	fmt.Fprintln(w, ";; variables")
	for _, name := range e.GlobalNames() {
		if !validVarName(name) {
			continue
		}
		fmt.Fprintf(w, "#set %s=%s\n", name, escapeValue(e.globals[name].String()))
	}
	fmt.Fprintln(w, ";; macros")
	for _, m := range e.registry.BySequence() {
		if m.Internal {
			continue
		}
		fmt.Fprintln(w, m.Definition())
	}
	fmt.Fprintln(w, ";; keybindings")
	for _, b := range e.keys.List() {
		fmt.Fprintf(w, "#bind %s = %s\n", escapeValue(b.Key), escapeValue(b.Command))
	}
	if hooks := e.hooks.Listing(); len(hooks) > 0 {
		fmt.Fprintln(w, ";; hooks")
		for _, line := range hooks {
			fmt.Fprintln(w, line)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return ioError("cannot write "+path, err)
	}
	if err := f.Close(); err != nil {
		return ioError("cannot write "+path, err)
	}
	e.logger.DebugCat(CatIO, "saved %s", full)
	return nil
}

// LoadScript executes a script file. Blank lines and lines starting with
// ";" are skipped; "#" and "/" lines run; other lines only count inside an
// open block and are otherwise ignored. The Load hook fires afterwards.
func (e *Engine) LoadScript(path string) Result {
	full := e.resolvePath(path)
	f, err := os.Open(full)
	if err != nil {
		return failure(ioError("cannot load "+path, err))
	}
	defer f.Close()
	e.logger.DebugCat(CatIO, "loading %s", full)

	a := &assembler{}
	var results []Result
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == ';' {
			continue
		}
		if trimmed[0] != '#' && trimmed[0] != '/' && !a.active() {
			continue
		}
		r := strayBreak(e.executeIn(a, line))
		if f, failed := FirstFailure(r); failed {
			e.logger.DebugCat(CatIO, "%s:%d: %s", path, lineNo, f.Message)
		}
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		results = append(results, failure(ioError("error reading "+path, err)))
	}
	if a.active() {
		results = append(results, failure(flowErrorf("%s: unclosed %s block", path, a.kind)))
	}

	e.FireHook(HookLoad)
	return combine(results)
}
