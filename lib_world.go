package clay

import (
	"strconv"
	"strings"
)

// worldArg returns the world named by args[i], or the current world
func (e *Engine) worldArg(args []Value, i int) (WorldInfo, bool) {
	name := e.host.CurrentWorld()
	if i < len(args) && args[i].String() != "" {
		name = args[i].String()
	}
	return e.host.World(name)
}

func worldField(w WorldInfo, field string) (Value, error) {
	switch strings.ToLower(field) {
	case "name":
		return Str(w.Name), nil
	case "type":
		return Str(w.Type), nil
	case "host":
		return Str(w.Host), nil
	case "port":
		return Str(strconv.Itoa(w.Port)), nil
	case "character", "char":
		return Str(w.Character), nil
	case "connected":
		return Bool(w.Connected), nil
	case "ssl":
		return Bool(w.SSL), nil
	}
	return Value{}, evalErrorf("world_info: unknown field %q", field)
}

func (e *Engine) kbRunes() []rune {
	return []rune(e.kbText)
}

func buildWorldLib() {
	builtins["fg_world"] = builtin{0, 0, "fg_world()", func(e *Engine, args []Value) (Value, error) {
		return Str(e.host.CurrentWorld()), nil
	}}

	// world_info(field) or world_info(world, field)
	builtins["world_info"] = builtin{1, 2, "world_info([world,] field)", func(e *Engine, args []Value) (Value, error) {
		var (
			w     WorldInfo
			found bool
		)
		if len(args) == 2 {
			w, found = e.worldArg(args, 0)
		} else {
			w, found = e.worldArg(nil, 0)
		}
		if !found {
			return Str(""), nil
		}
		return worldField(w, args[len(args)-1].String())
	}}

	builtins["is_connected"] = builtin{0, 1, "is_connected([world])", func(e *Engine, args []Value) (Value, error) {
		w, found := e.worldArg(args, 0)
		return Bool(found && w.Connected), nil
	}}

	builtins["is_ssl"] = builtin{0, 1, "is_ssl([world])", func(e *Engine, args []Value) (Value, error) {
		w, found := e.worldArg(args, 0)
		return Bool(found && w.SSL), nil
	}}

	builtins["nworlds"] = builtin{0, 0, "nworlds()", func(e *Engine, args []Value) (Value, error) {
		return Int(int64(len(e.host.WorldNames()))), nil
	}}

	builtins["kbhead"] = builtin{0, 0, "kbhead()", func(e *Engine, args []Value) (Value, error) {
		return Str(string(e.kbRunes()[:e.kbCursor])), nil
	}}

	builtins["kbtail"] = builtin{0, 0, "kbtail()", func(e *Engine, args []Value) (Value, error) {
		return Str(string(e.kbRunes()[e.kbCursor:])), nil
	}}

	builtins["kbpoint"] = builtin{0, 0, "kbpoint()", func(e *Engine, args []Value) (Value, error) {
		return Int(int64(e.kbCursor)), nil
	}}

	builtins["kblen"] = builtin{0, 0, "kblen()", func(e *Engine, args []Value) (Value, error) {
		return Int(int64(len(e.kbRunes()))), nil
	}}

	builtins["columns"] = builtin{0, 0, "columns()", func(e *Engine, args []Value) (Value, error) {
		cols, _ := e.host.TerminalSize()
		return Int(int64(cols)), nil
	}}

	builtins["lines"] = builtin{0, 0, "lines()", func(e *Engine, args []Value) (Value, error) {
		_, rows := e.host.TerminalSize()
		return Int(int64(rows)), nil
	}}
}
