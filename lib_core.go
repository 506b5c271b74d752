package clay

import (
	"os"
	"regexp"
	"runtime"
)

// builtinFunc implements one expression function
type builtinFunc func(e *Engine, args []Value) (Value, error)

type builtin struct {
	min, max int // argument count bounds; max -1 is unbounded
	usage    string
	fn       builtinFunc
}

// builtins is filled once at startup and only read afterwards
var builtins = make(map[string]builtin)

func init() {
	buildCoreLib()
	buildStringLib()
	buildMathLib()
	buildFileLib()
	buildTimeLib()
	buildWorldLib()
	buildDataLib()
}

// callBuiltin checks arity, evaluates the arguments left to right and calls
// the function
func (e *Engine) callBuiltin(name string, argExprs []Expr) (Value, error) {
	b, found := builtins[name]
	if !found {
		return Value{}, evalErrorf("unknown function %s()", name)
	}
	if len(argExprs) < b.min || (b.max >= 0 && len(argExprs) > b.max) {
		return Value{}, evalErrorf("wrong number of arguments to %s(): usage %s", name, b.usage)
	}
	args := make([]Value, len(argExprs))
	for i, x := range argExprs {
		v, err := e.eval(x)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return b.fn(e, args)
}

// IsBuiltin reports whether name is an expression function
func IsBuiltin(name string) bool {
	_, found := builtins[name]
	return found
}

func buildCoreLib() {
	builtins["isvar"] = builtin{1, 1, "isvar(name)", func(e *Engine, args []Value) (Value, error) {
		_, found := e.GetVar(args[0].String())
		return Bool(found), nil
	}}

	builtins["getvar"] = builtin{1, 1, "getvar(name)", func(e *Engine, args []Value) (Value, error) {
		return e.lookup(args[0].String()), nil
	}}

	builtins["ismacro"] = builtin{1, 1, "ismacro(name)", func(e *Engine, args []Value) (Value, error) {
		_, found := e.registry.Get(args[0].String())
		return Bool(found), nil
	}}

	builtins["nmacros"] = builtin{0, 1, "nmacros([glob])", func(e *Engine, args []Value) (Value, error) {
		if len(args) == 0 {
			return Int(int64(e.registry.Len())), nil
		}
		return Int(int64(len(e.registry.Match(args[0].String())))), nil
	}}

	builtins["echo"] = builtin{1, 2, "echo(text[, attrs])", func(e *Engine, args []Value) (Value, error) {
		var attrs Attributes
		if len(args) == 2 {
			parsed, err := parseAttributes(args[1].String())
			if err != nil {
				return Value{}, err
			}
			attrs = parsed
		}
		e.enqueueOutput(args[0].String(), attrs)
		return Int(1), nil
	}}

	builtins["send"] = builtin{1, 2, "send(text[, world])", func(e *Engine, args []Value) (Value, error) {
		world := ""
		if len(args) == 2 {
			world = args[1].String()
		}
		e.enqueueCommand(args[0].String(), world, false)
		return Int(1), nil
	}}

	builtins["substitute"] = builtin{1, 2, "substitute(text[, attrs])", func(e *Engine, args []Value) (Value, error) {
		var attrs Attributes
		if len(args) == 2 {
			parsed, err := parseAttributes(args[1].String())
			if err != nil {
				return Value{}, err
			}
			attrs = parsed
		}
		e.pending.Substitutions = append(e.pending.Substitutions, Substitution{Text: args[0].String(), Attrs: attrs})
		return Int(1), nil
	}}

	builtins["addworld"] = builtin{4, 8, "addworld(name, type, host, port[, char, pass[, file[, flags]]])", func(e *Engine, args []Value) (Value, error) {
		op := WorldOp{
			Name: args[0].String(),
			Type: args[1].String(),
			Host: args[2].String(),
			Port: int(args[3].ToInt()),
		}
		if op.Name == "" {
			return Value{}, evalErrorf("addworld: empty world name")
		}
		if len(args) > 4 {
			op.Character = args[4].String()
		}
		if len(args) > 5 {
			op.Password = args[5].String()
		}
		if len(args) > 7 {
			for _, flag := range args[7].String() {
				if flag == 'x' {
					op.SSL = true
				}
			}
		}
		e.pending.WorldOps = append(e.pending.WorldOps, op)
		if table, isTable := e.host.(*WorldTable); isTable {
			if _, exists := table.World(op.Name); !exists {
				table.Put(WorldInfo{Name: op.Name, Type: op.Type, Host: op.Host, Port: op.Port, Character: op.Character, SSL: op.SSL})
			}
		}
		e.logger.DebugCat(CatWorld, "addworld %s %s:%d", op.Name, op.Host, op.Port)
		return Int(1), nil
	}}

	builtins["regmatch"] = builtin{2, 2, "regmatch(pattern, text)", func(e *Engine, args []Value) (Value, error) {
		re, err := regexp.Compile(args[0].String())
		if err != nil {
			return Value{}, evalErrorf("regmatch: invalid pattern: %v", err)
		}
		text := args[1].String()
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			return Int(0), nil
		}
		e.captures.set(text, loc)
		return Int(1), nil
	}}

	builtins["getpid"] = builtin{0, 0, "getpid()", func(e *Engine, args []Value) (Value, error) {
		return Int(int64(os.Getpid())), nil
	}}

	builtins["systype"] = builtin{0, 0, "systype()", func(e *Engine, args []Value) (Value, error) {
		if runtime.GOOS == "windows" {
			return Str("windows"), nil
		}
		return Str("unix"), nil
	}}
}
