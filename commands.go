package clay

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// commandFunc handles one "#name args" command
type commandFunc func(e *Engine, args string) Result

type commandSpec struct {
	fn commandFunc
	// raw commands get their arguments without %-substitution
	raw bool
}

var commandTable map[string]commandSpec

func init() {
	commandTable = map[string]commandSpec{
		"def":     {fn: cmdDef, raw: true},
		"trig":    {fn: cmdTrig, raw: true},
		"gag":     {fn: cmdGag, raw: true},
		"hilite":  {fn: cmdHilite, raw: true},
		"undef":   {fn: cmdUndef},
		"purge":   {fn: cmdPurge},
		"list":    {fn: cmdList},
		"set":     {fn: cmdSet, raw: true},
		"unset":   {fn: cmdUnset},
		"let":     {fn: cmdLet, raw: true},
		"echo":    {fn: cmdEcho},
		"send":    {fn: cmdSend},
		"expr":    {fn: cmdExpr, raw: true},
		"test":    {fn: cmdTest, raw: true},
		"eval":    {fn: cmdEval},
		"load":    {fn: cmdLoad},
		"save":    {fn: cmdSave},
		"bind":    {fn: cmdBind, raw: true},
		"unbind":  {fn: cmdUnbind},
		"hook":    {fn: cmdHook},
		"unhook":  {fn: cmdUnhook},
		"trigger": {fn: cmdTrigger},
		"sh":      {fn: cmdShell},
		"world":   {fn: cmdWorld},
		"quit":    {fn: cmdQuit},
		"version": {fn: cmdVersion},
	}
}

// runCommand dispatches a "#" command, falling back to a macro call
func (e *Engine) runCommand(name, args string) Result {
	if spec, found := commandTable[name]; found {
		// Macro bodies arrive here already expanded once, so each level of
		// macro nesting consumes one "%" of a "%%" reference.
		if !spec.raw {
			args = e.SubstituteVariables(args)
		}
		return spec.fn(e, args)
	}
	if m, found := e.registry.Get(name); found {
		return e.runMacro(m, strings.Fields(e.SubstituteVariables(args)))
	}
	e.logger.DebugCat(CatCommand, "no command or macro named %s", name)
	return failf("unknown command #%s", name)
}

func cmdDef(e *Engine, args string) Result {
	if _, err := e.Define(args); err != nil {
		return failure(err)
	}
	return ok
}

func cmdTrig(e *Engine, args string) Result {
	return e.defineShorthand("trig", "", args, true)
}

func cmdGag(e *Engine, args string) Result {
	return e.defineShorthand("gag", "g", args, false)
}

func cmdHilite(e *Engine, args string) Result {
	return e.defineShorthand("hilite", "h", args, false)
}

func cmdUndef(e *Engine, args string) Result {
	names := strings.Fields(args)
	if len(names) == 0 {
		return failf("usage: #undef name...")
	}
	var results []Result
	for _, name := range names {
		if !e.registry.Remove(name) {
			results = append(results, failf("#undef: no macro named %s", name))
		}
	}
	return combine(results)
}

func cmdPurge(e *Engine, args string) Result {
	n := e.registry.Purge(strings.TrimSpace(args))
	e.logger.DebugCat(CatMacro, "purged %d macros", n)
	return ok
}

func cmdList(e *Engine, args string) Result {
	return Success{Text: strings.Join(e.registry.Listing(strings.TrimSpace(args)), "\n")}
}

// splitAssignment reads "name=value" or "name value"; the value is the
// exact remainder after the separator
func splitAssignment(args string) (string, string, bool) {
	args = strings.TrimLeft(args, " \t")
	sep := strings.IndexAny(args, "= \t")
	if sep < 0 {
		return args, "", false
	}
	name := args[:sep]
	rest := args[sep:]
	if rest[0] == '=' {
		return name, rest[1:], true
	}
	rest = strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(rest, "=") {
		return name, strings.TrimLeft(rest[1:], " \t"), true
	}
	return name, rest, true
}

func validVarName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func cmdSet(e *Engine, args string) Result {
	if strings.TrimSpace(args) == "" {
		var lines []string
		for _, name := range e.GlobalNames() {
			lines = append(lines, "% "+name+"="+e.globals[name].String())
		}
		return Success{Text: strings.Join(lines, "\n")}
	}
	name, value, hasValue := splitAssignment(args)
	if !validVarName(name) {
		return failf("#set: bad variable name %q", name)
	}
	if !hasValue {
		v, found := e.GetVar(name)
		if !found {
			return failf("#set: %s is not set", name)
		}
		return Success{Text: "% " + name + "=" + v.String()}
	}
	e.SetGlobal(name, Str(unescapeValue(value)))
	return ok
}

func cmdUnset(e *Engine, args string) Result {
	var results []Result
	for _, name := range strings.Fields(args) {
		if !e.UnsetVar(name) {
			results = append(results, failf("#unset: %s is not set", name))
		}
	}
	return combine(results)
}

func cmdLet(e *Engine, args string) Result {
	name, value, hasValue := splitAssignment(args)
	if !validVarName(name) || !hasValue {
		return failf("usage: #let name=value")
	}
	e.setLocal(name, Str(unescapeValue(value)))
	return ok
}

// cmdEcho queues text for display; a leading -a<attrs> sets attributes
func cmdEcho(e *Engine, args string) Result {
	var attrs Attributes
	if strings.HasPrefix(args, "-a") {
		spec, rest, _ := strings.Cut(args[2:], " ")
		parsed, err := parseAttributes(spec)
		if err != nil {
			return failure(err)
		}
		attrs, args = parsed, rest
	}
	e.enqueueOutput(args, attrs)
	return ok
}

// cmdSend queues text for a world; a leading -w<world> picks the world
func cmdSend(e *Engine, args string) Result {
	world := ""
	if strings.HasPrefix(args, "-w") {
		world, args, _ = strings.Cut(args[2:], " ")
	}
	e.enqueueCommand(args, world, false)
	return ok
}

func cmdExpr(e *Engine, args string) Result {
	v, err := e.Evaluate(args)
	if err != nil {
		return failure(err)
	}
	return Success{Text: v.String()}
}

// cmdTest evaluates for side effects and leaves the value in %?
func cmdTest(e *Engine, args string) Result {
	v, err := e.Evaluate(args)
	if err != nil {
		return failure(err)
	}
	e.SetGlobal("?", v)
	return ok
}

func cmdEval(e *Engine, args string) Result {
	return e.runLines(splitCommands(args))
}

func cmdLoad(e *Engine, args string) Result {
	if strings.TrimSpace(args) == "" {
		return failf("usage: #load file")
	}
	return e.LoadScript(args)
}

func cmdSave(e *Engine, args string) Result {
	if strings.TrimSpace(args) == "" {
		return failf("usage: #save file")
	}
	if err := e.SaveScript(args); err != nil {
		return failure(err)
	}
	return ok
}

// cmdBind reads "key = command"; the first "=" separates them
func cmdBind(e *Engine, args string) Result {
	if strings.TrimSpace(args) == "" {
		var lines []string
		for _, b := range e.keys.List() {
			lines = append(lines, "% "+b.Key+" = "+b.Command)
		}
		return Success{Text: strings.Join(lines, "\n")}
	}
	key, command, found := strings.Cut(args, "=")
	if !found {
		return failf("usage: #bind key = command")
	}
	key = NormalizeKey(unescapeValue(strings.TrimSpace(key)))
	if key == "" {
		return failf("#bind: empty key name")
	}
	command = unescapeValue(strings.TrimPrefix(command, " "))
	if e.keys.Bind(key, command) {
		e.logger.DebugCat(CatKey, "rebound %s", key)
	}
	return ok
}

func cmdUnbind(e *Engine, args string) Result {
	key := strings.TrimSpace(args)
	if !e.keys.Unbind(key) {
		return failf("#unbind: %s is not bound", NormalizeKey(key))
	}
	return ok
}

func cmdHook(e *Engine, args string) Result {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return Success{Text: strings.Join(e.hooks.Listing(), "\n")}
	}
	if len(fields) != 2 {
		return failf("usage: #hook event macro")
	}
	event, err := ParseHookEvent(fields[0])
	if err != nil {
		return failure(err)
	}
	e.hooks.Register(event, fields[1])
	return ok
}

func cmdUnhook(e *Engine, args string) Result {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return failf("usage: #unhook event macro")
	}
	event, err := ParseHookEvent(fields[0])
	if err != nil {
		return failure(err)
	}
	if !e.hooks.Unregister(event, fields[1]) {
		return failf("#unhook: %s is not hooked to %s", fields[1], event)
	}
	return ok
}

// cmdTrigger feeds text through the triggers as if a world had sent it
func cmdTrigger(e *Engine, args string) Result {
	world := e.host.CurrentWorld()
	if strings.HasPrefix(args, "-w") {
		world, args, _ = strings.Cut(args[2:], " ")
	}
	outcome := e.ProcessServerLine(world, args)
	if !outcome.Gag {
		e.enqueueOutput(outcome.Line, outcome.Attrs)
	}
	return ok
}

func cmdShell(e *Engine, args string) Result {
	if strings.TrimSpace(args) == "" {
		return failf("usage: #sh command")
	}
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", args)
	} else {
		cmd = exec.Command("sh", "-c", args)
	}
	output, err := cmd.CombinedOutput()
	text := strings.TrimRight(string(output), "\n")
	if err != nil {
		e.logger.DebugCat(CatIO, "#sh %s: %v", args, err)
		return combine([]Result{Success{Text: text}, failf("#sh: %v", err)})
	}
	return Success{Text: text}
}

func cmdWorld(e *Engine, args string) Result {
	return ClayCommand{Text: strings.TrimSpace("world " + args)}
}

func cmdQuit(e *Engine, args string) Result {
	return ClayCommand{Text: "quit"}
}

func cmdVersion(e *Engine, args string) Result {
	return Success{Text: fmt.Sprintf("Clay %s", Version)}
}
