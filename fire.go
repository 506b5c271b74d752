package clay

import (
	"strings"
)

// LineOutcome is what the registry did to one server line
type LineOutcome struct {
	Line  string     // the line to display, possibly rewritten by substitute()
	Gag   bool       // the line should not be displayed
	Attrs Attributes // merged attributes of the macros that fired
	Fired []string   // names of the macros that fired, in order
}

// runMacro executes a macro body in a fresh local scope with args bound
// to %1.. and the macro name to %0
func (e *Engine) runMacro(m *Macro, args []string) Result {
	if e.depth >= e.config.MaxMacroDepth {
		return failf("macro %s: nesting deeper than %d", m.Name, e.config.MaxMacroDepth)
	}
	e.depth++
	defer func() { e.depth-- }()

	frame := &scope{isMacro: true, macro: m.Name, args: args}
	e.pushScope(frame)
	defer e.popScope()

	body := e.substituteBody(m.Body, frame)
	e.logger.TraceCat(CatMacro, "%s: %s", m.Name, body)
	return strayBreak(e.runLines(splitCommands(body)))
}

// CallMacro runs a macro by name as "#name args" would
func (e *Engine) CallMacro(name string, args ...string) Result {
	m, found := e.registry.Get(name)
	if !found {
		return failf("no macro named %s", name)
	}
	return e.runMacro(m, args)
}

// ProcessServerLine runs a line received from world through the triggers.
// Effects of the fired bodies are queued for Drain.
func (e *Engine) ProcessServerLine(world, line string) LineOutcome {
	out := LineOutcome{Line: line}
	firstSub := len(e.pending.Substitutions)
	var exhausted []*Macro

	for _, m := range e.registry.Ordered() {
		if m.Trigger == nil {
			continue
		}
		if m.World != "" && m.World != world {
			continue
		}
		if current, found := e.registry.Get(m.Name); !found || current != m {
			continue
		}
		loc := m.Trigger.Match(line)
		if loc == nil {
			continue
		}
		e.captures.set(line, loc)

		if m.condExpr != nil {
			v, err := e.eval(m.condExpr)
			if err != nil {
				e.enqueueError(m.Name + ": " + err.Error())
				continue
			}
			if !v.ToBool() {
				e.logger.TraceCat(CatTrigger, "%s: guard false", m.Name)
				continue
			}
		}
		if m.HasChance && e.rng.Float64() >= m.Probability {
			e.logger.TraceCat(CatTrigger, "%s: chance not drawn", m.Name)
			continue
		}

		e.logger.DebugCat(CatTrigger, "%s fired on %q", m.Name, line)
		out.Fired = append(out.Fired, m.Name)
		out.Attrs = out.Attrs.Merge(m.Attrs)
		if m.Shots > 0 {
			m.Shots--
			if m.Shots == 0 {
				exhausted = append(exhausted, m)
			}
		}
		if m.Body != "" {
			e.enqueueResults(e.runMacro(m, strings.Fields(line)), world)
		}
		if !m.FallThrough {
			break
		}
	}

	for _, m := range exhausted {
		if current, found := e.registry.Get(m.Name); found && current == m {
			e.registry.Remove(m.Name)
			e.logger.DebugCat(CatTrigger, "%s used its last shot", m.Name)
		}
	}

	if subs := e.pending.Substitutions; len(subs) > firstSub {
		last := subs[len(subs)-1]
		out.Line = last.Text
		out.Attrs = out.Attrs.Merge(last.Attrs)
		e.pending.Substitutions = subs[:firstSub]
	}
	out.Gag = out.Attrs.Gag

	if world != "" && world != e.host.CurrentWorld() {
		e.FireHook(HookActivity)
	}
	return out
}
