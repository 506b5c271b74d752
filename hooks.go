package clay

import (
	"sort"
	"strings"
)

// HookEvent names a lifecycle event
type HookEvent string

const (
	HookConnect    HookEvent = "CONNECT"
	HookDisconnect HookEvent = "DISCONNECT"
	HookLogin      HookEvent = "LOGIN"
	HookPrompt     HookEvent = "PROMPT"
	HookSend       HookEvent = "SEND"
	HookActivity   HookEvent = "ACTIVITY"
	HookWorld      HookEvent = "WORLD"
	HookResize     HookEvent = "RESIZE"
	HookLoad       HookEvent = "LOAD"
	HookRedef      HookEvent = "REDEF"
	HookBackground HookEvent = "BACKGROUND"
)

// HookEvents lists every event
var HookEvents = []HookEvent{
	HookConnect, HookDisconnect, HookLogin, HookPrompt, HookSend, HookActivity,
	HookWorld, HookResize, HookLoad, HookRedef, HookBackground,
}

// ParseHookEvent reads an event name, ignoring case
func ParseHookEvent(name string) (HookEvent, error) {
	upper := HookEvent(strings.ToUpper(strings.TrimSpace(name)))
	for _, event := range HookEvents {
		if event == upper {
			return event, nil
		}
	}
	return "", defineErrorf("unknown hook event %q", name)
}

// HookTable maps events to macro names in registration order
type HookTable struct {
	byEvent map[HookEvent][]string
}

// NewHookTable creates an empty hook table
func NewHookTable() *HookTable {
	return &HookTable{byEvent: make(map[HookEvent][]string)}
}

// Register adds macro to event; registering twice is a no-op reported as false
func (h *HookTable) Register(event HookEvent, macro string) bool {
	for _, name := range h.byEvent[event] {
		if name == macro {
			return false
		}
	}
	h.byEvent[event] = append(h.byEvent[event], macro)
	return true
}

// Unregister removes macro from event
func (h *HookTable) Unregister(event HookEvent, macro string) bool {
	names := h.byEvent[event]
	for i, name := range names {
		if name == macro {
			h.byEvent[event] = append(names[:i:i], names[i+1:]...)
			return true
		}
	}
	return false
}

// Registered returns the macros registered for event, in order
func (h *HookTable) Registered(event HookEvent) []string {
	out := make([]string, len(h.byEvent[event]))
	copy(out, h.byEvent[event])
	return out
}

// Listing renders "#hook EVENT macro" lines sorted by event
func (h *HookTable) Listing() []string {
	events := make([]string, 0, len(h.byEvent))
	for event := range h.byEvent {
		events = append(events, string(event))
	}
	sort.Strings(events)
	var lines []string
	for _, event := range events {
		for _, name := range h.byEvent[HookEvent(event)] {
			lines = append(lines, "#hook "+event+" "+name)
		}
	}
	return lines
}

// FireHook runs the macros registered for event, then the macros defined
// with a matching -h that were not registered. It returns how many ran.
func (e *Engine) FireHook(event HookEvent) int {
	world := e.host.CurrentWorld()
	ran := make(map[string]bool)
	fired := 0

	run := func(m *Macro) {
		ran[m.Name] = true
		fired++
		e.logger.DebugCat(CatHook, "%s: running %s", event, m.Name)
		e.enqueueResults(e.runMacro(m, nil), world)
	}

	for _, name := range e.hooks.Registered(event) {
		m, found := e.registry.Get(name)
		if !found {
			e.logger.DebugCat(CatHook, "%s: macro %q is not defined", event, name)
			continue
		}
		if !ran[name] {
			run(m)
		}
	}
	for _, m := range e.registry.BySequence() {
		if m.Hook == event && !ran[m.Name] {
			run(m)
		}
	}
	return fired
}
