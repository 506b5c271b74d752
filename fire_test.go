package clay

import (
	"io"
	"reflect"
	"testing"
)

func TestTriggerPriorityAndFallThrough(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		`#def -p10 -t"*orc*" high = #echo high`,
		`#def -t"*orc*" low = #echo low`,
	)
	out := e.ProcessServerLine("", "An orc arrives.")
	if !reflect.DeepEqual(out.Fired, []string{"high"}) {
		t.Errorf("fired %v, want only high", out.Fired)
	}
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"high"}) {
		t.Errorf("output %q", got)
	}

	mustExecute(t, e, `#def -p10 -F -t"*orc*" high = #echo high`)
	out = e.ProcessServerLine("", "An orc arrives.")
	if !reflect.DeepEqual(out.Fired, []string{"high", "low"}) {
		t.Errorf("with fall-through fired %v", out.Fired)
	}
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"high", "low"}) {
		t.Errorf("output %q", got)
	}
}

func TestOneShotTrigger(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, `#def -t"^Welcome" -1 greet = #echo Hi there`)

	out := e.ProcessServerLine("", "Welcome to the game")
	if !reflect.DeepEqual(out.Fired, []string{"greet"}) {
		t.Errorf("fired %v", out.Fired)
	}
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"Hi there"}) {
		t.Errorf("output %q", got)
	}
	if _, found := e.Registry().Get("greet"); found {
		t.Error("greet should be gone after its only shot")
	}

	out = e.ProcessServerLine("", "Welcome to the game")
	if len(out.Fired) != 0 || !e.Peek().Empty() {
		t.Errorf("second line fired %v", out.Fired)
	}
}

func TestShotCountDecrements(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, `#def -n2 -t"ping" twice = #echo pong`)
	e.ProcessServerLine("", "ping")
	if m, found := e.Registry().Get("twice"); !found || m.Shots != 1 {
		t.Fatalf("after one firing: found %v", found)
	}
	e.ProcessServerLine("", "ping")
	if _, found := e.Registry().Get("twice"); found {
		t.Error("twice should be gone")
	}
	if got := outputTexts(e); len(got) != 2 {
		t.Errorf("output %q", got)
	}
}

func TestRegexpTriggerCaptures(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, `#def -mregexp -t"You hit (.+) for (\d+) damage" hit = say Hit %P1 for %P2!`)

	e.ProcessServerLine("", "You hit the goblin for 42 damage!")
	p := e.Drain()
	want := []Command{{Text: "say Hit the goblin for 42!"}}
	if !reflect.DeepEqual(p.Commands, want) {
		t.Errorf("commands = %+v, want %+v", p.Commands, want)
	}
}

func TestTriggerGuardAndChance(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		`#def -p2 -t"tick" -E"armed" guarded = #echo guarded`,
		`#def -p1 -t"tick" -c0 never = #echo never`,
		`#def -t"tick" fallback = #echo fallback`,
	)

	out := e.ProcessServerLine("", "tick")
	if !reflect.DeepEqual(out.Fired, []string{"fallback"}) {
		t.Errorf("fired %v, want fallback only", out.Fired)
	}

	e.SetGlobal("armed", Int(1))
	out = e.ProcessServerLine("", "tick")
	if !reflect.DeepEqual(out.Fired, []string{"guarded"}) {
		t.Errorf("fired %v, want guarded", out.Fired)
	}
}

func TestTriggerWorldRestriction(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, `#def -wdune -t"spice" s = #echo spice`)
	if out := e.ProcessServerLine("arrakis", "spice"); len(out.Fired) != 0 {
		t.Errorf("fired on the wrong world: %v", out.Fired)
	}
	if out := e.ProcessServerLine("dune", "spice"); len(out.Fired) != 1 {
		t.Errorf("did not fire on dune")
	}
}

func TestGagHiliteAndSubstitute(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#gag *spam*",
		`#def -t"secret *" redact = #test substitute("secret [redacted]", "r")`,
	)
	if out := e.ProcessServerLine("", "more spam"); !out.Gag {
		t.Error("spam line should be gagged")
	}

	out := e.ProcessServerLine("", "secret plans")
	if out.Line != "secret [redacted]" || !out.Attrs.Reverse || out.Gag {
		t.Errorf("outcome = %+v", out)
	}
	if p := e.Peek(); len(p.Substitutions) != 0 {
		t.Errorf("substitutions should be consumed: %+v", p.Substitutions)
	}
}

func TestTriggerBodyArguments(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, `#def -t"* says *" said = #set who=%1`)
	e.ProcessServerLine("", "Alice says hello")
	if v, _ := e.GetVar("who"); v.String() != "Alice" {
		t.Errorf("who = %q", v)
	}
}

func TestRedefinitionDuringScan(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		`#def -p5 -F -t"go" first = #undef second`,
		`#def -t"go" second = #echo second ran`,
	)
	out := e.ProcessServerLine("", "go")
	if !reflect.DeepEqual(out.Fired, []string{"first"}) {
		t.Errorf("fired %v", out.Fired)
	}
	if got := outputTexts(e); len(got) != 0 {
		t.Errorf("a macro removed mid-scan still ran: %q", got)
	}
}

func TestMacroRecursionLimit(t *testing.T) {
	e := New(&Config{MaxMacroDepth: 8, LogOut: io.Discard})
	mustExecute(t, e, "#def loop = #loop")
	r := e.Execute("#loop")
	f, failed := FirstFailure(r)
	if !failed || f.Message != "macro loop: nesting deeper than 8" {
		t.Errorf("got %#v", r)
	}
}
