package clay

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseDefinitionFlags(t *testing.T) {
	m, err := ParseDefinition(`-p5 -F -n3 -t"*tells you*" -agB -E"hp < 10" -c0.5 -wdune -hCONNECT -bF2 tell = #echo %*`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if m.Name != "tell" || m.Body != "#echo %*" {
		t.Errorf("name/body = %q / %q", m.Name, m.Body)
	}
	if m.Priority != 5 || !m.FallThrough || m.Shots != 3 {
		t.Errorf("priority %d fallthrough %v shots %d", m.Priority, m.FallThrough, m.Shots)
	}
	if m.Trigger == nil || m.Trigger.Pattern != "*tells you*" || m.Trigger.Mode != MatchGlob {
		t.Errorf("trigger = %+v", m.Trigger)
	}
	if !m.Attrs.Gag || !m.Attrs.Bold {
		t.Errorf("attrs = %+v", m.Attrs)
	}
	if m.Condition != "hp < 10" || !m.HasChance || m.Probability != 0.5 {
		t.Errorf("condition %q chance %v %v", m.Condition, m.HasChance, m.Probability)
	}
	if m.World != "dune" || m.Hook != HookConnect || m.Key != "F2" {
		t.Errorf("world %q hook %q key %q", m.World, m.Hook, m.Key)
	}
}

func TestParseDefinitionBody(t *testing.T) {
	m, err := ParseDefinition(`a\=b = x = y`)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "a=b" || m.Body != "x = y" {
		t.Errorf("got %q = %q", m.Name, m.Body)
	}

	m, err = ParseDefinition("-1 once = ")
	if err != nil {
		t.Fatal(err)
	}
	if m.Shots != 1 || m.Body != "" {
		t.Errorf("shots %d body %q", m.Shots, m.Body)
	}
}

func TestParseDefinitionErrors(t *testing.T) {
	for _, spec := range []string{
		"noequals",
		" = body",
		"two words = body",
		"-x name = body",
		"-pX name = body",
		"-c2 name = body",
		`-t"unterminated name = body`,
		"-mregexp -t(unclosed name = body",
		"-hNOPE name = body",
		"-E1+ name = body",
		"-0 name = body",
	} {
		if _, err := ParseDefinition(spec); err == nil {
			t.Errorf("ParseDefinition(%q) should fail", spec)
		}
	}
}

func TestDefinitionRoundTrip(t *testing.T) {
	specs := []string{
		`-p10 -F -t"^You \"see\"*" -aB name = #echo hi%;#echo there`,
		`-n2 -t"x(\d+)" -mregexp -E"hp>1" -c0.25 -w"my world" r = say %P1`,
		`-hLOGIN -bF5 keyed = #echo key`,
		`plain = `,
	}
	for _, spec := range specs {
		m, err := ParseDefinition(spec)
		if err != nil {
			t.Fatalf("%s: %v", spec, err)
		}
		again, err := ParseDefinition(strings.TrimPrefix(m.Definition(), "#def "))
		if err != nil {
			t.Fatalf("re-parsing %q: %v", m.Definition(), err)
		}
		if again.Definition() != m.Definition() {
			t.Errorf("round trip changed\n%s\n%s", m.Definition(), again.Definition())
		}
	}
}

func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry()
	r.Add(&Macro{Name: "low"})
	r.Add(&Macro{Name: "high", Priority: 10})
	r.Add(&Macro{Name: "low2"})
	r.Add(&Macro{Name: "mid", Priority: 5})

	var names []string
	for _, m := range r.Ordered() {
		names = append(names, m.Name)
	}
	if want := []string{"high", "mid", "low", "low2"}; !reflect.DeepEqual(names, want) {
		t.Errorf("Ordered = %v, want %v", names, want)
	}

	if !r.Add(&Macro{Name: "low", Priority: 20}) {
		t.Error("redefining should report a replacement")
	}
	if first := r.Ordered()[0]; first.Name != "low" {
		t.Errorf("first = %s", first.Name)
	}
	seq := r.BySequence()
	if seq[len(seq)-1].Name != "low" || r.Len() != 4 {
		t.Errorf("redefined macro should be newest; len %d", r.Len())
	}
}

func TestRegistryPurgeAndMatch(t *testing.T) {
	r := NewRegistry()
	r.Add(&Macro{Name: "heal_a"})
	r.Add(&Macro{Name: "heal_b", Internal: true})
	r.Add(&Macro{Name: "kill"})

	if n := len(r.Match("heal_*")); n != 2 {
		t.Errorf("Match = %d", n)
	}
	if n := r.Purge("heal_*"); n != 1 {
		t.Errorf("Purge = %d, internal macros must survive", n)
	}
	if _, found := r.Get("heal_b"); !found {
		t.Error("heal_b was purged")
	}
	if got := r.Listing("kill"); len(got) != 1 || got[0] != "% 3: #def kill = " {
		t.Errorf("Listing = %q", got)
	}
}

func TestTriggerModes(t *testing.T) {
	tests := []struct {
		pattern string
		mode    MatchMode
		line    string
		match   bool
	}{
		{"*hungry*", MatchGlob, "You are hungry.", true},
		{"hungry", MatchGlob, "You are hungry.", true},
		{"^You", MatchGlob, "You are", true},
		{"^You", MatchGlob, "Are You", false},
		{"done$", MatchGlob, "all done", true},
		{"done$", MatchGlob, "done now", false},
		{"a.c", MatchGlob, "abc", false},
		{"a?c", MatchGlob, "abc", true},
		{"[xy]z", MatchGlob, "yz", true},
		{"a.c", MatchSimple, "xa.cx", true},
		{"a.c", MatchSimple, "abc", false},
		{`^\d+ HP`, MatchRegexp, "25 HP", true},
	}
	for _, tt := range tests {
		trig, err := CompileTrigger(tt.pattern, tt.mode)
		if err != nil {
			t.Errorf("%s (%s): %v", tt.pattern, tt.mode, err)
			continue
		}
		if got := trig.Match(tt.line) != nil; got != tt.match {
			t.Errorf("%s (%s) on %q = %v, want %v", tt.pattern, tt.mode, tt.line, got, tt.match)
		}
	}
	if _, err := ParseMatchMode("REGEX"); err != nil {
		t.Error(err)
	}
	if _, err := ParseMatchMode("fuzzy"); err == nil {
		t.Error("fuzzy should not be a match mode")
	}
}
