package clay

import (
	"reflect"
	"testing"
)

func TestSubstituteVariables(t *testing.T) {
	e := newTestEngine(t)
	e.SetGlobal("hp", Int(42))
	e.SetGlobal("name", Str("Bob"))

	tests := []struct {
		in, want string
	}{
		{"HP: %hp", "HP: 42"},
		{"%{name}s", "Bobs"},
		{"%{ name }", "Bob"},
		{"%nameless", ""},
		{"100%%", "100%"},
		{"50% off", "50% off"},
		{"trailing %", "trailing %"},
		{"%{unclosed", "%{unclosed"},
		{"no percent", "no percent"},
	}
	for _, tt := range tests {
		if got := e.SubstituteVariables(tt.in); got != tt.want {
			t.Errorf("SubstituteVariables(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMacroArguments(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#def args = #echo 0=%0 1=%1 2=%2 n=%# all=%* last=%-1",
		"#args red green blue",
	)
	want := []string{"0=args 1=red 2=green n=3 all=red green blue last=blue"}
	if got := outputTexts(e); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMacroBraceArguments(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		`#def calc = #test x := {1} + {2}`,
		"#calc 3 4",
	)
	if v, _ := e.GetVar("x"); v.String() != "7" {
		t.Errorf("x = %q, want 7", v)
	}
}

func TestSubstitutionOrder(t *testing.T) {
	e := newTestEngine(t)
	// %1 is expanded before variables, so an argument can name the
	// variable the body reads
	e.SetGlobal("secret", Str("found"))
	mustExecute(t, e,
		"#def peek = #echo %{%1}",
		"#peek secret",
	)
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"found"}) {
		t.Errorf("got %q", got)
	}
}

func TestSplitCommands(t *testing.T) {
	tests := []struct {
		body string
		want []string
	}{
		{"a; b", []string{"a", "b"}},
		{"a%;b", []string{"a", "b"}},
		{`a\; b`, []string{"a; b"}},
		{"#if (x; y) z; w", []string{"#if (x; y) z", "w"}},
		{`#echo ("a;b"); c`, []string{`#echo ("a;b")`, "c"}},
		{";;  ;", nil},
	}
	for _, tt := range tests {
		if got := splitCommands(tt.body); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCommands(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestCaptureSubstitution(t *testing.T) {
	e := newTestEngine(t)
	trig, err := CompileTrigger(`(\w+) gives you (\d+) coins`, MatchRegexp)
	if err != nil {
		t.Fatal(err)
	}
	line := "Then Alice gives you 12 coins today"
	e.captures.set(line, trig.Match(line))

	got := e.substituteCapturePass("[%PL][%P0][%P1][%P2][%P*][%PR][%P9]")
	want := "[Then ][Alice gives you 12 coins][Alice][12][Alice 12][ today][]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if kept := e.substituteCapturePass("%PLAYER"); kept != "%PLAYER" {
		t.Errorf("%%PL followed by letters should stay: %q", kept)
	}
}

func TestDoublePercentPerLevel(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, "#set foo=bar", "#def pct = #echo %%foo")
	e.CallMacro("pct")
	mustExecute(t, e, "#echo %%foo")
	got := outputTexts(e)
	if len(got) != 2 || got[0] != "bar" || got[1] != "%foo" {
		t.Errorf("outputs %q, want [bar %%foo]", got)
	}
}
