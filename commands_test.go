package clay

import (
	"io"
	"reflect"
	"runtime"
	"testing"
)

func TestSetAndUnset(t *testing.T) {
	e := newTestEngine(t)
	if _, failed := FirstFailure(e.Execute("#set hp")); !failed {
		t.Error("reading an unset variable should fail")
	}
	mustExecute(t, e, "#set hp=50", "#set mp 20", "#set msg = two  words ")
	tests := []struct {
		line, want string
	}{
		{"#set hp", "% hp=50"},
		{"#set mp", "% mp=20"},
		{"#set", "% hp=50\n% mp=20\n% msg=two  words "},
	}
	for _, tt := range tests {
		if r := e.Execute(tt.line); r != Result(Success{Text: tt.want}) {
			t.Errorf("%q = %#v, want %q", tt.line, r, tt.want)
		}
	}
	if _, failed := FirstFailure(e.Execute("#set a-b=1")); !failed {
		t.Error("bad name should fail")
	}
	mustExecute(t, e, "#unset hp mp")
	if _, found := e.GetVar("hp"); found {
		t.Error("hp still set")
	}
	if _, failed := FirstFailure(e.Execute("#unset hp")); !failed {
		t.Error("unsetting twice should fail")
	}
}

func TestLetIsLocalToMacro(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#def scoped = #let tmp=inner%;#echo %%tmp",
		"#scoped",
	)
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"inner"}) {
		t.Errorf("output %q", got)
	}
	if _, found := e.GetVar("tmp"); found {
		t.Error("#let leaked out of the macro")
	}
	mustExecute(t, e, "#let top=global")
	if v, _ := e.GetVar("top"); v.String() != "global" {
		t.Errorf("top-level #let = %q", v)
	}
	if _, failed := FirstFailure(e.Execute("#let novalue")); !failed {
		t.Error("#let without a value should fail")
	}
}

func TestEchoAndSend(t *testing.T) {
	worlds := NewWorldTable()
	worlds.Put(WorldInfo{Name: "dune"})
	worlds.SetCurrent("dune")
	e := New(&Config{Host: worlds, LogOut: io.Discard})
	t.Cleanup(e.Close)

	mustExecute(t, e,
		"#set who=Bob",
		"#echo hi %who",
		"#echo 100%%",
		"#echo -aBu loud",
		"#send look",
		"#send -wother wave",
	)
	p := e.Drain()
	wantOut := []OutputLine{
		{Text: "hi Bob"},
		{Text: "100%"},
		{Text: "loud", Attrs: Attributes{Bold: true, Underline: true}},
	}
	if !reflect.DeepEqual(p.Output, wantOut) {
		t.Errorf("output %#v", p.Output)
	}
	wantCmd := []Command{{Text: "look", World: "dune"}, {Text: "wave", World: "other"}}
	if !reflect.DeepEqual(p.Commands, wantCmd) {
		t.Errorf("commands %#v", p.Commands)
	}
	if _, failed := FirstFailure(e.Execute("#echo -aZ x")); !failed {
		t.Error("bad attribute should fail")
	}
}

func TestExprAndTest(t *testing.T) {
	e := newTestEngine(t)
	if r := e.Execute("#expr 1 + 2 * 3"); r != Result(Success{Text: "7"}) {
		t.Errorf("#expr = %#v", r)
	}
	if r := e.Execute("#test 6 / 2"); r != Result(ok) {
		t.Errorf("#test = %#v", r)
	}
	if v, _ := e.GetVar("?"); v.String() != "3" {
		t.Errorf("%%? = %q", v)
	}
	for _, bad := range []string{"#expr 1 +", "#test (", "#expr 1/0"} {
		if _, failed := FirstFailure(e.Execute(bad)); !failed {
			t.Errorf("%q should fail", bad)
		}
	}
}

func TestMacroCommands(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#def greet = #echo hi %1",
		"#def -i keep = #echo internal",
		"#def heal = quaff",
		"#def hunt = kill %*",
		"#greet Bob",
	)
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"hi Bob"}) {
		t.Errorf("output %q", got)
	}
	if r := e.Execute("#hunt orc 2"); r != Result(SendToMud{Text: "kill orc 2"}) {
		t.Errorf("#hunt = %#v", r)
	}
	if r := e.Execute("#list heal"); r != Result(Success{Text: "% 3: #def heal = quaff"}) {
		t.Errorf("#list = %#v", r)
	}

	f, failed := FirstFailure(e.Execute("#undef heal nosuch"))
	if !failed || f.Message != "#undef: no macro named nosuch" {
		t.Errorf("#undef = %q", f.Message)
	}
	if e.Registry().Len() != 3 {
		t.Errorf("registry holds %d macros", e.Registry().Len())
	}
	mustExecute(t, e, "#purge")
	if names := e.Registry().Listing(""); len(names) != 1 {
		t.Errorf("purge kept %q", names)
	}
	if _, found := e.Registry().Get("keep"); !found {
		t.Error("purge removed an internal macro")
	}

	f, _ = FirstFailure(e.Execute("#nosuch"))
	if f.Message != "unknown command #nosuch" {
		t.Errorf("unknown command = %q", f.Message)
	}
}

func TestEvalCommand(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, "#set n=2", "#eval #echo a%;#echo n=%n")
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"a", "n=2"}) {
		t.Errorf("output %q", got)
	}
}

func TestClientCommands(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		line string
		want Result
	}{
		{"#quit", ClayCommand{Text: "quit"}},
		{"#world", ClayCommand{Text: "world"}},
		{"#world dune", ClayCommand{Text: "world dune"}},
		{"#version", Success{Text: "Clay " + Version}},
	}
	for _, tt := range tests {
		if r := e.Execute(tt.line); r != tt.want {
			t.Errorf("%q = %#v, want %#v", tt.line, r, tt.want)
		}
	}
}

func TestTriggerCommand(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#def -t\"*hungry*\" eat = #echo eating",
		"#gag *spam*",
		"#trigger You are hungry",
		"#trigger buy spam now",
	)
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"eating", "You are hungry"}) {
		t.Errorf("output %q", got)
	}
}

func TestShellCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	e := newTestEngine(t)
	if r := e.Execute("#sh echo hi"); r != Result(Success{Text: "hi"}) {
		t.Errorf("#sh = %#v", r)
	}
	if _, failed := FirstFailure(e.Execute("#sh exit 3")); !failed {
		t.Error("failing shell command should report")
	}
	if _, failed := FirstFailure(e.Execute("#sh")); !failed {
		t.Error("#sh without a command should fail")
	}
}
