package clay

import (
	"reflect"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"^[", "Escape"},
		{"esc", "Escape"},
		{"RETURN", "Enter"},
		{"pgup", "PageUp"},
		{"f5", "F5"},
		{"F12", "F12"},
		{"f13", "f13"},
		{"^a", "^A"},
		{"ctrl-a", "^A"},
		{"Control+x", "^X"},
		{"C-Left", "C-Left"},
		{"ctrl-left", "C-Left"},
		{"M-X", "M-x"},
		{"alt-q", "M-q"},
		{`\ex`, "M-x"},
		{"meta-up", "M-Up"},
		{"S-Tab", "S-Tab"},
		{"shift-home", "S-Home"},
		{"  x  ", "x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyTable(t *testing.T) {
	k := NewKeyTable()
	if k.Bind("ctrl-g", "#echo first") {
		t.Error("new binding reported as replaced")
	}
	k.Bind("F1", "#echo help")
	if !k.Bind("^G", "#echo second") {
		t.Error("rebinding should report a replacement")
	}
	if cmd, found := k.Lookup("C-g"); !found || cmd != "#echo second" {
		t.Errorf("Lookup = %q, %v", cmd, found)
	}
	want := []Binding{{Key: "^G", Command: "#echo second"}, {Key: "F1", Command: "#echo help"}}
	if got := k.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List = %#v", got)
	}
	if !k.Unbind("ctrl-G") || k.Unbind("^G") {
		t.Error("Unbind should succeed exactly once")
	}
	if k.Len() != 1 {
		t.Errorf("Len = %d", k.Len())
	}
}

func TestHandleKey(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#bind ^G = #echo bell%;#echo again",
		`#def -b"M-x" meta = #echo meta macro`,
	)
	if _, handled := e.HandleKey("ctrl-g"); !handled {
		t.Fatal("bound key not handled")
	}
	if r, handled := e.HandleKey("alt-x"); !handled {
		t.Fatal("-b macro not handled")
	} else if _, failed := FirstFailure(r); failed {
		t.Errorf("macro failed: %#v", r)
	}
	if _, handled := e.HandleKey("F9"); handled {
		t.Error("unbound key handled")
	}
	want := []string{"bell", "again", "meta macro"}
	if got := outputTexts(e); !reflect.DeepEqual(got, want) {
		t.Errorf("output %q, want %q", got, want)
	}
}

func TestBindingWinsOverMacro(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e,
		"#def -bF2 fkey = #echo macro",
		"#bind F2 = #echo binding",
	)
	e.HandleKey("F2")
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"binding"}) {
		t.Errorf("output %q", got)
	}
	mustExecute(t, e, "#unbind f2")
	e.HandleKey("F2")
	if got := outputTexts(e); !reflect.DeepEqual(got, []string{"macro"}) {
		t.Errorf("output %q", got)
	}
}

func TestBindCommands(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, "#bind ctrl-r = /world dune", "#bind esc = #echo x")
	r := e.Execute("#bind")
	if s, isSuccess := r.(Success); !isSuccess || s.Text != "% ^R = /world dune\n% Escape = #echo x" {
		t.Errorf("#bind listing = %#v", r)
	}
	if r, _ := e.HandleKey("^R"); r != Result(ClayCommand{Text: "world dune"}) {
		t.Errorf("HandleKey(^R) = %#v", r)
	}
	for _, bad := range []string{"#bind F3", "#bind = x", "#unbind F3"} {
		if _, failed := FirstFailure(e.Execute(bad)); !failed {
			t.Errorf("%q should fail", bad)
		}
	}
}
