package clay

import "testing"

func TestValueToBool(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Int(0), false},
		{Int(-3), true},
		{Float(0), false},
		{Float(0.5), true},
		{Str(""), false},
		{Str("0"), false},
		{Str("0.0"), true},
		{Str("no"), true},
	}
	for _, tt := range tests {
		if got := tt.v.ToBool(); got != tt.want {
			t.Errorf("%s %q ToBool() = %v, want %v", tt.v.Kind(), tt.v, got, tt.want)
		}
	}
}

func TestValueNumeric(t *testing.T) {
	if n := Str(" 42 ").numeric(); n.Kind() != KindInt || n.ToInt() != 42 {
		t.Errorf("expected integer 42, got %s %s", n.Kind(), n)
	}
	if n := Str("2.5").numeric(); n.Kind() != KindFloat || n.ToFloat() != 2.5 {
		t.Errorf("expected float 2.5, got %s %s", n.Kind(), n)
	}
	if n := Str("abc").numeric(); n.Kind() != KindFloat || n.ToFloat() != 0 {
		t.Errorf("expected float 0, got %s %s", n.Kind(), n)
	}
	if Str("").IsNumeric() || Str("x1").IsNumeric() {
		t.Error("empty and non-numeric strings must not be numeric")
	}
	for _, word := range []string{"inf", "Infinity", "-Inf", "nan", "NaN", "0x1p4", "1e", ".", "1.2.3"} {
		if Str(word).IsNumeric() {
			t.Errorf("%q should not be numeric", word)
		}
	}
	for _, num := range []string{"-7", "+3", "1e3", "2.5E-1", ".5", "5."} {
		if !Str(num).IsNumeric() {
			t.Errorf("%q should be numeric", num)
		}
	}
	if Float(3.0).String() != "3" || Float(3.25).String() != "3.25" {
		t.Errorf("float formatting: %s %s", Float(3.0), Float(3.25))
	}
}

func TestCompareValues(t *testing.T) {
	if !Str("10").Equal(Int(10)) {
		t.Error(`"10" should equal 10`)
	}
	if !Str("1.0").Equal(Int(1)) {
		t.Error(`"1.0" should equal 1`)
	}
	if compareValues(Str("9"), Str("10")) >= 0 {
		t.Error("numeric strings compare numerically")
	}
	if Str("inf").Equal(Str("Infinity")) {
		t.Error(`"inf" and "Infinity" are different strings`)
	}
	if compareValues(Str("nan"), Str("zebra")) >= 0 {
		t.Error(`"nan" compares as a string`)
	}
	if compareValues(Str("apple"), Str("banana")) >= 0 {
		t.Error("plain strings compare lexically")
	}
}

func TestArith(t *testing.T) {
	tests := []struct {
		op   string
		a, b Value
		want string
	}{
		{"/", Int(7), Int(2), "3"},
		{"/", Float(7), Int(2), "3.5"},
		{"%", Int(7), Int(3), "1"},
		{"+", Str("2"), Str("3"), "5"},
		{"*", Str("1.5"), Int(2), "3"},
		{"-", Int(2), Int(5), "-3"},
	}
	for _, tt := range tests {
		got, err := arith(tt.op, tt.a, tt.b)
		if err != nil {
			t.Errorf("%s %s %s: %v", tt.a, tt.op, tt.b, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("%s %s %s = %s, want %s", tt.a, tt.op, tt.b, got, tt.want)
		}
	}
	for _, op := range []string{"/", "%"} {
		if _, err := arith(op, Int(1), Int(0)); err == nil {
			t.Errorf("1 %s 0 should fail", op)
		}
		if _, err := arith(op, Float(1), Float(0)); err == nil {
			t.Errorf("1.0 %s 0.0 should fail", op)
		}
	}
}
