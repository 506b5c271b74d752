package clay

import (
	"errors"
	"testing"
)

func TestLexTokens(t *testing.T) {
	tokens, err := Lex(`x := 1.5e2 + "a\"b" =/ {-1} ,f(2)`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []struct {
		typ  TokenType
		text string
	}{
		{TokIdent, "x"},
		{TokOp, ":="},
		{TokFloat, "1.5e2"},
		{TokOp, "+"},
		{TokString, `a"b`},
		{TokOp, "=/"},
		{TokBrace, "-1"},
		{TokComma, ","},
		{TokIdent, "f"},
		{TokLParen, "("},
		{TokInt, "2"},
		{TokRParen, ")"},
		{TokEOF, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Text != w.text {
			t.Errorf("token %d = %s %q, want %s %q", i, tokens[i].Type, tokens[i].Text, w.typ, w.text)
		}
	}
}

func TestLexErrors(t *testing.T) {
	for _, src := range []string{`"open`, `{name`, `{}`, "a @ b", `'x\`} {
		_, err := Lex(src)
		var scriptErr *ScriptError
		if !errors.As(err, &scriptErr) || scriptErr.Kind != ErrParse {
			t.Errorf("Lex(%q) = %v, want a parse error", src, err)
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	expr, err := ParseExpression("1 + 2 * 3 == 7 & !0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	and, isLogical := expr.(Logical)
	if !isLogical || and.Op != "&" {
		t.Fatalf("top node = %#v, want Logical &", expr)
	}
	eq, isBinary := and.L.(Binary)
	if !isBinary || eq.Op != "==" {
		t.Fatalf("left of & = %#v, want Binary ==", and.L)
	}
	sum, isBinary := eq.L.(Binary)
	if !isBinary || sum.Op != "+" {
		t.Fatalf("left of == = %#v, want Binary +", eq.L)
	}
	if prod, isBinary := sum.R.(Binary); !isBinary || prod.Op != "*" {
		t.Errorf("right of + = %#v, want Binary *", sum.R)
	}
	if not, isUnary := and.R.(Unary); !isUnary || not.Op != "!" {
		t.Errorf("right of & = %#v, want Unary !", and.R)
	}
}

func TestParseRightAssociative(t *testing.T) {
	expr, err := ParseExpression("a := b := 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	outer, isAssign := expr.(Assign)
	if !isAssign || outer.Name != "a" {
		t.Fatalf("got %#v", expr)
	}
	if inner, isAssign := outer.Value.(Assign); !isAssign || inner.Name != "b" {
		t.Errorf("inner = %#v", outer.Value)
	}

	expr, err = ParseExpression("x ? : y")
	if err != nil {
		t.Fatalf("parse elided ternary: %v", err)
	}
	if tern, isTernary := expr.(Ternary); !isTernary || tern.Then != nil {
		t.Errorf("got %#v, want a Ternary without a true branch", expr)
	}
}

func TestParseCallsLowercaseName(t *testing.T) {
	expr, err := ParseExpression(`StrLen("abc")`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if call, isCall := expr.(Call); !isCall || call.Name != "strlen" || len(call.Args) != 1 {
		t.Errorf("got %#v", expr)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"", "1 +", "(1", "3 := 4", "f(1,", "1 2", "++3", "a ? b"} {
		if _, err := ParseExpression(src); err == nil {
			t.Errorf("ParseExpression(%q) should fail", src)
		}
	}
}
