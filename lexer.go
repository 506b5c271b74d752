package clay

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType identifies a lexical token
type TokenType int

const (
	TokEOF TokenType = iota
	TokInt
	TokFloat
	TokString
	TokIdent
	TokBrace // {var}, {*}, {#}, {-n}, {n}, {n-}; Text holds the inside
	TokOp
	TokLParen
	TokRParen
	TokComma
)

var tokenNames = map[TokenType]string{
	TokEOF:    "end of expression",
	TokInt:    "integer",
	TokFloat:  "float",
	TokString: "string",
	TokIdent:  "identifier",
	TokBrace:  "brace reference",
	TokOp:     "operator",
	TokLParen: "'('",
	TokRParen: "')'",
	TokComma:  "','",
}

func (t TokenType) String() string {
	if name, found := tokenNames[t]; found {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is one lexical unit of an expression
type Token struct {
	Type TokenType
	Text string // operator text, identifier, literal source or decoded string
	Pos  int    // byte offset into the expression
}

// operators, longest first so that two-character forms win
var operators = []string{
	":=", "==", "!=", "<=", ">=", "=~", "!~", "=/", "!/", "&&", "||", "++", "--",
	"+", "-", "*", "/", "%", "!", "<", ">", "=", "&", "|", "?", ":",
}

// Lexer turns one expression string into tokens
type Lexer struct {
	src string
	pos int
}

// NewLexer creates a lexer over src
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Lex is shorthand for NewLexer(src).Scan()
func Lex(src string) ([]Token, error) {
	return NewLexer(src).Scan()
}

// Scan returns every token, terminated by TokEOF
func (l *Lexer) Scan() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.src) {
		return Token{Type: TokEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c >= '0' && c <= '9':
		return l.number(), nil
	case c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		return l.number(), nil
	case c == '"' || c == '\'':
		return l.str(c)
	case c == '{':
		return l.brace()
	case c == '(':
		l.pos++
		return Token{Type: TokLParen, Text: "(", Pos: start}, nil
	case c == ')':
		l.pos++
		return Token{Type: TokRParen, Text: ")", Pos: start}, nil
	case c == ',':
		l.pos++
		return Token{Type: TokComma, Text: ",", Pos: start}, nil
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentStart(r) {
		l.pos += size
		for l.pos < len(l.src) {
			r, size = utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.pos += size
		}
		return Token{Type: TokIdent, Text: l.src[start:l.pos], Pos: start}, nil
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			return Token{Type: TokOp, Text: op, Pos: start}, nil
		}
	}
	return Token{}, parseErrorf("unrecognized character %q at position %d", r, start)
}

func (l *Lexer) number() Token {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		j := l.pos + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			isFloat = true
			for j < len(l.src) && isDigit(l.src[j]) {
				j++
			}
			l.pos = j
		}
	}
	if isFloat {
		return Token{Type: TokFloat, Text: l.src[start:l.pos], Pos: start}
	}
	return Token{Type: TokInt, Text: l.src[start:l.pos], Pos: start}
}

func (l *Lexer) str(quote byte) (Token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return Token{Type: TokString, Text: sb.String(), Pos: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return Token{}, parseErrorf("unterminated escape at position %d", l.pos)
			}
			switch e := l.src[l.pos+1]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(e)
			}
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return Token{}, parseErrorf("unterminated string starting at position %d", start)
}

func (l *Lexer) brace() (Token, error) {
	start := l.pos
	end := strings.IndexByte(l.src[l.pos:], '}')
	if end < 0 {
		return Token{}, parseErrorf("unterminated '{' at position %d", start)
	}
	inner := strings.TrimSpace(l.src[l.pos+1 : l.pos+end])
	l.pos += end + 1
	if inner == "" {
		return Token{}, parseErrorf("empty '{}' at position %d", start)
	}
	return Token{Type: TokBrace, Text: inner, Pos: start}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
