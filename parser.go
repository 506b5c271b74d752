package clay

import (
	"strconv"
	"strings"
)

// Expr is a node of a parsed expression
type Expr interface {
	exprNode()
}

// Literal is a constant value
type Literal struct {
	Value Value
}

// VarRef reads a variable; Name may be a synthesized positional name ("1", "-1", "2-", "*", "#")
type VarRef struct {
	Name string
}

// Call invokes a builtin function
type Call struct {
	Name string
	Args []Expr
}

// Unary is "!", "-" or "+" applied to X
type Unary struct {
	Op string
	X  Expr
}

// IncDec is a prefix ++name or --name
type IncDec struct {
	Name  string
	Delta int64
}

// Binary is an arithmetic, comparison or match operator
type Binary struct {
	Op   string
	L, R Expr
}

// Logical is a short-circuit "&" or "|"
type Logical struct {
	Op   string
	L, R Expr
}

// Ternary is "c ? a : b"; Then is nil for the elided form "c ? : b"
type Ternary struct {
	Cond, Then, Else Expr
}

// Assign is "name := value"
type Assign struct {
	Name  string
	Value Expr
}

func (Literal) exprNode() {}
func (VarRef) exprNode()  {}
func (Call) exprNode()    {}
func (Unary) exprNode()   {}
func (IncDec) exprNode()  {}
func (Binary) exprNode()  {}
func (Logical) exprNode() {}
func (Ternary) exprNode() {}
func (Assign) exprNode()  {}

// Parser is a recursive-descent parser with one method per precedence level
type Parser struct {
	tokens []Token
	pos    int
}

// ParseExpression lexes and parses src into a single expression
func ParseExpression(src string) (Expr, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	if p.peek().Type == TokEOF {
		return nil, parseErrorf("empty expression")
	}
	expr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokEOF {
		return nil, parseErrorf("unexpected %s %q at position %d", tok.Type, tok.Text, tok.Pos)
	}
	return expr, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) isOp(ops ...string) bool {
	tok := p.peek()
	if tok.Type != TokOp {
		return false
	}
	for _, op := range ops {
		if tok.Text == op {
			return true
		}
	}
	return false
}

func (p *Parser) expectOp(op string) error {
	if !p.isOp(op) {
		tok := p.peek()
		return parseErrorf("expected %q, found %s %q at position %d", op, tok.Type, tok.Text, tok.Pos)
	}
	p.advance()
	return nil
}

func (p *Parser) parseAssignment() (Expr, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if !p.isOp(":=") {
		return left, nil
	}
	tok := p.advance()
	ref, isVar := left.(VarRef)
	if !isVar {
		return nil, parseErrorf("left side of ':=' at position %d must be a variable", tok.Pos)
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return Assign{Name: ref.Name, Value: value}, nil
}

func (p *Parser) parseTernary() (Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.isOp("?") {
		return cond, nil
	}
	p.advance()

	var then Expr
	if !p.isOp(":") {
		then, err = p.parseAssignment()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return Ternary{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isOp("|", "||") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Logical{Op: "|", L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.isOp("&", "&&") {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = Logical{Op: "&", L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.isOp("==", "!=", "=", "=~", "!~", "=/", "!/") {
		op := p.advance().Text
		if op == "=" {
			op = "=="
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.isOp("<", "<=", ">", ">=") {
		op := p.advance().Text
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.advance().Text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.advance().Text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.isOp("!", "-", "+") {
		op := p.advance().Text
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil
	}
	if p.isOp("++", "--") {
		tok := p.advance()
		target := p.peek()
		var name string
		switch target.Type {
		case TokIdent:
			name = target.Text
		case TokBrace:
			name = target.Text
		default:
			return nil, parseErrorf("%s at position %d must be followed by a variable", tok.Text, tok.Pos)
		}
		p.advance()
		delta := int64(1)
		if tok.Text == "--" {
			delta = -1
		}
		return IncDec{Name: name, Delta: delta}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case TokInt:
		i, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			// too large for int64: keep the magnitude as a float
			f, ferr := strconv.ParseFloat(tok.Text, 64)
			if ferr != nil {
				return nil, parseErrorf("bad number %q", tok.Text)
			}
			return Literal{Value: Float(f)}, nil
		}
		return Literal{Value: Int(i)}, nil
	case TokFloat:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, parseErrorf("bad number %q", tok.Text)
		}
		return Literal{Value: Float(f)}, nil
	case TokString:
		return Literal{Value: Str(tok.Text)}, nil
	case TokBrace:
		return VarRef{Name: tok.Text}, nil
	case TokIdent:
		if p.peek().Type == TokLParen {
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Name: strings.ToLower(tok.Text), Args: args}, nil
		}
		return VarRef{Name: tok.Text}, nil
	case TokLParen:
		inner, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if p.peek().Type != TokRParen {
			return nil, parseErrorf("missing ')' for '(' at position %d", tok.Pos)
		}
		p.advance()
		return inner, nil
	case TokEOF:
		return nil, parseErrorf("unexpected end of expression")
	}
	return nil, parseErrorf("unexpected %s %q at position %d", tok.Type, tok.Text, tok.Pos)
}

func (p *Parser) parseArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type == TokRParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch tok := p.advance(); tok.Type {
		case TokComma:
			continue
		case TokRParen:
			return args, nil
		default:
			return nil, parseErrorf("expected ',' or ')' in argument list, found %s %q at position %d", tok.Type, tok.Text, tok.Pos)
		}
	}
}
