package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser turns expression text into a Node tree under a fixed Config.
type Parser struct {
	cfg Config
}

func NewParser(cfg Config) *Parser { return &Parser{cfg: cfg} }

// Parse parses one expression. Grammar, lowest precedence first:
//
//	expression := term (("+" | "-") term)*
//	term       := unary (("*" | "/") unary | implicit power)*
//	unary      := ("-" | "+") unary | power
//	power      := primary ("^" unary)?
//	primary    := number | word | word "(" args ")" | "(" expression ")"
//
// Chains of + and of * are flattened into one n-ary BinaryOp.
func (p *Parser) Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Input: input, Pos: 0, Msg: "empty expression"}
	}
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	st := &parseState{input: input, tokens: tokens, cfg: p.cfg}
	node, err := st.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := st.peek(); tok.Type != TOKEN_EOF {
		return nil, st.errorf(tok, "unexpected %s", describe(tok))
	}
	return node, nil
}

// Parse parses input with DefaultConfig.
func Parse(input string) (Node, error) {
	return NewParser(DefaultConfig()).Parse(input)
}

// MustParse is Parse for inputs known to be valid; it panics otherwise.
func MustParse(input string) Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

type parseState struct {
	input  string
	tokens []Token
	pos    int
	cfg    Config
}

func (p *parseState) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TOKEN_EOF, Pos: len(p.input)}
	}
	return p.tokens[p.pos]
}

func (p *parseState) advance() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parseState) errorf(tok Token, format string, args ...interface{}) *ParseError {
	return &ParseError{Input: p.input, Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func describe(tok Token) string {
	if tok.Type == TOKEN_EOF {
		return "end of input"
	}
	return strconv.Quote(tok.Literal)
}

// parseExpression: term ( ("+" | "-") term )*
func (p *parseState) parseExpression() (Node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	terms := []Node{first}
	for p.peek().Type == TOKEN_PLUS || p.peek().Type == TOKEN_MINUS {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op.Type == TOKEN_PLUS {
			terms = append(terms, right)
			continue
		}
		terms = []Node{Binary(Sub, collapse(Add, terms), right)}
	}
	return collapse(Add, terms), nil
}

// parseTerm: unary ( ("*" | "/") unary | implicit )*
func (p *parseState) parseTerm() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	factors := []Node{first}
	for {
		tok := p.peek()
		switch {
		case tok.Type == TOKEN_STAR:
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, right)
		case tok.Type == TOKEN_SLASH:
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = []Node{Binary(Div, collapse(Mul, factors), right)}
		case p.cfg.implicitMul && (tok.Type == TOKEN_WORD || tok.Type == TOKEN_LPAREN):
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			factors = append(factors, right)
		default:
			return collapse(Mul, factors), nil
		}
	}
}

func collapse(op Operator, ns []Node) Node {
	if len(ns) == 1 {
		return ns[0]
	}
	return Binary(op, ns...)
}

// parseUnary: "-" unary | "+" unary | power
func (p *parseState) parseUnary() (Node, error) {
	switch p.peek().Type {
	case TOKEN_PLUS:
		p.advance()
		return p.parseUnary()
	case TOKEN_MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negate(operand), nil
	}
	return p.parsePower()
}

// negate folds a negated literal into the constant and otherwise multiplies
// by -1, so the tree never needs a unary node.
func negate(n Node) Node {
	if c, ok := n.(*Constant); ok {
		return Const(-c.value)
	}
	return Binary(Mul, Const(-1), n)
}

// parsePower: primary ( "^" unary )?
func (p *parseState) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TOKEN_CARET {
		return base, nil
	}
	p.advance()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Binary(Pow, base, exp), nil
}

// parsePrimary: number | word | word "(" args ")" | "(" expression ")"
func (p *parseState) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Type {
	case TOKEN_NUMBER:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %q", tok.Literal)
		}
		return Const(v), nil

	case TOKEN_WORD:
		p.advance()
		if p.peek().Type == TOKEN_LPAREN {
			return p.parseCall(tok)
		}
		return Var(tok.Literal), nil

	case TOKEN_LPAREN:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.peek().Type != TOKEN_RPAREN {
			return nil, p.errorf(p.peek(), "expected ')' to close '(' at position %d", tok.Pos)
		}
		p.advance()
		return Group(inner), nil
	}

	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *parseState) parseCall(name Token) (Node, error) {
	open := p.advance() // consume '('
	if p.peek().Type == TOKEN_RPAREN {
		return nil, p.errorf(p.peek(), "function %s needs at least one argument", name.Literal)
	}
	var args []Node
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Type == TOKEN_COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.peek().Type != TOKEN_RPAREN {
		return nil, p.errorf(p.peek(), "expected ')' to close %s( at position %d", name.Literal, open.Pos)
	}
	p.advance()
	return Apply(name.Literal, args...), nil
}
