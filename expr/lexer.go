package expr

import (
	"fmt"
	"unicode/utf8"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TOKEN_NUMBER TokenType = iota
	TOKEN_WORD
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_CARET
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_COMMA
	TOKEN_EOF
)

// Token represents a single lexer token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset in the input
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%d, %q, %d)", t.Type, t.Literal, t.Pos)
}

// Lex tokenizes input. "**" is read as "^". Any character outside the
// expression alphabet is a *ParseError.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(input) {
		ch := input[i]

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			i++
			continue
		}

		switch ch {
		case '+':
			tokens = append(tokens, Token{Type: TOKEN_PLUS, Literal: "+", Pos: i})
			i++
		case '-':
			tokens = append(tokens, Token{Type: TOKEN_MINUS, Literal: "-", Pos: i})
			i++
		case '*':
			if i+1 < len(input) && input[i+1] == '*' {
				tokens = append(tokens, Token{Type: TOKEN_CARET, Literal: "**", Pos: i})
				i += 2
			} else {
				tokens = append(tokens, Token{Type: TOKEN_STAR, Literal: "*", Pos: i})
				i++
			}
		case '/':
			tokens = append(tokens, Token{Type: TOKEN_SLASH, Literal: "/", Pos: i})
			i++
		case '^':
			tokens = append(tokens, Token{Type: TOKEN_CARET, Literal: "^", Pos: i})
			i++
		case '(':
			tokens = append(tokens, Token{Type: TOKEN_LPAREN, Literal: "(", Pos: i})
			i++
		case ')':
			tokens = append(tokens, Token{Type: TOKEN_RPAREN, Literal: ")", Pos: i})
			i++
		case ',':
			tokens = append(tokens, Token{Type: TOKEN_COMMA, Literal: ",", Pos: i})
			i++
		default:
			switch {
			case isDigit(ch) || (ch == '.' && i+1 < len(input) && isDigit(input[i+1])):
				end := scanNumber(input, i)
				tokens = append(tokens, Token{Type: TOKEN_NUMBER, Literal: input[i:end], Pos: i})
				i = end
			case isWordStart(ch):
				start := i
				for i < len(input) && isWordContinue(input[i]) {
					i++
				}
				tokens = append(tokens, Token{Type: TOKEN_WORD, Literal: input[start:i], Pos: start})
			default:
				r, _ := utf8.DecodeRuneInString(input[i:])
				return nil, &ParseError{Input: input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
		}
	}
	tokens = append(tokens, Token{Type: TOKEN_EOF, Literal: "", Pos: i})
	return tokens, nil
}

// scanNumber returns the end of the numeric literal starting at pos:
// digits, an optional fraction and an optional exponent. The exponent is only
// consumed when digits follow it, so "2e" lexes as 2 followed by the word e.
func scanNumber(input string, pos int) int {
	i := pos
	for i < len(input) && isDigit(input[i]) {
		i++
	}
	if i < len(input) && input[i] == '.' {
		i++
		for i < len(input) && isDigit(input[i]) {
			i++
		}
	}
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		if j < len(input) && isDigit(input[j]) {
			for j < len(input) && isDigit(input[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isWordContinue(ch byte) bool {
	return isWordStart(ch) || isDigit(ch)
}

// IsIdentifier reports whether s is a valid variable name.
func IsIdentifier(s string) bool {
	if s == "" || !isWordStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isWordContinue(s[i]) {
			return false
		}
	}
	return true
}
