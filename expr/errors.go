package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *ParseError.
	ErrSyntax = errors.New("expr: syntax error")
	// ErrUnknownFunction indicates a call to a function the Config does not define.
	ErrUnknownFunction = errors.New("expr: unknown function")
	// ErrArity indicates a known function called with the wrong number of arguments.
	ErrArity = errors.New("expr: wrong number of arguments")
	// ErrUnboundVariable indicates evaluation reached a variable with no binding.
	ErrUnboundVariable = errors.New("expr: unbound variable")
	// ErrMalformedNode indicates a node shape that cannot be evaluated or encoded.
	ErrMalformedNode = errors.New("expr: malformed node")
)

// ParseError reports malformed input. Pos is a byte offset into Input.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr: cannot parse %q at position %d: %s", e.Input, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }
