package derive

import "errors"

var (
	// ErrInvalidOrder is returned when the derivative order is outside [1, MaxOrder].
	ErrInvalidOrder = errors.New("derive: invalid derivative order")
	// ErrInvalidVariable is returned when the variable is not an identifier.
	ErrInvalidVariable = errors.New("derive: invalid variable name")
	// ErrNilExpression is returned when DeriveOrder is given no tree.
	ErrNilExpression = errors.New("derive: nil expression")
)
