package symbolic

import "errors"

var (
	// ErrNoDerivative is returned by Diff for a function outside the
	// derivative table that depends on the variable.
	ErrNoDerivative = errors.New("symbolic: no derivative known")
	// ErrUnsupported indicates a node the kernel cannot represent, such as a
	// non-finite constant or an unknown function of several arguments.
	ErrUnsupported = errors.New("symbolic: unsupported expression")
	// ErrInternal wraps a recovered kernel panic.
	ErrInternal = errors.New("symbolic: internal error")
)
