package plot

import "errors"

// ErrInvalidRange is returned for empty, reversed or non-finite x ranges.
var ErrInvalidRange = errors.New("plot: invalid range")
