package bus

import "errors"

// ErrClosed is returned by Invoke and Subscribe after Close.
var ErrClosed = errors.New("event bus closed")
