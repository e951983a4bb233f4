package assessment

import "errors"

// ErrInvalidInput is returned when a bundle fails a structural precondition.
// No decision is produced for an invalid bundle.
var ErrInvalidInput = errors.New("invalid input")
