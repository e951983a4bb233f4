package feasibility

import "errors"

// ErrNoProviders is returned by Assess when no assessment provider is
// registered; an empty bundle would otherwise read as a clean GO.
var ErrNoProviders = errors.New("no assessment providers registered")
