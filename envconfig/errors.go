package envconfig

import "errors"

// ErrInvalidConfig is wrapped by every configuration validation failure,
// so callers can distinguish a rejected setup from a resource-exhaustion
// fatal with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")
