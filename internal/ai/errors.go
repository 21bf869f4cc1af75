package ai

import "errors"

// ErrUnavailable means the provider has no usable credentials or
// endpoint configured.
var ErrUnavailable = errors.New("embedding provider unavailable")
