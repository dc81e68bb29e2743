package kv

import "errors"

// ErrInvalidDSN is returned when a driver cannot make sense of its dsn.
var ErrInvalidDSN = errors.New("invalid kv dsn")
