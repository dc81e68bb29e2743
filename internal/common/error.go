// Package common defines shared constants and sentinel errors used across
// the session, storage and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("server unavailable")
	ErrNotFound         = errors.New("not found")
	ErrUnexpectedStatus = errors.New("unexpected status")

	// Token errors.
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrNoTokenIssued  = errors.New("no token in authentication response")

	// Session errors.
	ErrSessionSuperseded = errors.New("session superseded by a later operation")

	// Storage errors (quota, permissions, closed or unreachable backend).
	ErrStorageUnavailable = errors.New("token storage unavailable")

	ErrInvalidArgument = errors.New("invalid argument")
)
