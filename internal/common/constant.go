// Package common contains shared constants and sentinel errors used across
// strapiclient components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the credential inside the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName correlates client log lines with server logs.
const RequestIDHeaderName = "X-Request-ID"

// DefaultStorageKey is the cookie name and key-value entry used for the
// credential when the caller does not configure one.
const DefaultStorageKey = "jwt"

// DefaultCookiePath scopes the credential cookie when no path is configured.
const DefaultCookiePath = "/"
