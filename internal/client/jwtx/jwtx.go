// Package jwtx answers "is the stored credential still usable?" locally,
// without a round-trip to the server.
//
// Only the payload segment is decoded; the signature is never checked. This is
// an offline expiry hint, not a trust decision: the server verifies the token
// on every protected request and may still reject it (e.g. after revocation).
package jwtx

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode splits a compact token into its three segments and returns the
// claims carried by the payload. Errors wrap common.ErrMalformedToken.
func Decode(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", common.ErrMalformedToken, len(parts))
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base64url: %v", common.ErrMalformedToken, err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not a claim set: %v", common.ErrMalformedToken, err)
	}
	return claims, nil
}

// Validator checks token expiry against a clock, allowing an optional leeway
// that treats tokens about to expire as already expired.
type Validator struct {
	now    func() time.Time
	leeway time.Duration
}

type Option func(*Validator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLeeway expires tokens d before their exp claim.
func WithLeeway(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.leeway = d
		}
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ExpiresAt returns the instant carried by the exp claim.
func (v *Validator) ExpiresAt(token string) (time.Time, error) {
	claims, err := Decode(token)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", common.ErrMalformedToken)
	}
	return exp.Time, nil
}

// IsExpired reports true for empty or undecodable tokens, tokens without a
// numeric exp claim, and tokens whose exp is at or before now. It never fails.
func (v *Validator) IsExpired(token string) bool {
	if token == "" {
		return true
	}
	exp, err := v.ExpiresAt(token)
	if err != nil {
		return true
	}
	return !exp.After(v.now().Add(v.leeway))
}

var defaultValidator = NewValidator()

// IsExpired checks token against the wall clock with no leeway.
func IsExpired(token string) bool {
	return defaultValidator.IsExpired(token)
}
