package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
	"github.com/google/uuid"
)

// Middleware decorates a RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base so that the first middleware sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			base = mws[i](base)
		}
	}
	return base
}

// RequestID stamps every request without one with a fresh X-Request-ID.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(common.RequestIDHeaderName) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}

// Logging records one line per round trip. Headers are never logged.
func Logging(log logging.Logger) Middleware {
	if log == nil {
		log = logging.NewDiscard()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", r.Header.Get(common.RequestIDHeaderName),
				"duration", time.Since(start),
			}
			if err != nil {
				log.Warn(r.Context(), "request failed", append(args, "error", err)...)
				return resp, err
			}
			log.Debug(r.Context(), "request done", append(args, "status", resp.StatusCode)...)
			return resp, nil
		})
	}
}
