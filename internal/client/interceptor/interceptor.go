// Package interceptor attaches the current credential to outgoing requests.
package interceptor

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

// TokenSource yields the credential to attach, or "" for none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to TokenSource.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Handler forwards a request down the pipeline.
type Handler func(*http.Request) (*http.Response, error)

type Interceptor struct {
	src TokenSource
	log logging.Logger
}

func New(src TokenSource, log logging.Logger) *Interceptor {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Interceptor{src: src, log: log}
}

// Apply returns req with "Authorization: Bearer <token>" when a credential is
// held, otherwise req itself. req is never modified; a header already present
// on req is replaced on the copy.
func (i *Interceptor) Apply(req *http.Request) *http.Request {
	ctx := req.Context()
	token, err := i.src.Token(ctx)
	if err != nil {
		i.log.Warn(ctx, "credential unavailable, sending request without it", "path", req.URL.Path, "error", err)
		return req
	}
	if token == "" {
		return req
	}
	out := req.Clone(ctx)
	out.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	return out
}

// Intercept forwards the possibly decorated request to next. It never
// short-circuits.
func (i *Interceptor) Intercept(req *http.Request, next Handler) (*http.Response, error) {
	return next(i.Apply(req))
}

// RoundTripper installs the interceptor in front of next.
func (i *Interceptor) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripper{i: i, next: next}
}

type roundTripper struct {
	i    *Interceptor
	next http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.i.Intercept(req, rt.next.RoundTrip)
}
