package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Options are per-request extras.
type Options struct {
	// Headers are sent with exactly the given names, no canonicalisation.
	Headers map[string]string
	Query   url.Values
}

// FilePart is one file of a multipart upload.
type FilePart struct {
	Field       string
	Name        string
	ContentType string
	Reader      io.Reader
}

// Multipart is a multipart/form-data request body.
type Multipart struct {
	Files  []FilePart
	Fields map[string]string
}

// Transport is the request surface consumed by the session manager and the
// gateway. out may be nil to discard the body, or *json.RawMessage to keep it
// undecoded.
type Transport interface {
	Get(ctx context.Context, path string, opts *Options, out any) error
	Post(ctx context.Context, path string, body any, opts *Options, out any) error
	Put(ctx context.Context, path string, body any, opts *Options, out any) error
	Delete(ctx context.Context, path string, opts *Options, out any) error
	PostMultipart(ctx context.Context, path string, form Multipart, opts *Options, out any) error
}

// Client implements Transport over resty.
type Client struct {
	baseURL string
	http    *resty.Client
	log     logging.Logger
}

var _ Transport = (*Client)(nil)

type settings struct {
	timeout     time.Duration
	jar         http.CookieJar
	base        http.RoundTripper
	middlewares []Middleware
	log         logging.Logger
}

// Option customises a Client.
type Option func(*settings)

// WithTimeout bounds every request. Zero disables the client-side limit.
func WithTimeout(d time.Duration) Option { return func(s *settings) { s.timeout = d } }

// WithCookieJar shares jar with the transport so stored cookies travel with requests.
func WithCookieJar(jar http.CookieJar) Option { return func(s *settings) { s.jar = jar } }

// WithHTTPTransport replaces the innermost RoundTripper.
func WithHTTPTransport(rt http.RoundTripper) Option { return func(s *settings) { s.base = rt } }

// WithMiddleware appends middlewares; earlier ones see the request first.
func WithMiddleware(mws ...Middleware) Option {
	return func(s *settings) { s.middlewares = append(s.middlewares, mws...) }
}

func WithLogger(l logging.Logger) Option { return func(s *settings) { s.log = l } }

// New builds a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %w", common.ErrInvalidArgument, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute http(s)", common.ErrInvalidArgument, baseURL)
	}

	s := settings{timeout: defaultTimeout}
	for _, o := range opts {
		o(&s)
	}
	if s.log == nil {
		s.log = logging.NewDiscard()
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(s.timeout).
		SetLogger(restyLogger{log: s.log}).
		SetTransport(Chain(s.base, s.middlewares...)).
		SetHeader("Accept", "application/json")
	if s.jar != nil {
		rc.SetCookieJar(s.jar)
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: rc, log: s.log}, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, path string, opts *Options, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, opts, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts *Options, out any) error {
	return c.do(ctx, http.MethodPost, path, body, opts, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts *Options, out any) error {
	return c.do(ctx, http.MethodPut, path, body, opts, out)
}

func (c *Client) Delete(ctx context.Context, path string, opts *Options, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, opts, out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form Multipart, opts *Options, out any) error {
	req := c.request(ctx, opts)
	for _, f := range form.Files {
		if f.Reader == nil {
			return fmt.Errorf("%w: multipart file %q has no content", common.ErrInvalidArgument, f.Name)
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		req.SetMultipartField(f.Field, f.Name, ct, f.Reader)
	}
	if len(form.Fields) > 0 {
		req.SetMultipartFormData(form.Fields)
	}
	return c.send(req, http.MethodPost, path, out)
}

func (c *Client) request(ctx context.Context, opts *Options) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if opts == nil {
		return req
	}
	for k, v := range opts.Headers {
		req.SetHeaderVerbatim(k, v)
	}
	if len(opts.Query) > 0 {
		req.SetQueryParamsFromValues(opts.Query)
	}
	return req
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts *Options, out any) error {
	req := c.request(ctx, opts)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(raw)
	}
	return c.send(req, method, path, out)
}

func (c *Client) send(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return &Error{Method: method, Path: path, Err: errors.Join(common.ErrUnavailable, err)}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(body),
			Body:       body,
			Err:        StatusError(resp.StatusCode()),
		}
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
