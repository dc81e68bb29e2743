package tokenstore

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"golang.org/x/net/publicsuffix"
)

// NewCookieJar returns an in-memory jar with public-suffix aware domain rules.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return jar, nil
}

// CookieBackend keeps the credential as a cookie in a jar, scoped to the API
// origin and the configured path.
type CookieBackend struct {
	jar  http.CookieJar
	u    *url.URL
	key  string
	opts CookieOptions
}

var _ Backend = (*CookieBackend)(nil)

func NewCookieBackend(jar http.CookieJar, origin *url.URL, cfg CookieConfig) (*CookieBackend, error) {
	if jar == nil {
		return nil, fmt.Errorf("%w: cookie jar is nil", common.ErrInvalidArgument)
	}
	if origin == nil || (origin.Scheme != "http" && origin.Scheme != "https") || origin.Host == "" {
		return nil, fmt.Errorf("%w: cookie backend needs an http(s) origin, got %v", common.ErrInvalidArgument, origin)
	}
	if cfg.Key == "" {
		cfg.Key = common.DefaultStorageKey
	}
	if cfg.Options.Path == "" {
		cfg.Options.Path = common.DefaultCookiePath
	}

	// The jar only hands back cookies whose path matches the request URL.
	u := &url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: cfg.Options.Path}
	return &CookieBackend{jar: jar, u: u, key: cfg.Key, opts: cfg.Options}, nil
}

func (c *CookieBackend) Name() string { return "cookie" }

func (c *CookieBackend) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     c.key,
		Value:    value,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   int(c.opts.MaxAge.Seconds()),
		Secure:   c.opts.Secure,
		HttpOnly: c.opts.HTTPOnly,
		SameSite: c.opts.SameSite,
	}
}

func (c *CookieBackend) Read(_ context.Context) (string, error) {
	for _, ck := range c.jar.Cookies(c.u) {
		if ck.Name == c.key {
			return ck.Value, nil
		}
	}
	return "", nil
}

func (c *CookieBackend) Write(_ context.Context, token string) error {
	c.jar.SetCookies(c.u, []*http.Cookie{c.cookie(token)})
	return nil
}

func (c *CookieBackend) Clear(_ context.Context) error {
	expired := c.cookie("")
	expired.MaxAge = -1
	c.jar.SetCookies(c.u, []*http.Cookie{expired})
	return nil
}
