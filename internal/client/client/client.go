package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/client/config"
	"github.com/dmitrijs2005/strapiclient/internal/client/gateway"
	"github.com/dmitrijs2005/strapiclient/internal/client/interceptor"
	"github.com/dmitrijs2005/strapiclient/internal/client/jwtx"
	"github.com/dmitrijs2005/strapiclient/internal/client/kv"
	"github.com/dmitrijs2005/strapiclient/internal/client/rest"
	"github.com/dmitrijs2005/strapiclient/internal/client/session"
	"github.com/dmitrijs2005/strapiclient/internal/client/tokenstore"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

// Options describe one client instance.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Store   tokenstore.Config

	// KV backs web storage. When nil and web storage is enabled, it is opened
	// from KVDriver and KVDSN and closed by Client.Close.
	KV       kv.Store
	KVDriver string
	KVDSN    string

	Logger        logging.Logger
	HTTPTransport http.RoundTripper
	Validator     *jwtx.Validator
}

// Client is a signed-in (or anonymous) view of one content API.
type Client struct {
	Session *session.Manager
	Gateway *gateway.Gateway
	Store   *tokenstore.Store

	kv      kv.Store
	ownsKV  bool
	log     logging.Logger
	baseURL string
}

// New builds a client. The caller must Close it.
func New(ctx context.Context, opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewDiscard()
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	jar, err := tokenstore.NewCookieJar()
	if err != nil {
		return nil, err
	}

	c := &Client{kv: opts.KV, log: log, baseURL: opts.BaseURL}
	if opts.Store.WebStorage != nil && c.kv == nil {
		store, err := kv.Open(ctx, opts.KVDriver, opts.KVDSN)
		if err != nil {
			return nil, fmt.Errorf("open %s kv: %w", opts.KVDriver, err)
		}
		c.kv, c.ownsKV = store, true
	}

	c.Store, err = tokenstore.FromConfig(opts.Store, tokenstore.Deps{Jar: jar, URL: base, KV: c.kv}, log.With("component", "tokenstore"))
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	ic := interceptor.New(interceptor.SourceFunc(func(ctx context.Context) (string, error) {
		return c.Session.Token(ctx)
	}), log.With("component", "interceptor"))

	rc, err := rest.New(opts.BaseURL,
		rest.WithTimeout(opts.Timeout),
		rest.WithCookieJar(jar),
		rest.WithHTTPTransport(opts.HTTPTransport),
		rest.WithLogger(log.With("component", "rest")),
		rest.WithMiddleware(rest.RequestID(), rest.Logging(log.With("component", "http")), ic.RoundTripper),
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Session = session.NewManager(c.Store, rc,
		session.WithBaseURL(rc.BaseURL()),
		session.WithValidator(opts.Validator),
		session.WithLogger(log.With("component", "session")),
	)
	c.Gateway = gateway.New(rc)

	log.Debug(ctx, "client ready", "base_url", opts.BaseURL, "backends", c.Store.Backends())
	return c, nil
}

// FromConfig builds a client from CLI configuration.
func FromConfig(ctx context.Context, cfg *config.Config, log logging.Logger) (*Client, error) {
	return New(ctx, Options{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.RequestTimeout,
		Store:    cfg.TokenStoreConfig(),
		KVDriver: cfg.Store.WebStorageDriver,
		KVDSN:    cfg.Store.WebStorageDSN,
		Logger:   log,
	})
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases the kv store if the client opened it.
func (c *Client) Close() error {
	if c.ownsKV && c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}
