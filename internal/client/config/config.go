package config

import (
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/client/kv"
	"github.com/dmitrijs2005/strapiclient/internal/client/tokenstore"
	"github.com/dmitrijs2005/strapiclient/internal/common"
)

// Config holds runtime settings for the strapiclient CLI.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	LogLevel       string
	Store          StoreConfig
}

// StoreConfig selects where the credential is persisted.
type StoreConfig struct {
	CookieEnabled bool
	CookieKey     string
	CookiePath    string
	CookieDomain  string
	CookieMaxAge  time.Duration
	CookieSecure  bool

	WebStorageEnabled bool
	WebStorageKey     string
	WebStorageDriver  string
	WebStorageDSN     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:1337"
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.Store = StoreConfig{
		CookieEnabled:     true,
		CookieKey:         common.DefaultStorageKey,
		CookiePath:        common.DefaultCookiePath,
		WebStorageEnabled: true,
		WebStorageKey:     common.DefaultStorageKey,
		WebStorageDriver:  kv.DriverSQLite,
		WebStorageDSN:     "strapiclient.db",
	}
}

// LoadConfig builds a Config from defaults, the environment, an optional
// config file and os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], envLookup(".env"))
}

// Load is LoadConfig with explicit arguments and environment.
func Load(args []string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TokenStoreConfig converts the store settings for tokenstore.FromConfig.
func (c *Config) TokenStoreConfig() tokenstore.Config {
	var out tokenstore.Config
	s := c.Store
	if s.CookieEnabled {
		out.Cookie = &tokenstore.CookieConfig{
			Key: s.CookieKey,
			Options: tokenstore.CookieOptions{
				Path:     s.CookiePath,
				Domain:   s.CookieDomain,
				MaxAge:   s.CookieMaxAge,
				Secure:   s.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			},
		}
	}
	if s.WebStorageEnabled {
		out.WebStorage = &tokenstore.WebStorageConfig{Key: s.WebStorageKey}
	}
	return out
}
