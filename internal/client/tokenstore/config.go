package tokenstore

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/common"
)

// Config declares which backends persist the credential. A nil field
// disables that backend; with both nil the store never holds anything.
type Config struct {
	Cookie     *CookieConfig
	WebStorage *WebStorageConfig
}

// CookieConfig keeps the credential in a cookie named Key.
type CookieConfig struct {
	Key     string
	Options CookieOptions
}

// CookieOptions mirror the attributes a browser cookie would carry.
// MaxAge of zero makes a session cookie.
type CookieOptions struct {
	Path     string
	Domain   string
	MaxAge   time.Duration
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// WebStorageConfig keeps the JSON-encoded credential under Key in a kv.Store.
type WebStorageConfig struct {
	Key string
}

// DefaultConfig enables both backends under "jwt", cookie scoped to "/".
func DefaultConfig() Config {
	return Config{
		Cookie: &CookieConfig{
			Key:     common.DefaultStorageKey,
			Options: CookieOptions{Path: common.DefaultCookiePath},
		},
		WebStorage: &WebStorageConfig{Key: common.DefaultStorageKey},
	}
}
