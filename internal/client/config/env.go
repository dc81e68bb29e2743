package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// envLookup reads the process environment, falling back to dotenvPath.
// A missing dotenv file is not an error.
func envLookup(dotenvPath string) LookupFunc {
	file, err := godotenv.Read(dotenvPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "ignoring %s: %v\n", dotenvPath, err)
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
}

// MapLookup serves variables from m.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func parseEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("STRAPI_BASE_URL", &cfg.BaseURL)
	str("STRAPI_LOG_LEVEL", &cfg.LogLevel)
	str("STRAPI_COOKIE_KEY", &cfg.Store.CookieKey)
	str("STRAPI_COOKIE_PATH", &cfg.Store.CookiePath)
	str("STRAPI_COOKIE_DOMAIN", &cfg.Store.CookieDomain)
	str("STRAPI_WEBSTORAGE_KEY", &cfg.Store.WebStorageKey)
	str("STRAPI_KV_DRIVER", &cfg.Store.WebStorageDriver)
	str("STRAPI_KV_DSN", &cfg.Store.WebStorageDSN)

	return errors.Join(
		duration("STRAPI_REQUEST_TIMEOUT", &cfg.RequestTimeout),
		duration("STRAPI_COOKIE_MAX_AGE", &cfg.Store.CookieMaxAge),
		boolean("STRAPI_COOKIE_ENABLED", &cfg.Store.CookieEnabled),
		boolean("STRAPI_COOKIE_SECURE", &cfg.Store.CookieSecure),
		boolean("STRAPI_WEBSTORAGE_ENABLED", &cfg.Store.WebStorageEnabled),
	)
}
