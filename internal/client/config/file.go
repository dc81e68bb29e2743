package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/flagx"
	"github.com/dmitrijs2005/strapiclient/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files. Absent
// fields leave the current value alone.
type FileConfig struct {
	BaseURL        string          `json:"base_url" yaml:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
	Store          struct {
		Cookie struct {
			Enabled *bool           `json:"enabled" yaml:"enabled"`
			Key     string          `json:"key" yaml:"key"`
			Path    string          `json:"path" yaml:"path"`
			Domain  string          `json:"domain" yaml:"domain"`
			MaxAge  *timex.Duration `json:"max_age" yaml:"max_age"`
			Secure  *bool           `json:"secure" yaml:"secure"`
		} `json:"cookie" yaml:"cookie"`
		WebStorage struct {
			Enabled *bool  `json:"enabled" yaml:"enabled"`
			Key     string `json:"key" yaml:"key"`
			Driver  string `json:"driver" yaml:"driver"`
			DSN     string `json:"dsn" yaml:"dsn"`
		} `json:"web_storage" yaml:"web_storage"`
	} `json:"store" yaml:"store"`
}

// parseFile overlays cfg with the file named by -c/-config in args, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.BaseURL, fc.BaseURL)
	set(&cfg.LogLevel, fc.LogLevel)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}

	c := fc.Store.Cookie
	if c.Enabled != nil {
		cfg.Store.CookieEnabled = *c.Enabled
	}
	set(&cfg.Store.CookieKey, c.Key)
	set(&cfg.Store.CookiePath, c.Path)
	set(&cfg.Store.CookieDomain, c.Domain)
	if c.MaxAge != nil {
		cfg.Store.CookieMaxAge = c.MaxAge.Duration
	}
	if c.Secure != nil {
		cfg.Store.CookieSecure = *c.Secure
	}

	w := fc.Store.WebStorage
	if w.Enabled != nil {
		cfg.Store.WebStorageEnabled = *w.Enabled
	}
	set(&cfg.Store.WebStorageKey, w.Key)
	set(&cfg.Store.WebStorageDriver, w.Driver)
	set(&cfg.Store.WebStorageDSN, w.DSN)
}
