// Package tokenstore decides where the credential lives between requests.
//
// A Store is an ordered list of backends. Writes and clears fan out to every
// backend; reads consult only the first one, so with both cookie and web
// storage configured the cookie is authoritative and web storage is a mirror.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/strapiclient/internal/client/kv"
	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

// Backend is one storage medium for the credential.
//
// Read returns "" when nothing usable is stored; unreadable payloads count as
// nothing. Clear on an empty backend succeeds.
type Backend interface {
	Name() string
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Store struct {
	backends []Backend
	log      logging.Logger
}

// New builds a store over backends in priority order.
func New(log logging.Logger, backends ...Backend) *Store {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Store{backends: backends, log: log}
}

// Deps are the collaborators FromConfig wires backends to.
type Deps struct {
	// Jar receives the credential cookie. It should be the same jar the HTTP
	// transport uses so the cookie travels with requests. Built when nil.
	Jar http.CookieJar
	// URL is the API base URL the cookie is scoped to.
	URL *url.URL
	// KV backs web storage. Required when web storage is enabled.
	KV kv.Store
}

// FromConfig builds the backends cfg enables, cookie first.
func FromConfig(cfg Config, deps Deps, log logging.Logger) (*Store, error) {
	var backends []Backend

	if cfg.Cookie != nil {
		jar := deps.Jar
		if jar == nil {
			var err error
			if jar, err = NewCookieJar(); err != nil {
				return nil, err
			}
		}
		b, err := NewCookieBackend(jar, deps.URL, *cfg.Cookie)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}

	if cfg.WebStorage != nil {
		if deps.KV == nil {
			return nil, fmt.Errorf("%w: web storage enabled without a kv store", common.ErrInvalidArgument)
		}
		backends = append(backends, NewWebStorageBackend(deps.KV, cfg.WebStorage.Key, log))
	}

	return New(log, backends...), nil
}

// Backends returns the configured backend names in priority order.
func (s *Store) Backends() []string {
	names := make([]string, 0, len(s.backends))
	for _, b := range s.backends {
		names = append(names, b.Name())
	}
	return names
}

// Read returns the credential held by the highest-priority backend, or "".
func (s *Store) Read(ctx context.Context) (string, error) {
	if len(s.backends) == 0 {
		return "", nil
	}
	b := s.backends[0]
	token, err := b.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", common.ErrStorageUnavailable, b.Name(), err)
	}
	return token, nil
}

// Write stores token in every backend, stopping at the first failure.
func (s *Store) Write(ctx context.Context, token string) error {
	for _, b := range s.backends {
		if err := b.Write(ctx, token); err != nil {
			return fmt.Errorf("%w: write %s: %w", common.ErrStorageUnavailable, b.Name(), err)
		}
		s.log.Debug(ctx, "token stored", "backend", b.Name())
	}
	return nil
}

// Clear removes the credential from every backend. All backends are attempted
// even if one fails; failures are joined.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, b := range s.backends {
		if err := b.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", b.Name(), err))
			continue
		}
		s.log.Debug(ctx, "token cleared", "backend", b.Name())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, errors.Join(errs...))
	}
	return nil
}
