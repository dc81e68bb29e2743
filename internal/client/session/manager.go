package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/strapiclient/internal/client/jwtx"
	"github.com/dmitrijs2005/strapiclient/internal/client/models"
	"github.com/dmitrijs2005/strapiclient/internal/client/rest"
	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

// TokenStore persists the credential. tokenstore.Store implements it.
type TokenStore interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Manager struct {
	store     TokenStore
	transport rest.Transport
	validator *jwtx.Validator
	log       logging.Logger
	baseURL   string

	mu       sync.Mutex // guards epoch, restored and store mutations
	epoch    uint64
	restored string
}

type Option func(*Manager)

func WithValidator(v *jwtx.Validator) Option { return func(m *Manager) { m.validator = v } }

func WithLogger(l logging.Logger) Option { return func(m *Manager) { m.log = l } }

// WithBaseURL sets the API root used to build provider connect URLs.
func WithBaseURL(u string) Option { return func(m *Manager) { m.baseURL = strings.TrimRight(u, "/") } }

func NewManager(store TokenStore, transport rest.Transport, opts ...Option) *Manager {
	m := &Manager{store: store, transport: transport}
	for _, o := range opts {
		o(m)
	}
	if m.validator == nil {
		m.validator = jwtx.NewValidator()
	}
	if m.log == nil {
		m.log = logging.NewDiscard()
	}
	return m
}

// begin clears the credential and opens a new epoch.
func (m *Manager) begin(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.restored = ""
	if err := m.store.Clear(ctx); err != nil {
		return m.epoch, err
	}
	return m.epoch, nil
}

// commit persists token if epoch is still current.
func (m *Manager) commit(ctx context.Context, epoch uint64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return common.ErrSessionSuperseded
	}
	return m.store.Write(ctx, token)
}

// authenticate runs one credential-issuing flow.
func (m *Manager) authenticate(ctx context.Context, flow string, call func(out *models.Authentication) error) (models.Authentication, error) {
	var auth models.Authentication

	epoch, err := m.begin(ctx)
	if err != nil {
		return auth, fmt.Errorf("%s: clear credential: %w", flow, err)
	}

	if err := call(&auth); err != nil {
		m.log.Warn(ctx, "authentication failed", "flow", flow, "error", err)
		return auth, err
	}
	if auth.JWT == "" {
		m.log.Info(ctx, "authentication succeeded without a credential", "flow", flow)
		return auth, common.ErrNoTokenIssued
	}

	if err := m.commit(ctx, epoch, auth.JWT); err != nil {
		m.log.Warn(ctx, "credential not stored", "flow", flow, "error", err)
		return auth, err
	}
	m.log.Info(ctx, "authenticated", "flow", flow)
	return auth, nil
}

// Login authenticates with an identifier (username or e-mail) and password.
func (m *Manager) Login(ctx context.Context, identifier, password string) (models.Authentication, error) {
	return m.authenticate(ctx, "login", func(out *models.Authentication) error {
		body := map[string]string{"identifier": identifier, "password": password}
		return m.transport.Post(ctx, "/auth/local", body, nil, out)
	})
}

// Register creates an account from fields (username, email, password and any
// extra attributes the server accepts) and signs it in.
func (m *Manager) Register(ctx context.Context, fields any) (models.Authentication, error) {
	return m.authenticate(ctx, "register", func(out *models.Authentication) error {
		return m.transport.Post(ctx, "/auth/local/register", fields, nil, out)
	})
}

// AuthenticateProvider completes a third-party sign-in. The provider token
// fields travel as headers with their exact names.
func (m *Manager) AuthenticateProvider(ctx context.Context, provider models.Provider, token models.ProviderToken) (models.Authentication, error) {
	if provider == "" {
		return models.Authentication{}, fmt.Errorf("%w: provider is empty", common.ErrInvalidArgument)
	}
	return m.authenticate(ctx, "provider", func(out *models.Authentication) error {
		path := "/auth/" + url.PathEscape(string(provider)) + "/callback"
		return m.transport.Get(ctx, path, &rest.Options{Headers: token.Headers()}, out)
	})
}

// ForgotPassword asks the server to e-mail a reset link pointing at resetURL.
// The raw response body is returned.
func (m *Manager) ForgotPassword(ctx context.Context, email, resetURL string) (json.RawMessage, error) {
	return m.passwordFlow(ctx, "forgot-password", "/auth/forgot-password", map[string]string{
		"email": email,
		"url":   resetURL,
	})
}

// ResetPassword sets a new password using the code from the reset e-mail.
// The raw response body is returned; no credential is stored even if the
// server issues one.
func (m *Manager) ResetPassword(ctx context.Context, code, password, confirmation string) (json.RawMessage, error) {
	return m.passwordFlow(ctx, "reset-password", "/auth/reset-password", map[string]string{
		"code":                 code,
		"password":             password,
		"passwordConfirmation": confirmation,
	})
}

func (m *Manager) passwordFlow(ctx context.Context, flow, path string, body map[string]string) (json.RawMessage, error) {
	if _, err := m.begin(ctx); err != nil {
		return nil, fmt.Errorf("%s: clear credential: %w", flow, err)
	}
	var raw json.RawMessage
	if err := m.transport.Post(ctx, path, body, nil, &raw); err != nil {
		m.log.Warn(ctx, "password flow failed", "flow", flow, "error", err)
		return nil, err
	}
	return raw, nil
}

// Logout forgets the credential. It reports false, and logs, when a backend
// could not be cleared.
func (m *Manager) Logout(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.restored = ""
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error(ctx, "logout failed", "error", err)
		return false
	}
	m.log.Info(ctx, "logged out")
	return true
}

// Token returns the stored credential, or a restored one when nothing is
// stored, or "".
func (m *Manager) Token(ctx context.Context) (string, error) {
	token, err := m.store.Read(ctx)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restored, nil
}

// IsAuthenticated reports whether an unexpired credential is held.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	token, err := m.Token(ctx)
	if err != nil {
		m.log.Warn(ctx, "credential unreadable", "error", err)
		return false
	}
	return !m.validator.IsExpired(token)
}

// CurrentUser fetches the signed-in account into out.
func (m *Manager) CurrentUser(ctx context.Context, out any) error {
	return m.transport.Get(ctx, "/users/me", nil, out)
}

// ProviderAuthenticationURL is where a user starts a sign-in with provider.
func (m *Manager) ProviderAuthenticationURL(provider models.Provider) string {
	return m.baseURL + "/connect/" + url.PathEscape(string(provider))
}

// Restore adopts a credential obtained elsewhere for this process only. It is
// not persisted and is dropped by Logout and by the next flow.
func (m *Manager) Restore(ctx context.Context, token string) error {
	exp, err := m.validator.ExpiresAt(token)
	if err != nil {
		return err
	}
	if m.validator.IsExpired(token) {
		return fmt.Errorf("%w: expired at %s", common.ErrTokenExpired, exp.UTC().Format("2006-01-02T15:04:05Z"))
	}
	m.mu.Lock()
	m.restored = token
	m.mu.Unlock()
	m.log.Info(ctx, "credential restored", "expires_at", exp)
	return nil
}
