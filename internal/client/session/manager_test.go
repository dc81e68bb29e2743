package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/client/jwtx"
	"github.com/dmitrijs2005/strapiclient/internal/client/models"
	"github.com/dmitrijs2005/strapiclient/internal/client/rest"
	"github.com/dmitrijs2005/strapiclient/internal/client/tokenstore"
	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func mint(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1, "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func authBody(token string) string {
	b, _ := json.Marshal(map[string]any{"jwt": token, "user": map[string]any{"id": 1, "username": "ann"}})
	return string(b)
}

// ---- fake transport ----

type fakeTransport struct {
	mu sync.Mutex

	PostRet string
	PostErr error
	// PostFn, when set, replaces PostRet/PostErr.
	PostFn func(path string, body any) (string, error)

	GetRet string
	GetErr error

	Posts        int
	LastPostPath string
	LastPostBody any
	LastGetPath  string
	LastGetOpts  *rest.Options
}

func fill(body string, out any) error {
	if out == nil || body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeTransport) Get(_ context.Context, path string, opts *rest.Options, out any) error {
	f.mu.Lock()
	f.LastGetPath, f.LastGetOpts = path, opts
	ret, err := f.GetRet, f.GetErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return fill(ret, out)
}

func (f *fakeTransport) Post(_ context.Context, path string, body any, _ *rest.Options, out any) error {
	f.mu.Lock()
	f.Posts++
	f.LastPostPath, f.LastPostBody = path, body
	fn, ret, err := f.PostFn, f.PostRet, f.PostErr
	f.mu.Unlock()
	if fn != nil {
		ret, err = fn(path, body)
	}
	if err != nil {
		return err
	}
	return fill(ret, out)
}

func (f *fakeTransport) Put(context.Context, string, any, *rest.Options, any) error { return nil }

func (f *fakeTransport) Delete(context.Context, string, *rest.Options, any) error { return nil }

func (f *fakeTransport) PostMultipart(context.Context, string, rest.Multipart, *rest.Options, any) error {
	return nil
}

// ---- fake store ----

type brokenStore struct {
	ReadErr, WriteErr, ClearErr error
}

func (b *brokenStore) Read(context.Context) (string, error) { return "", b.ReadErr }
func (b *brokenStore) Write(context.Context, string) error  { return b.WriteErr }
func (b *brokenStore) Clear(context.Context) error          { return b.ClearErr }

func memStore() *tokenstore.Store {
	return tokenstore.New(nil, tokenstore.NewMemoryBackend())
}

// ---- tests ----

func TestLogin_StoresExactToken(t *testing.T) {
	ctx := context.Background()
	token := mint(t, time.Now().Add(time.Hour))
	tr := &fakeTransport{PostRet: authBody(token)}
	store := memStore()
	m := NewManager(store, tr)

	auth, err := m.Login(ctx, "ann@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, token, auth.JWT)
	assert.JSONEq(t, `{"id":1,"username":"ann"}`, string(auth.User))
	assert.Equal(t, "/auth/local", tr.LastPostPath)
	assert.Equal(t, map[string]string{"identifier": "ann@example.com", "password": "secret"}, tr.LastPostBody)

	stored, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	got, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, got)
	assert.True(t, m.IsAuthenticated(ctx))
}

func TestLogin_FailureLeavesStoreAbsent(t *testing.T) {
	ctx := context.Background()
	failure := &rest.Error{Method: "POST", Path: "/auth/local", StatusCode: 400, Err: common.ErrUnexpectedStatus}
	tr := &fakeTransport{PostErr: failure}
	store := memStore()
	m := NewManager(store, tr)

	_, err := m.Login(ctx, "ann", "wrong")
	require.ErrorIs(t, err, common.ErrUnexpectedStatus)
	var re *rest.Error
	require.ErrorAs(t, err, &re)
	assert.Same(t, failure, re, "transport failures propagate unchanged")

	got, _ := store.Read(ctx)
	assert.Empty(t, got)
	assert.False(t, m.IsAuthenticated(ctx))
}

func TestLogin_ClearsBeforeNetworkCall(t *testing.T) {
	ctx := context.Background()
	store := memStore()
	require.NoError(t, store.Write(ctx, "stale.token.value"))

	var seen string
	tr := &fakeTransport{PostFn: func(string, any) (string, error) {
		seen, _ = store.Read(ctx)
		return "", errors.New("offline")
	}}
	m := NewManager(store, tr)

	_, err := m.Login(ctx, "ann", "pw")
	require.Error(t, err)
	assert.Empty(t, seen, "stale credential must be gone before the request is sent")

	got, _ := store.Read(ctx)
	assert.Empty(t, got)
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	ctx := context.Background()
	store := memStore()
	m := NewManager(store, &fakeTransport{PostRet: `{"user":{"id":2,"confirmed":false}}`})

	auth, err := m.Register(ctx, map[string]string{"username": "bob", "email": "bob@example.com", "password": "pw"})
	require.ErrorIs(t, err, common.ErrNoTokenIssued)
	assert.JSONEq(t, `{"id":2,"confirmed":false}`, string(auth.User))

	got, _ := store.Read(ctx)
	assert.Empty(t, got)
}

func TestRegister_StoresToken(t *testing.T) {
	ctx := context.Background()
	token := mint(t, time.Now().Add(time.Hour))
	tr := &fakeTransport{PostRet: authBody(token)}
	m := NewManager(memStore(), tr)

	fields := map[string]string{"username": "bob", "email": "bob@example.com", "password": "pw"}
	_, err := m.Register(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, "/auth/local/register", tr.LastPostPath)
	assert.Equal(t, fields, tr.LastPostBody)

	got, _ := m.Token(ctx)
	assert.Equal(t, token, got)
}

func TestAuthenticateProvider_SendsHeadersVerbatim(t *testing.T) {
	ctx := context.Background()
	token := mint(t, time.Now().Add(time.Hour))
	tr := &fakeTransport{GetRet: authBody(token)}
	m := NewManager(memStore(), tr)

	_, err := m.AuthenticateProvider(ctx, models.ProviderGitHub, models.ProviderToken{AccessToken: "gh-token"})
	require.NoError(t, err)

	assert.Equal(t, "/auth/github/callback", tr.LastGetPath)
	require.NotNil(t, tr.LastGetOpts)
	assert.Equal(t, map[string]string{"access_token": "gh-token", "code": "", "oauth_token": ""}, tr.LastGetOpts.Headers)

	got, _ := m.Token(ctx)
	assert.Equal(t, token, got)

	_, err = m.AuthenticateProvider(ctx, "", models.ProviderToken{})
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestPasswordFlows_ReturnRawBodyAndNeverStore(t *testing.T) {
	ctx := context.Background()
	store := memStore()
	require.NoError(t, store.Write(ctx, "old.token.value"))
	tr := &fakeTransport{PostFn: func(path string, _ any) (string, error) {
		if path == "/auth/reset-password" {
			return authBody("issued.by.reset"), nil
		}
		return `{"ok":true}`, nil
	}}
	m := NewManager(store, tr)

	raw, err := m.ForgotPassword(ctx, "ann@example.com", "https://app.example.com/reset")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, "/auth/forgot-password", tr.LastPostPath)
	assert.Equal(t, map[string]string{"email": "ann@example.com", "url": "https://app.example.com/reset"}, tr.LastPostBody)

	got, _ := store.Read(ctx)
	assert.Empty(t, got, "forgot-password clears the credential")

	raw, err = m.ResetPassword(ctx, "code", "new", "new")
	require.NoError(t, err)
	assert.JSONEq(t, authBody("issued.by.reset"), string(raw))
	assert.Equal(t, map[string]string{"code": "code", "password": "new", "passwordConfirmation": "new"}, tr.LastPostBody)

	got, _ = store.Read(ctx)
	assert.Empty(t, got)
}

func TestPasswordFlows_PropagateFailure(t *testing.T) {
	boom := &rest.Error{StatusCode: 400, Err: common.ErrUnexpectedStatus}
	m := NewManager(memStore(), &fakeTransport{PostErr: boom})

	_, err := m.ForgotPassword(context.Background(), "x@example.com", "")
	assert.ErrorIs(t, err, boom)
	_, err = m.ResetPassword(context.Background(), "c", "a", "b")
	assert.ErrorIs(t, err, boom)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := memStore()
	require.NoError(t, store.Write(ctx, mint(t, time.Now().Add(time.Hour))))
	m := NewManager(store, &fakeTransport{})

	assert.True(t, m.Logout(ctx))
	got, _ := store.Read(ctx)
	assert.Empty(t, got)
	assert.False(t, m.IsAuthenticated(ctx))

	assert.True(t, m.Logout(ctx), "logging out twice is fine")
}

func TestLogout_FailureIsFalse(t *testing.T) {
	m := NewManager(&brokenStore{ClearErr: common.ErrStorageUnavailable}, &fakeTransport{})
	assert.False(t, m.Logout(context.Background()))
}

func TestFlow_ClearFailureAbortsBeforeNetwork(t *testing.T) {
	tr := &fakeTransport{PostRet: authBody("a.b.c")}
	m := NewManager(&brokenStore{ClearErr: common.ErrStorageUnavailable}, tr)

	_, err := m.Login(context.Background(), "ann", "pw")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.Zero(t, tr.Posts)
}

func TestFlow_WriteFailureSurfaces(t *testing.T) {
	tr := &fakeTransport{PostRet: authBody("a.b.c")}
	m := NewManager(&brokenStore{WriteErr: common.ErrStorageUnavailable}, tr)

	auth, err := m.Login(context.Background(), "ann", "pw")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.Equal(t, "a.b.c", auth.JWT)
}

func TestIsAuthenticated(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	v := jwtx.NewValidator(jwtx.WithClock(func() time.Time { return now }))

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"absent", "", false},
		{"one second ahead", mint(t, now.Add(time.Second)), true},
		{"one second ago", mint(t, now.Add(-time.Second)), false},
		{"exactly now", mint(t, now), false},
		{"malformed", "not-a-token", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memStore()
			require.NoError(t, store.Write(ctx, tt.token))
			m := NewManager(store, &fakeTransport{}, WithValidator(v))
			assert.Equal(t, tt.want, m.IsAuthenticated(ctx))
		})
	}

	m := NewManager(&brokenStore{ReadErr: common.ErrStorageUnavailable}, &fakeTransport{})
	assert.False(t, m.IsAuthenticated(ctx))
	_, err := m.Token(ctx)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestNoBackends_NeverAuthenticated(t *testing.T) {
	ctx := context.Background()
	store, err := tokenstore.FromConfig(tokenstore.Config{}, tokenstore.Deps{}, nil)
	require.NoError(t, err)
	token := mint(t, time.Now().Add(time.Hour))
	m := NewManager(store, &fakeTransport{PostRet: authBody(token)})

	_, err = m.Login(ctx, "ann", "pw")
	require.NoError(t, err)

	got, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, m.IsAuthenticated(ctx))
}

func TestCurrentUser(t *testing.T) {
	tr := &fakeTransport{GetRet: `{"id":1,"username":"ann"}`}
	m := NewManager(memStore(), tr)

	var me struct {
		Username string `json:"username"`
	}
	require.NoError(t, m.CurrentUser(context.Background(), &me))
	assert.Equal(t, "/users/me", tr.LastGetPath)
	assert.Equal(t, "ann", me.Username)
}

func TestProviderAuthenticationURL(t *testing.T) {
	m := NewManager(memStore(), &fakeTransport{}, WithBaseURL("http://localhost:1337/"))
	assert.Equal(t, "http://localhost:1337/connect/github", m.ProviderAuthenticationURL(models.ProviderGitHub))
	assert.Equal(t, "http://localhost:1337/connect/my%20idp", m.ProviderAuthenticationURL("my idp"))
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := memStore()
	tr := &fakeTransport{}
	m := NewManager(store, tr)

	restored := mint(t, time.Now().Add(time.Hour))
	require.NoError(t, m.Restore(ctx, restored))

	got, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, restored, got)
	assert.True(t, m.IsAuthenticated(ctx))

	stored, _ := store.Read(ctx)
	assert.Empty(t, stored, "restored credentials are never persisted")

	// A stored credential wins over the restored one.
	require.NoError(t, store.Write(ctx, "stored.token.value"))
	got, _ = m.Token(ctx)
	assert.Equal(t, "stored.token.value", got)
	require.NoError(t, store.Clear(ctx))

	assert.True(t, m.Logout(ctx))
	got, _ = m.Token(ctx)
	assert.Empty(t, got, "logout drops the restored credential")

	require.NoError(t, m.Restore(ctx, restored))
	tr.PostErr = errors.New("offline")
	_, _ = m.Login(ctx, "ann", "pw")
	got, _ = m.Token(ctx)
	assert.Empty(t, got, "every flow drops the restored credential")
}

func TestRestore_Rejects(t *testing.T) {
	m := NewManager(memStore(), &fakeTransport{})

	err := m.Restore(context.Background(), mint(t, time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, common.ErrTokenExpired)

	err = m.Restore(context.Background(), "abc.def.ghi")
	assert.ErrorIs(t, err, common.ErrMalformedToken)

	got, _ := m.Token(context.Background())
	assert.Empty(t, got)
}
