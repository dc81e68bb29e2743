package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture records the raw outgoing request header maps.
type capture struct {
	mu      sync.Mutex
	headers []http.Header
}

func (c *capture) middleware(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		c.mu.Lock()
		c.headers = append(c.headers, r.Header.Clone())
		c.mu.Unlock()
		return next.RoundTrip(r)
	})
}

func (c *capture) last() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headers[len(c.headers)-1]
}

func newClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:1337", "ftp://cms.example.com", "http://", "::"} {
		_, err := New(raw)
		assert.ErrorIs(t, err, common.ErrInvalidArgument, raw)
	}
}

func TestClient_GetDecodesAndSendsQuery(t *testing.T) {
	var gotPath, gotQuery string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id":1,"title":"hello"}]`))
	}))

	var out []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	err := c.Get(context.Background(), "/articles", &Options{Query: url.Values{"_limit": {"1"}, "title_contains": {"he"}}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/articles", gotPath)
	q, _ := url.ParseQuery(gotQuery)
	assert.Equal(t, "1", q.Get("_limit"))
	assert.Equal(t, "he", q.Get("title_contains"))
	require.Len(t, out, 1)
	assert.Equal(t, "hello", out[0].Title)
}

func TestClient_PostSendsJSON(t *testing.T) {
	var body map[string]string
	var ct string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))

	err := c.Post(context.Background(), "/auth/local", map[string]string{"identifier": "ann", "password": "pw"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", ct)
	assert.Equal(t, map[string]string{"identifier": "ann", "password": "pw"}, body)
}

func TestClient_HeadersAreSentVerbatim(t *testing.T) {
	cp := &capture{}
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), WithMiddleware(cp.middleware))

	headers := map[string]string{"access_token": "tok", "code": "", "oauth_token": ""}
	require.NoError(t, c.Get(context.Background(), "/auth/github/callback", &Options{Headers: headers}, nil))

	h := cp.last()
	for name, v := range headers {
		got, ok := h[name]
		require.True(t, ok, "header %q must keep its exact name", name)
		assert.Equal(t, []string{v}, got)
	}
}

func TestClient_RawMessageKeepsBody(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	var raw json.RawMessage
	require.NoError(t, c.Post(context.Background(), "/auth/forgot-password", map[string]string{}, nil, &raw))
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestClient_EmptyBodyDecodesToZero(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	var out map[string]any
	require.NoError(t, c.Delete(context.Background(), "/articles/1", nil, &out))
	assert.Nil(t, out)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, common.ErrUnauthorized},
		{http.StatusForbidden, common.ErrUnauthorized},
		{http.StatusNotFound, common.ErrNotFound},
		{http.StatusBadGateway, common.ErrUnavailable},
		{http.StatusServiceUnavailable, common.ErrUnavailable},
		{http.StatusGatewayTimeout, common.ErrUnavailable},
		{http.StatusBadRequest, common.ErrUnexpectedStatus},
		{http.StatusInternalServerError, common.ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"statusCode":0,"message":"boom"}`))
			}))

			err := c.Put(context.Background(), "/articles/1", map[string]int{"a": 1}, nil, nil)
			require.ErrorIs(t, err, tt.want)

			var re *Error
			require.True(t, errors.As(err, &re))
			assert.Equal(t, http.MethodPut, re.Method)
			assert.Equal(t, "/articles/1", re.Path)
			assert.Equal(t, tt.status, re.StatusCode)
			assert.Equal(t, "boom", re.Message)
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestClient_NetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/users/me", nil, nil)
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, 0, StatusCode(err))
}

func TestClient_CanceledContext(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/articles", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestClient_DecodeFailure(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	var out map[string]any
	err := c.Get(context.Background(), "/articles", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_SharesCookieJar(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("jwt"); err == nil {
			got = ck.Value
		}
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, _ := url.Parse(srv.URL)
	jar.SetCookies(u, []*http.Cookie{{Name: "jwt", Value: "a.b.c", Path: "/"}})

	c, err := New(srv.URL, WithCookieJar(jar))
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "/articles", nil, nil))
	assert.Equal(t, "a.b.c", got)
}

func TestClient_PostMultipart(t *testing.T) {
	type part struct{ field, name, content, ctype string }
	var parts []part
	var fields url.Values
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for field, hs := range r.MultipartForm.File {
			for _, h := range hs {
				f, _ := h.Open()
				b, _ := io.ReadAll(f)
				_ = f.Close()
				parts = append(parts, part{field, h.Filename, string(b), h.Header.Get("Content-Type")})
			}
		}
		fields = url.Values(r.MultipartForm.Value)
		_, _ = w.Write([]byte(`[{"id":3}]`))
	}))

	form := Multipart{
		Files:  []FilePart{{Field: "files", Name: "a.txt", ContentType: "text/plain", Reader: strings.NewReader("hello")}},
		Fields: map[string]string{"ref": "article", "refId": "1", "field": "cover"},
	}
	var out []map[string]int
	require.NoError(t, c.PostMultipart(context.Background(), "/upload", form, nil, &out))

	require.Len(t, parts, 1)
	assert.Equal(t, part{"files", "a.txt", "hello", "text/plain"}, parts[0])
	assert.Equal(t, "article", fields.Get("ref"))
	assert.Equal(t, "1", fields.Get("refId"))
	assert.Equal(t, "cover", fields.Get("field"))
	assert.Equal(t, 3, out[0]["id"])

	err := c.PostMultipart(context.Background(), "/upload", Multipart{Files: []FilePart{{Field: "files", Name: "x"}}}, nil, nil)
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain message", `{"statusCode":400,"error":"Bad Request","message":"Invalid"}`, "Invalid"},
		{"grouped messages", `{"message":[{"messages":[{"id":"a","message":"first"},{"id":"b","message":"second"}]}]}`, "first; second"},
		{"nested error", `{"data":null,"error":{"status":400,"name":"ValidationError","message":"Invalid identifier or password"}}`, "Invalid identifier or password"},
		{"error text only", `{"error":"Forbidden"}`, "Forbidden"},
		{"not json", `<html>`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}

func TestError_String(t *testing.T) {
	e := &Error{Method: "GET", Path: "/x", StatusCode: 404, Message: "Not Found", Err: common.ErrNotFound}
	assert.Equal(t, "GET /x: status 404: Not Found: not found", e.Error())
	assert.Equal(t, "rest error", (*Error)(nil).Error())
}
