// Package strapitest runs an in-process content API for tests.
//
// It speaks the subset of the API the client uses: local and provider
// authentication, password reset, /users/me, generic collections with the
// filter/sort/pagination parameters, and the upload plugin routes. Issued
// credentials are HS256 tokens carrying the user id and an exp claim.
package strapitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Request is a request as the server saw it.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
}

type user struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
	Password string `json:"-"`
}

type failure struct {
	status int
	body   string
}

// Server is a fake content API. All exported methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	secret      []byte
	tokenTTL    time.Duration
	now         func() time.Time
	confirm     bool
	nextID      int
	users       map[string]*user // by username and by email
	collections map[string]map[string]map[string]any
	order       map[string][]string
	files       []file
	resetCodes  map[string]string // code -> email
	requests    []Request
	failures    map[string]failure // "METHOD path" -> one-shot failure
}

// Option configures a Server.
type Option func(*Server)

// WithTokenTTL sets the lifetime of issued credentials. Negative values issue
// already-expired tokens.
func WithTokenTTL(d time.Duration) Option { return func(s *Server) { s.tokenTTL = d } }

// WithEmailConfirmation makes registration succeed without issuing a credential.
func WithEmailConfirmation() Option { return func(s *Server) { s.confirm = true } }

// WithClock overrides the server clock used for exp claims.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New starts a server and registers its shutdown with t.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		secret:      []byte("strapitest-secret"),
		tokenTTL:    time.Hour,
		now:         time.Now,
		nextID:      1,
		users:       map[string]*user{},
		collections: map[string]map[string]map[string]any{},
		order:       map[string][]string{},
		resetCodes:  map[string]string{},
		failures:    map[string]failure{},
	}
	for _, o := range opts {
		o(s)
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/local", s.handleLogin)
		r.Post("/local/register", s.handleRegister)
		r.Get("/{provider}/callback", s.handleProviderCallback)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)
	})
	r.With(s.requireAuth).Get("/users/me", s.handleMe)

	r.Route("/upload", func(r chi.Router) {
		r.With(s.requireAuth).Post("/", s.handleUpload)
		r.Get("/files", s.handleFiles)
		r.Get("/files/{id}", s.handleFile)
		r.Get("/search/{query}", s.handleSearchFiles)
	})

	r.Route("/{collection}", func(r chi.Router) {
		r.Get("/", s.handleEntries)
		r.Get("/count", s.handleEntryCount)
		r.Get("/{id}", s.handleEntry)
		r.With(s.requireAuth).Post("/", s.handleCreateEntry)
		r.With(s.requireAuth).Put("/{id}", s.handleUpdateEntry)
		r.With(s.requireAuth).Delete("/{id}", s.handleDeleteEntry)
	})
	return r
}

// AddUser registers an account that can log in with either username or email.
func (s *Server) AddUser(username, email, password string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password, "local")
}

func (s *Server) addUserLocked(username, email, password, provider string) int {
	u := &user{ID: s.nextID, Username: username, Email: email, Password: password, Provider: provider}
	s.nextID++
	s.users[username] = u
	if email != "" {
		s.users[email] = u
	}
	return u.ID
}

// FailNext makes the next request matching method and path answer status
// with body (JSON) instead of being handled.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or a zero Request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// ResetCode returns the code a forgot-password call issued for email.
func (s *Server) ResetCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, e := range s.resetCodes {
		if e == email {
			return code
		}
	}
	return ""
}

// Seed stores entries in collection as if they had been created through the API.
func (s *Server) Seed(collection string, entries ...map[string]any) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, s.insertLocked(collection, e))
	}
	return ids
}

func (s *Server) insertLocked(collection string, e map[string]any) string {
	c, ok := s.collections[collection]
	if !ok {
		c = map[string]map[string]any{}
		s.collections[collection] = c
	}
	id := s.nextID
	s.nextID++
	entry := make(map[string]any, len(e)+1)
	for k, v := range e {
		entry[k] = v
	}
	entry["id"] = id
	key := strconv.Itoa(id)
	c[key] = entry
	s.order[collection] = append(s.order[collection], key)
	return key
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}
