package strapitest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Token issues a credential for userID the same way a login would.
func (s *Server) Token(userID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenLocked(userID)
}

func (s *Server) tokenLocked(userID int) string {
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": s.now().Unix(),
		"exp": s.now().Add(s.tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) authResponse(w http.ResponseWriter, u *user) {
	writeJSON(w, http.StatusOK, map[string]any{"jwt": s.tokenLocked(u.ID), "user": u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Auth.form.error.invalid", "Invalid body.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[in.Identifier]
	if !ok || u.Password != in.Password {
		writeError(w, http.StatusBadRequest, "Auth.form.error.invalid", "Identifier or password invalid.")
		return
	}
	s.authResponse(w, u)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Auth.form.error.invalid", "Username and password are required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[in.Username]; taken {
		writeError(w, http.StatusBadRequest, "Auth.form.error.username.taken", "Username already taken")
		return
	}
	if _, taken := s.users[in.Email]; in.Email != "" && taken {
		writeError(w, http.StatusBadRequest, "Auth.form.error.email.taken", "Email is already taken.")
		return
	}
	s.addUserLocked(in.Username, in.Email, in.Password, "local")
	u := s.users[in.Username]
	if s.confirm {
		writeJSON(w, http.StatusOK, map[string]any{"user": u})
		return
	}
	s.authResponse(w, u)
}

func (s *Server) handleProviderCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	access := r.Header.Get("access_token")
	if access == "" {
		writeError(w, http.StatusBadRequest, "Auth.form.error.provider", "No access_token.")
		return
	}
	name := provider + "-" + access
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[name]
	if !ok {
		s.addUserLocked(name, "", "", provider)
		u = s.users[name]
	}
	s.authResponse(w, u)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeError(w, http.StatusBadRequest, "Auth.email.provide", "Please provide your email.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[in.Email]; !ok {
		writeError(w, http.StatusBadRequest, "Auth.form.error.user.not-exist", "This email does not exist.")
		return
	}
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	s.resetCodes[hex.EncodeToString(buf)] = in.Email
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Code                 string `json:"code"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"passwordConfirmation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Auth.form.error.params.provide", "Incorrect params provided.")
		return
	}
	if in.Password != in.PasswordConfirmation {
		writeError(w, http.StatusBadRequest, "Auth.form.error.password.matching", "Passwords do not match.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resetCodes[in.Code]
	if !ok {
		writeError(w, http.StatusBadRequest, "Auth.form.error.code.provide", "Incorrect code provided.")
		return
	}
	delete(s.resetCodes, in.Code)
	u := s.users[email]
	u.Password = in.Password
	s.authResponse(w, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(userIDKey{}).(int)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeError(w, http.StatusNotFound, "users.not-found", "User not found.")
}

type userIDKey struct{}

func withUserID(r *http.Request, id int) context.Context {
	return context.WithValue(r.Context(), userIDKey{}, id)
}

// requireAuth admits requests carrying a valid bearer credential.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerScheme+" ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Auth.unauthorized", "Missing or invalid credentials")
			return
		}
		id, err := s.userID(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Auth.unauthorized", "Invalid token.")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r, id)))
	})
}

func (s *Server) userID(raw string) (int, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, err
	}
	switch v := claims["id"].(type) {
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, errors.New("token carries no user id")
}
