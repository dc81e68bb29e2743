package strapitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type file struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Ext       string    `json:"ext"`
	Mime      string    `json:"mime"`
	Size      float64   `json:"size"`
	URL       string    `json:"url"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Related   []any     `json:"related"`
}

func (s *Server) listLocked(collection string, q map[string][]string) ([]map[string]any, error) {
	c := s.collections[collection]
	var out []map[string]any
	for _, id := range s.order[collection] {
		e, ok := c[id]
		if !ok {
			continue
		}
		if matches(e, q) {
			out = append(out, e)
		}
	}

	if v := first(q, "_sort"); v != "" {
		field, dir, _ := strings.Cut(v, ":")
		desc := strings.EqualFold(dir, "DESC")
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][field], out[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	start, err := intParam(q, "_start", 0)
	if err != nil {
		return nil, err
	}
	limit, err := intParam(q, "_limit", 100)
	if err != nil {
		return nil, err
	}
	if start > len(out) {
		start = len(out)
	}
	out = out[start:]
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.listLocked(chi.URLParam(r, "collection"), r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "query.invalid", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEntryCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Del("_start")
	q.Del("_limit")
	q.Set("_limit", "-1")
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.listLocked(chi.URLParam(r, "collection"), q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "query.invalid", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, len(out))
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.collections[chi.URLParam(r, "collection")][chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "entry.notFound", "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "entry.invalid", "Invalid body.")
		return
	}
	collection := chi.URLParam(r, "collection")
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.insertLocked(collection, in)
	writeJSON(w, http.StatusOK, s.collections[collection][id])
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "entry.invalid", "Invalid body.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.collections[chi.URLParam(r, "collection")][chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "entry.notFound", "Not Found")
		return
	}
	for k, v := range in {
		if k != "id" {
			e[k] = v
		}
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.collections[collection][id]
	if !ok {
		writeError(w, http.StatusNotFound, "entry.notFound", "Not Found")
		return
	}
	delete(s.collections[collection], id)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "upload.invalid", err.Error())
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "upload.empty", "Files are empty")
		return
	}
	var related []any
	if ref := r.FormValue("ref"); ref != "" {
		related = append(related, map[string]any{"ref": ref, "refId": r.FormValue("refId"), "field": r.FormValue("field")})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]file, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "upload.invalid", err.Error())
			return
		}
		n, _ := io.Copy(io.Discard, f)
		_ = f.Close()

		now := s.now().UTC()
		ext := ""
		if i := strings.LastIndex(h.Filename, "."); i >= 0 {
			ext = h.Filename[i:]
		}
		rec := file{
			ID:        s.nextID,
			Name:      h.Filename,
			Hash:      fmt.Sprintf("h%d", s.nextID),
			Ext:       ext,
			Mime:      h.Header.Get("Content-Type"),
			Size:      float64(n) / 1000,
			URL:       fmt.Sprintf("/uploads/h%d%s", s.nextID, ext),
			Provider:  "local",
			CreatedAt: now,
			UpdatedAt: now,
			Related:   related,
		}
		s.nextID++
		s.files = append(s.files, rec)
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]file, 0, len(s.files))
	for _, f := range s.files {
		if v := r.URL.Query().Get("mime"); v != "" && f.Mime != v {
			continue
		}
		out = append(out, f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if strconv.Itoa(f.ID) == id {
			writeJSON(w, http.StatusOK, f)
			return
		}
	}
	writeError(w, http.StatusNotFound, "file.notFound", "file.notFound")
}

func (s *Server) handleSearchFiles(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(chi.URLParam(r, "query"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []file{}
	for _, f := range s.files {
		if strings.Contains(strings.ToLower(f.Name), query) || strings.Contains(f.Hash, query) {
			out = append(out, f)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// matches applies <field>, <field>_ne, <field>_contains, <field>_in, <field>_lt
// and <field>_gt filters. Parameters starting with "_" are not filters.
func matches(e map[string]any, q map[string][]string) bool {
	for key, vals := range q {
		if strings.HasPrefix(key, "_") || len(vals) == 0 {
			continue
		}
		field, op := key, "eq"
		if i := strings.LastIndex(key, "_"); i > 0 {
			switch key[i+1:] {
			case "eq", "ne", "contains", "in", "lt", "gt", "lte", "gte":
				field, op = key[:i], key[i+1:]
			}
		}
		got := fmt.Sprint(e[field])
		switch op {
		case "eq":
			if got != vals[0] {
				return false
			}
		case "ne":
			if got == vals[0] {
				return false
			}
		case "contains":
			if !strings.Contains(strings.ToLower(got), strings.ToLower(vals[0])) {
				return false
			}
		case "in":
			found := false
			for _, v := range vals {
				found = found || got == v
			}
			if !found {
				return false
			}
		default:
			c := compare(e[field], vals[0])
			if (op == "lt" && c >= 0) || (op == "gt" && c <= 0) || (op == "lte" && c > 0) || (op == "gte" && c < 0) {
				return false
			}
		}
	}
	return true
}

func compare(a, b any) int {
	af, aerr := strconv.ParseFloat(fmt.Sprint(a), 64)
	bf, berr := strconv.ParseFloat(fmt.Sprint(b), 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func first(q map[string][]string, key string) string {
	if v := q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func intParam(q map[string][]string, key string, def int) (int, error) {
	v := first(q, key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers in the v3 error shape.
func writeError(w http.ResponseWriter, status int, id, message string) {
	writeJSON(w, status, map[string]any{
		"statusCode": status,
		"error":      http.StatusText(status),
		"message":    []any{map[string]any{"messages": []any{map[string]any{"id": id, "message": message}}}},
	})
}
