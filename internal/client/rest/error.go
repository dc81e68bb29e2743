package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/common"
)

// Error is a failed API call. Err is one of the common transport sentinels
// (possibly joined with the underlying network error) so callers can match
// with errors.Is.
type Error struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "rest error"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError classifies a status code into a transport sentinel.
func StatusError(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return common.ErrUnavailable
	default:
		return common.ErrUnexpectedStatus
	}
}

// StatusCode reports the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// errorBody covers both shapes the API uses for failures:
//
//	{"statusCode":400,"error":"Bad Request","message":"..."}
//	{"statusCode":400,"message":[{"messages":[{"id":"...","message":"..."}]}]}
//	{"data":null,"error":{"status":400,"name":"ValidationError","message":"..."}}
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// errorMessage extracts a human readable message from an error body.
// Unknown shapes yield "".
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := messageFrom(eb.Message); msg != "" {
		return msg
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(eb.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	var plain string
	if json.Unmarshal(eb.Error, &plain) == nil {
		return plain
	}
	return ""
}

func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var groups []struct {
		Messages []struct {
			Message string `json:"message"`
		} `json:"messages"`
	}
	if json.Unmarshal(raw, &groups) != nil {
		return ""
	}
	var msgs []string
	for _, g := range groups {
		for _, m := range g.Messages {
			if m.Message != "" {
				msgs = append(msgs, m.Message)
			}
		}
	}
	return strings.Join(msgs, "; ")
}
