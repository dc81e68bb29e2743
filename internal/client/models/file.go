package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// ID is an entry identifier. The API emits numeric ids for SQL databases and
// string ids for document stores; both decode into the same type.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// File is an uploaded media record.
type File struct {
	ID        ID                `json:"id"`
	Name      string            `json:"name"`
	Hash      string            `json:"hash"`
	Sha256    string            `json:"sha256,omitempty"`
	Ext       string            `json:"ext"`
	Mime      string            `json:"mime"`
	Size      json.Number       `json:"size"`
	URL       string            `json:"url"`
	Provider  string            `json:"provider"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Related   []json.RawMessage `json:"related,omitempty"`
}
