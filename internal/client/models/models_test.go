package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `42`, "42"},
		{"string", `"5f1a9c"`, "5f1a9c"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestFile_Decode(t *testing.T) {
	body := `{
		"id": 7, "name": "cat.png", "hash": "abc", "ext": ".png", "mime": "image/png",
		"size": 12.5, "url": "/uploads/cat.png", "provider": "local",
		"createdAt": "2020-05-01T10:00:00.000Z", "updatedAt": "2020-05-02T10:00:00.000Z",
		"related": [{"id": 1}]
	}`
	var f File
	require.NoError(t, json.Unmarshal([]byte(body), &f))

	assert.Equal(t, ID("7"), f.ID)
	assert.Equal(t, "cat.png", f.Name)
	assert.Equal(t, json.Number("12.5"), f.Size)
	assert.Equal(t, 2, f.UpdatedAt.Day())
	assert.Len(t, f.Related, 1)
}

func TestAuthentication_DecodeUser(t *testing.T) {
	var a Authentication
	require.NoError(t, json.Unmarshal([]byte(`{"jwt":"a.b.c","user":{"id":1,"username":"ann"}}`), &a))
	assert.Equal(t, "a.b.c", a.JWT)

	var u struct {
		Username string `json:"username"`
	}
	require.NoError(t, a.DecodeUser(&u))
	assert.Equal(t, "ann", u.Username)

	assert.Error(t, Authentication{}.DecodeUser(&u))
}

func TestProviderToken_HeadersKeepEmptyValues(t *testing.T) {
	h := ProviderToken{AccessToken: "tok"}.Headers()
	assert.Equal(t, map[string]string{"access_token": "tok", "code": "", "oauth_token": ""}, h)
}
