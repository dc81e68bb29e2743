// Package gateway exposes generic operations on content collections and the
// upload plugin over an authenticated transport.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/dmitrijs2005/strapiclient/internal/client/models"
	"github.com/dmitrijs2005/strapiclient/internal/client/rest"
	"github.com/dmitrijs2005/strapiclient/internal/common"
)

type Gateway struct {
	t rest.Transport
}

func New(t rest.Transport) *Gateway { return &Gateway{t: t} }

func errInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{common.ErrInvalidArgument}, args...)...)
}

func collectionPath(collection string, segs ...string) (string, error) {
	if collection == "" {
		return "", errInvalid("collection name is empty")
	}
	p := "/" + url.PathEscape(collection)
	for _, seg := range segs {
		p += "/" + seg
	}
	return p, nil
}

func entryPath(collection, id string) (string, error) {
	if id == "" {
		return "", errInvalid("entry id is empty")
	}
	return collectionPath(collection, url.PathEscape(id))
}

func options(q *Query) *rest.Options {
	if q == nil {
		return nil
	}
	return &rest.Options{Query: q.Values()}
}

// Entries lists a collection into out.
func (g *Gateway) Entries(ctx context.Context, collection string, q *Query, out any) error {
	p, err := collectionPath(collection)
	if err != nil {
		return err
	}
	return g.t.Get(ctx, p, options(q), out)
}

// EntryCount counts the entries matching q.
func (g *Gateway) EntryCount(ctx context.Context, collection string, q *Query) (int, error) {
	p, err := collectionPath(collection, "count")
	if err != nil {
		return 0, err
	}
	var n int
	if err := g.t.Get(ctx, p, options(q), &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (g *Gateway) Entry(ctx context.Context, collection, id string, out any) error {
	p, err := entryPath(collection, id)
	if err != nil {
		return err
	}
	return g.t.Get(ctx, p, nil, out)
}

// CreateEntry posts data to the collection and decodes the created entry into out.
func (g *Gateway) CreateEntry(ctx context.Context, collection string, data any, q *Query, out any) error {
	p, err := collectionPath(collection)
	if err != nil {
		return err
	}
	return g.t.Post(ctx, p, data, options(q), out)
}

func (g *Gateway) UpdateEntry(ctx context.Context, collection, id string, data any, q *Query, out any) error {
	p, err := entryPath(collection, id)
	if err != nil {
		return err
	}
	return g.t.Put(ctx, p, data, options(q), out)
}

// DeleteEntry removes an entry; the server answers with the deleted record.
func (g *Gateway) DeleteEntry(ctx context.Context, collection, id string, out any) error {
	p, err := entryPath(collection, id)
	if err != nil {
		return err
	}
	return g.t.Delete(ctx, p, nil, out)
}

// SearchFiles finds uploaded files whose name or hash matches term.
func (g *Gateway) SearchFiles(ctx context.Context, term string) ([]models.File, error) {
	if term == "" {
		return nil, errInvalid("search term is empty")
	}
	var out []models.File
	if err := g.t.Get(ctx, "/upload/search/"+url.PathEscape(term), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) Files(ctx context.Context, q *Query) ([]models.File, error) {
	var out []models.File
	if err := g.t.Get(ctx, "/upload/files", options(q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) File(ctx context.Context, id string) (models.File, error) {
	var out models.File
	if id == "" {
		return out, errInvalid("file id is empty")
	}
	err := g.t.Get(ctx, "/upload/files/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UploadFile is one file to upload.
type UploadFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// UploadRequest uploads Files and optionally links them to an entry:
// Ref is the target model, RefID the entry id, Field the attribute name and
// Source the plugin owning the model, if any.
type UploadRequest struct {
	Files  []UploadFile
	Ref    string
	RefID  string
	Field  string
	Source string
}

// Upload sends the files as multipart/form-data under the "files" field.
func (g *Gateway) Upload(ctx context.Context, req UploadRequest) ([]models.File, error) {
	if len(req.Files) == 0 {
		return nil, errInvalid("nothing to upload")
	}
	if req.Ref != "" && (req.RefID == "" || req.Field == "") {
		return nil, errInvalid("linking to %q needs both refId and field", req.Ref)
	}

	form := rest.Multipart{Fields: map[string]string{}}
	for _, f := range req.Files {
		if f.Name == "" || f.Reader == nil {
			return nil, errInvalid("upload file needs a name and content")
		}
		form.Files = append(form.Files, rest.FilePart{Field: "files", Name: f.Name, ContentType: f.ContentType, Reader: f.Reader})
	}
	for k, v := range map[string]string{"ref": req.Ref, "refId": req.RefID, "field": req.Field, "source": req.Source} {
		if v != "" {
			form.Fields[k] = v
		}
	}

	var out []models.File
	if err := g.t.PostMultipart(ctx, "/upload", form, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntries lists a collection as []T.
func GetEntries[T any](ctx context.Context, g *Gateway, collection string, q *Query) ([]T, error) {
	var out []T
	if err := g.Entries(ctx, collection, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntry fetches one entry as T.
func GetEntry[T any](ctx context.Context, g *Gateway, collection, id string) (T, error) {
	var out T
	err := g.Entry(ctx, collection, id, &out)
	return out, err
}
