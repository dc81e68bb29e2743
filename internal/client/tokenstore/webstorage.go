package tokenstore

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/strapiclient/internal/client/kv"
	"github.com/dmitrijs2005/strapiclient/internal/common"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

// WebStorageBackend keeps the credential JSON-encoded (a quoted string) under
// a key of a persistent kv.Store.
type WebStorageBackend struct {
	kv  kv.Store
	key string
	log logging.Logger
}

var _ Backend = (*WebStorageBackend)(nil)

func NewWebStorageBackend(store kv.Store, key string, log logging.Logger) *WebStorageBackend {
	if key == "" {
		key = common.DefaultStorageKey
	}
	if log == nil {
		log = logging.NewDiscard()
	}
	return &WebStorageBackend{kv: store, key: key, log: log}
}

func (w *WebStorageBackend) Name() string { return "webStorage" }

func (w *WebStorageBackend) Read(ctx context.Context) (string, error) {
	raw, err := w.kv.Get(ctx, w.key)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", nil
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		w.log.Warn(ctx, "ignoring unreadable stored token", "key", w.key, "error", err)
		return "", nil
	}
	return token, nil
}

func (w *WebStorageBackend) Write(ctx context.Context, token string) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return w.kv.Set(ctx, w.key, raw)
}

func (w *WebStorageBackend) Clear(ctx context.Context) error {
	return w.kv.Delete(ctx, w.key)
}
