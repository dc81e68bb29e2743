package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/client/gateway"
	"github.com/dmitrijs2005/strapiclient/internal/common"
)

// collectionQuery splits "collection k=v ..." into its parts.
func collectionQuery(args, usageLine string) (string, *gateway.Query, error) {
	f, err := argsN(args, 1, usageLine)
	if err != nil {
		return "", nil, err
	}
	q, err := gateway.ParseQuery(f[1:])
	if err != nil {
		return "", nil, err
	}
	return f[0], q, nil
}

// body returns inline JSON, or prompts for it.
func (a *App) body(inline string) (json.RawMessage, error) {
	text := strings.TrimSpace(inline)
	if text == "" {
		var err error
		if text, err = GetMultiline(a.reader, "Entry JSON:", a.out); err != nil {
			return nil, err
		}
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%w: entry body is not valid JSON", common.ErrInvalidArgument)
	}
	return json.RawMessage(text), nil
}

func (a *App) Entries(ctx context.Context, args string) error {
	collection, q, err := collectionQuery(args, "entries <collection> [key=value ...]")
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := a.client.Gateway.Entries(ctx, collection, q, &raw); err != nil {
		return err
	}
	a.printJSON(raw)
	return nil
}

func (a *App) Count(ctx context.Context, args string) error {
	collection, q, err := collectionQuery(args, "count <collection> [key=value ...]")
	if err != nil {
		return err
	}
	n, err := a.client.Gateway.EntryCount(ctx, collection, q)
	if err != nil {
		return err
	}
	a.println(n)
	return nil
}

func (a *App) Get(ctx context.Context, args string) error {
	f, err := argsN(args, 2, "get <collection> <id>")
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := a.client.Gateway.Entry(ctx, f[0], f[1], &raw); err != nil {
		return err
	}
	a.printJSON(raw)
	return nil
}

// Create takes "collection [json]".
func (a *App) Create(ctx context.Context, args string) error {
	collection, rest, _ := strings.Cut(args, " ")
	if collection == "" {
		return usage("create <collection> [json]")
	}
	data, err := a.body(rest)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := a.client.Gateway.CreateEntry(ctx, collection, data, nil, &raw); err != nil {
		return err
	}
	a.printJSON(raw)
	return nil
}

// Update takes "collection id [json]".
func (a *App) Update(ctx context.Context, args string) error {
	collection, rest, _ := strings.Cut(args, " ")
	id, rest, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if collection == "" || id == "" {
		return usage("update <collection> <id> [json]")
	}
	data, err := a.body(rest)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := a.client.Gateway.UpdateEntry(ctx, collection, id, data, nil, &raw); err != nil {
		return err
	}
	a.printJSON(raw)
	return nil
}

func (a *App) Delete(ctx context.Context, args string) error {
	f, err := argsN(args, 2, "delete <collection> <id>")
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := a.client.Gateway.DeleteEntry(ctx, f[0], f[1], &raw); err != nil {
		return err
	}
	a.println("Deleted", f[0]+"/"+f[1])
	return nil
}
