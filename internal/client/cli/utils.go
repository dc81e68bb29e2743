package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/common"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// printJSON pretty-prints raw, falling back to the bytes as received.
func (a *App) printJSON(raw []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		a.println(string(raw))
		return
	}
	a.println(buf.String())
}

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: usage: "+format, append([]any{common.ErrInvalidArgument}, args...)...)
}

// argsN splits args into at least n words.
func argsN(args string, n int, usageLine string) ([]string, error) {
	f := strings.Fields(args)
	if len(f) < n {
		return nil, usage("%s", usageLine)
	}
	return f, nil
}

// prompt returns def when set, otherwise asks for a line.
func (a *App) prompt(def, question string) (string, error) {
	if def != "" {
		return def, nil
	}
	v, err := GetSimpleText(a.reader, question, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", common.ErrInvalidArgument, strings.TrimSuffix(question, ":")+" is required")
	}
	return v, nil
}
