package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/strapiclient/internal/client/client"
	"github.com/dmitrijs2005/strapiclient/internal/client/config"
	"github.com/dmitrijs2005/strapiclient/internal/client/jwtx"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

type App struct {
	client    *client.Client
	validator *jwtx.Validator
	log       logging.Logger
	userName  string
	reader    *bufio.Reader
	out       io.Writer
}

// NewApp builds the client described by c. The returned App owns it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	cl, err := client.FromConfig(ctx, c, log)
	if err != nil {
		return nil, err
	}
	return newApp(cl, log, os.Stdin, os.Stdout), nil
}

func newApp(cl *client.Client, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &App{
		client:    cl,
		validator: jwtx.NewValidator(),
		log:       log,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run greets the user, reports any session restored from storage and runs
// the REPL until exit.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.client.Close(); err != nil {
			a.log.Warn(ctx, "closing client", "error", err)
		}
	}()

	a.println("strapiclient connected to", a.client.BaseURL(), "(type 'help' for commands)")
	if a.isLoggedIn() {
		_ = a.Status(ctx, "")
	}
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.client.Session.IsAuthenticated(context.Background())
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(anonymous)"
	}
	if a.userName != "" {
		return "(" + a.userName + ")"
	}
	return "(signed in)"
}
