package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
// Every command receives the rest of the input line, untrimmed of inner spaces,
// so JSON bodies survive intact.
type execIface interface {
	isLoggedIn() bool

	Login(ctx context.Context, args string) error
	Register(ctx context.Context, args string) error
	Logout(ctx context.Context, args string) error
	Status(ctx context.Context, args string) error
	Me(ctx context.Context, args string) error
	Forgot(ctx context.Context, args string) error
	Reset(ctx context.Context, args string) error
	ProviderURL(ctx context.Context, args string) error
	ProviderLogin(ctx context.Context, args string) error
	Restore(ctx context.Context, args string) error

	Entries(ctx context.Context, args string) error
	Count(ctx context.Context, args string) error
	Get(ctx context.Context, args string) error
	Create(ctx context.Context, args string) error
	Update(ctx context.Context, args string) error
	Delete(ctx context.Context, args string) error

	Files(ctx context.Context, args string) error
	File(ctx context.Context, args string) error
	Search(ctx context.Context, args string) error
	Upload(ctx context.Context, args string) error
}

const helpAnonymous = `Available commands:
  login [identifier]               sign in with a password
  register                         create an account
  provider-url <provider>          print the third-party sign-in URL
  provider-login <provider> <tok>  finish a third-party sign-in
  forgot <email> [reset-url]       request a password reset e-mail
  reset <code>                     set a new password
  restore <token>                  use a credential for this session only
  entries <collection> [k=v ...]   list entries
  count <collection> [k=v ...]     count entries
  get <collection> <id>            show one entry
  files [k=v ...] | file <id> | search <term>
  status | help | exit`

const helpSignedIn = `Available commands:
  me | status | logout
  entries <collection> [k=v ...]   list entries (e.g. title_contains=go _sort=id:DESC _limit=5)
  count <collection> [k=v ...]     count entries
  get <collection> <id>            show one entry
  create <collection> [json]       create an entry (prompts for JSON when omitted)
  update <collection> <id> [json]  update an entry
  delete <collection> <id>         delete an entry
  files [k=v ...] | file <id> | search <term>
  upload <path> [ref refId field]  upload a file, optionally linked to an entry
  help | exit`

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the scanner, takes the first word as the command and
// hands the remainder to the matching method on a. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Errors from command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	commands := map[string]func(context.Context, string) error{
		"login":          a.Login,
		"register":       a.Register,
		"logout":         a.Logout,
		"status":         a.Status,
		"me":             a.Me,
		"forgot":         a.Forgot,
		"reset":          a.Reset,
		"provider-url":   a.ProviderURL,
		"provider-login": a.ProviderLogin,
		"restore":        a.Restore,
		"entries":        a.Entries,
		"l":              a.Entries,
		"count":          a.Count,
		"get":            a.Get,
		"create":         a.Create,
		"update":         a.Update,
		"delete":         a.Delete,
		"files":          a.Files,
		"file":           a.File,
		"search":         a.Search,
		"upload":         a.Upload,
	}

	for {
		printlnFn(fmt.Sprintf("strapi %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		cmd, args, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		args = strings.TrimSpace(args)

		switch cmd {
		case "":
			continue
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			run, ok := commands[cmd]
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if err := run(ctx, args); err != nil {
				printlnFn("Error:", err)
			}
		}
	}
}
