package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/client/models"
	"github.com/dmitrijs2005/strapiclient/internal/common"
)

type account struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// password reads a password and returns it as a string, wiping the buffer.
func (a *App) password() (string, error) {
	pw, err := GetPassword(a.out)
	if err != nil {
		return "", err
	}
	defer clear(pw)
	if len(pw) == 0 {
		return "", fmt.Errorf("%w: password is empty", common.ErrInvalidArgument)
	}
	return string(pw), nil
}

// signedIn reports the outcome of a credential-issuing flow.
func (a *App) signedIn(auth models.Authentication, err error) error {
	switch {
	case errors.Is(err, common.ErrSessionSuperseded):
		a.println("Signed in, but a later logout or login took precedence; credential not kept.")
		return nil
	case err != nil:
		return err
	}
	var u account
	if err := auth.DecodeUser(&u); err == nil && u.Username != "" {
		a.userName = u.Username
	} else {
		a.userName = ""
	}
	a.println("Signed in as", a.getStatus())
	return nil
}

func (a *App) Login(ctx context.Context, args string) error {
	identifier, err := a.prompt(args, "Username or e-mail:")
	if err != nil {
		return err
	}
	pw, err := a.password()
	if err != nil {
		return err
	}
	return a.signedIn(a.client.Session.Login(ctx, identifier, pw))
}

func (a *App) Register(ctx context.Context, args string) error {
	username, err := a.prompt(args, "Username:")
	if err != nil {
		return err
	}
	email, err := a.prompt("", "E-mail:")
	if err != nil {
		return err
	}
	pw, err := a.password()
	if err != nil {
		return err
	}

	auth, err := a.client.Session.Register(ctx, map[string]string{
		"username": username,
		"email":    email,
		"password": pw,
	})
	if errors.Is(err, common.ErrNoTokenIssued) {
		a.println("Account created. Confirm your e-mail address, then log in.")
		return nil
	}
	return a.signedIn(auth, err)
}

func (a *App) Logout(ctx context.Context, _ string) error {
	a.userName = ""
	if !a.client.Session.Logout(ctx) {
		return fmt.Errorf("%w: credential could not be removed everywhere", common.ErrStorageUnavailable)
	}
	a.println("Logged out.")
	return nil
}

func (a *App) Status(ctx context.Context, _ string) error {
	token, err := a.client.Session.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		a.println("Not signed in.")
		return nil
	}
	exp, err := a.validator.ExpiresAt(token)
	switch {
	case err != nil:
		a.println("Stored credential is unreadable:", err)
	case a.validator.IsExpired(token):
		a.println("Stored credential expired at", exp.Local().Format("2006-01-02 15:04:05"))
	default:
		a.println("Signed in; credential valid until", exp.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *App) Me(ctx context.Context, _ string) error {
	var raw json.RawMessage
	if err := a.client.Session.CurrentUser(ctx, &raw); err != nil {
		return err
	}
	var u account
	if json.Unmarshal(raw, &u) == nil && u.Username != "" {
		a.userName = u.Username
	}
	a.printJSON(raw)
	return nil
}

// Forgot takes "email [reset-url]".
func (a *App) Forgot(ctx context.Context, args string) error {
	f := strings.Fields(args)
	var email, resetURL string
	if len(f) > 0 {
		email = f[0]
	}
	if len(f) > 1 {
		resetURL = f[1]
	}
	email, err := a.prompt(email, "E-mail:")
	if err != nil {
		return err
	}
	a.userName = ""
	raw, err := a.client.Session.ForgotPassword(ctx, email, resetURL)
	if err != nil {
		return err
	}
	a.println("Reset e-mail requested.")
	a.printJSON(raw)
	return nil
}

func (a *App) Reset(ctx context.Context, args string) error {
	code, err := a.prompt(args, "Reset code:")
	if err != nil {
		return err
	}
	pw, err := a.password()
	if err != nil {
		return err
	}
	confirm, err := a.password()
	if err != nil {
		return err
	}
	a.userName = ""
	if _, err := a.client.Session.ResetPassword(ctx, code, pw, confirm); err != nil {
		return err
	}
	a.println("Password changed. Log in with the new password.")
	return nil
}

func (a *App) ProviderURL(_ context.Context, args string) error {
	f, err := argsN(args, 1, "provider-url <provider>")
	if err != nil {
		return err
	}
	a.println(a.client.Session.ProviderAuthenticationURL(models.Provider(f[0])))
	return nil
}

// ProviderLogin takes "provider access_token".
func (a *App) ProviderLogin(ctx context.Context, args string) error {
	f, err := argsN(args, 2, "provider-login <provider> <access_token>")
	if err != nil {
		return err
	}
	return a.signedIn(a.client.Session.AuthenticateProvider(ctx, models.Provider(f[0]), models.ProviderToken{AccessToken: f[1]}))
}

func (a *App) Restore(ctx context.Context, args string) error {
	f, err := argsN(args, 1, "restore <token>")
	if err != nil {
		return err
	}
	if err := a.client.Session.Restore(ctx, f[0]); err != nil {
		return err
	}
	a.userName = ""
	a.println("Credential adopted for this session.")
	return nil
}
