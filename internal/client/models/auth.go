package models

import (
	"encoding/json"
	"fmt"
)

// Authentication is the body returned by every flow that issues a credential.
type Authentication struct {
	// User is the account record as the server sent it.
	User json.RawMessage `json:"user"`
	// JWT is the issued bearer credential. Empty when the server issued none,
	// e.g. registration pending e-mail confirmation.
	JWT string `json:"jwt"`
}

// DecodeUser unmarshals the user record into out.
func (a Authentication) DecodeUser(out any) error {
	if len(a.User) == 0 {
		return fmt.Errorf("authentication carries no user")
	}
	return json.Unmarshal(a.User, out)
}

// Provider names a third-party identity provider, e.g. "github".
type Provider string

const (
	ProviderFacebook  Provider = "facebook"
	ProviderGoogle    Provider = "google"
	ProviderGitHub    Provider = "github"
	ProviderTwitter   Provider = "twitter"
	ProviderDiscord   Provider = "discord"
	ProviderMicrosoft Provider = "microsoft"
)

// ProviderToken carries the provider callback parameters. They are forwarded
// as request headers exactly as given, empty values included.
type ProviderToken struct {
	AccessToken string
	Code        string
	OAuthToken  string
}

// Headers returns the header set sent to the provider callback endpoint.
func (p ProviderToken) Headers() map[string]string {
	return map[string]string{
		"access_token": p.AccessToken,
		"code":         p.Code,
		"oauth_token":  p.OAuthToken,
	}
}
