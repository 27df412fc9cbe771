package google

import (
	"os"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
)

// Environment variables holding the OAuth client credentials.
const (
	EnvClientID     = "GMAIL_OAUTH_CLIENT_ID"
	EnvClientSecret = "GMAIL_OAUTH_CLIENT_SECRET"
)

// The loopback redirect the OAuth client must be registered with.
const (
	RedirectURL  = "http://localhost:3000/oauth/callback"
	CallbackAddr = "localhost:3000"
	CallbackPath = "/oauth/callback"
)

// NewOAuthConfig builds the OAuth2 configuration for the given client
// credentials, bound to the fixed loopback redirect and Gmail scopes.
func NewOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauthgoogle.Endpoint,
		RedirectURL:  RedirectURL,
		Scopes:       Scopes,
	}
}

// LoadOAuthConfig reads the client credentials from the environment.
// Both settings are required; a *ConfigurationError naming every missing
// variable is returned otherwise. Explicit values (e.g. from flags) take
// precedence over the environment.
func LoadOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID == "" {
		clientID = os.Getenv(EnvClientID)
	}
	if clientSecret == "" {
		clientSecret = os.Getenv(EnvClientSecret)
	}

	var missing []string
	if clientID == "" {
		missing = append(missing, EnvClientID)
	}
	if clientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	return NewOAuthConfig(clientID, clientSecret), nil
}
