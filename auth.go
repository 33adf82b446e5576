package jiraquery

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/containeroo/resolver"
)

// authKind discriminates the credential variants.
type authKind uint8

const (
	authAnonymous authKind = iota
	authAPIKey
	authBasic
)

// Auth is the credential an Instance presents to Jira. The zero value is
// anonymous. Values come from Anonymous, APIKey, BasicAuth or their *From
// variants; there is no other way to build one.
type Auth struct {
	kind     authKind
	key      string
	user     string
	password string
}

// Anonymous is the explicit no-credential form: requests carry no
// Authorization header.
func Anonymous() Auth { return Auth{} }

// APIKey authenticates with a personal access token, sent as a Bearer header.
func APIKey(key string) Auth { return Auth{kind: authAPIKey, key: key} }

// BasicAuth authenticates with HTTP basic auth. Jira Cloud expects the
// account email as user and an API token as password.
func BasicAuth(user, password string) Auth {
	return Auth{kind: authBasic, user: user, password: password}
}

// APIKeyFrom is APIKey with the token loaded through an indirection such as
// "env:JIRA_TOKEN" or "file:/run/secrets/jira". A value without a recognized
// prefix passes through unchanged.
func APIKeyFrom(ref string) (Auth, error) {
	key, err := resolver.ResolveVariable(ref)
	if err != nil {
		return Auth{}, fmt.Errorf("resolve api key: %w", err)
	}
	return APIKey(key), nil
}

// BasicAuthFrom is BasicAuth with the password loaded through an indirection,
// see APIKeyFrom.
func BasicAuthFrom(user, passwordRef string) (Auth, error) {
	password, err := resolver.ResolveVariable(passwordRef)
	if err != nil {
		return Auth{}, fmt.Errorf("resolve password: %w", err)
	}
	return BasicAuth(user, password), nil
}

// apply sets the Authorization header for the configured credential.
func (a Auth) apply(r *http.Request) {
	switch a.kind {
	case authAPIKey:
		r.Header.Set("Authorization", "Bearer "+a.key)
	case authBasic:
		r.SetBasicAuth(a.user, a.password)
	}
}

// String renders the credential with the secret obfuscated, safe for logs.
func (a Auth) String() string {
	switch a.kind {
	case authAPIKey:
		return "Bearer " + obfuscate(a.key)
	case authBasic:
		return "Basic " + a.user + ":" + obfuscate(a.password)
	default:
		return "anonymous"
	}
}

// obfuscate keeps the first and last two characters of a secret and masks
// the middle. Short secrets mask entirely.
func obfuscate(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
