// Package secrets resolves ${secret:NAME} placeholders found in route
// YAML at config-load time, backed by the OS credential store via
// go-keyring. Route scripts themselves never see secrets directly — this
// keeps the scripting language's side-effect surface limited to request
// data, cache, and the table store.
package secrets

import (
	"fmt"
	"regexp"

	"github.com/zalando/go-keyring"
)

// ServiceName namespaces this application's entries in the OS keychain.
const ServiceName = "mockscript"

var placeholder = regexp.MustCompile(`\$\{secret:([A-Za-z0-9_.-]+)\}`)

// Set stores a secret under name for later placeholder resolution.
func Set(name, value string) error {
	return keyring.Set(ServiceName, name, value)
}

// Get reads a secret by name.
func Get(name string) (string, error) {
	v, err := keyring.Get(ServiceName, name)
	if err == keyring.ErrNotFound {
		return "", fmt.Errorf("secret %q not found", name)
	}
	return v, err
}

// Delete removes a stored secret.
func Delete(name string) error {
	return keyring.Delete(ServiceName, name)
}

// ResolveString replaces every ${secret:NAME} placeholder in s with the
// secret's value. Missing secrets are an error, not a silent empty string,
// since a route silently serving a blank bearer token is worse than a
// config that fails to load.
func ResolveString(s string) (string, error) {
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholder.FindStringSubmatch(match)[1]
		v, err := Get(name)
		if err != nil {
			firstErr = err
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// HasPlaceholder reports whether s contains any ${secret:NAME} reference,
// used by the config loader to skip the regexp pass on the common case of
// a route with no secret placeholders at all.
func HasPlaceholder(s string) bool {
	return placeholder.MatchString(s)
}
