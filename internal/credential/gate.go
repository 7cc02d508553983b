// Package credential guards startup on the presence of the chat API key.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultEnv is the environment variable holding the chat API key.
const DefaultEnv = "GEMINI_KEY"

// ErrMissing is returned when the variable is unset or blank.
var ErrMissing = errors.New("credential not set")

// LookupFunc matches the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Require returns the value of the named variable. Unset and
// whitespace-only values are both reported as ErrMissing.
func Require(lookup LookupFunc, name string) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissing, name)
	}
	return value, nil
}

// WithFallback consults lookup first and then values, the way dotenv
// loading never overrides variables already set.
func WithFallback(lookup LookupFunc, values map[string]string) LookupFunc {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}
}

// Hint is the message shown to the user when the credential is missing.
func Hint(name string) string {
	return fmt.Sprintf("%s is not set! Export it first, e.g.: export %s=\"your_key\"", name, name)
}
