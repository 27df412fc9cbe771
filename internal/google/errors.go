package google

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the authorization flow.
var (
	// ErrAuthorizationTimeout is returned when no callback arrives within
	// the authorization window.
	ErrAuthorizationTimeout = errors.New("authorization timed out waiting for the browser callback")

	// ErrAuthorizationInProgress is returned when an interactive
	// authorization attempt is started while another is already awaiting
	// its callback. Only one loopback listener may exist per process.
	ErrAuthorizationInProgress = errors.New("an interactive authorization is already in progress")
)

// ConfigurationError reports missing required OAuth settings by name.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required OAuth configuration: %s", strings.Join(e.Missing, ", "))
}

// AuthorizationError reports a failed interactive authorization, carrying
// the provider's error code (e.g. access_denied) or a description of the
// malformed callback.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed: %s", e.Reason)
}
