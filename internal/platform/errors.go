package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenExchange marks a failed client-credentials exchange against
	// the identity provider.
	ErrTokenExchange = errors.New("token_exchange_failed")
)

// APIError is returned for any non-success platform API response. Message
// prefers the provider's own message field over the caller-supplied
// fallback.
type APIError struct {
	StatusCode int
	Message    string
	Raw        map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api error (%d): %s", e.StatusCode, e.Message)
}
