package monday

import (
	"errors"
	"fmt"
	"strings"
)

// APIError describes a failed API call: either a transport failure, a non-200
// HTTP response, or a GraphQL-level error list.
type APIError struct {
	Op         string
	StatusCode int
	Messages   []string
	Err        error

	transport bool
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case len(e.Messages) > 0:
		return fmt.Sprintf("%s: %s", e.Op, strings.Join(e.Messages, "; "))
	default:
		return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// IsUnavailable reports whether the failure is an upstream availability
// problem rather than a rejected request: transport errors and 5xx responses.
func (e *APIError) IsUnavailable() bool {
	return e.transport || e.StatusCode >= 500
}

// IsUpstreamUnavailable reports whether err is an API availability failure,
// which handlers surface as a bad gateway.
func IsUpstreamUnavailable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnavailable()
}

// IsAPIError reports whether err originated from a Monday.com API call.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
