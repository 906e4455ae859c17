package molit

import (
	"errors"
	"fmt"
)

// ErrMissingServiceKey indicates the government API key was never configured.
// It is the only fetch error that should abort a whole market request.
var ErrMissingServiceKey = errors.New("molit service key is not configured")

// HTTPError is a non-2xx reply from a government endpoint.
type HTTPError struct {
	Status  int
	Snippet string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("molit upstream returned HTTP %d: %s", e.Status, e.Snippet)
}

// APIError is a well-formed reply whose envelope signals failure, either a
// non-success result code or a gateway error wrapper.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("molit upstream error %s: %s", e.Code, e.Message)
}
