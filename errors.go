package hakushin

import (
	"errors"
	"fmt"
)

// ErrInconsistentStage is returned when a decoded stage references a
// scaling-group key that is absent from the fetched tables. The stage and
// the tables are mutually inconsistent; this is never silently defaulted.
var ErrInconsistentStage = errors.New("stage references unknown scaling group")

// NotFoundError is returned when the requested upstream resource does not
// exist (HTTP 404). Callers can distinguish "this id doesn't exist" from
// transient upstream failure with errors.As.
type NotFoundError struct {
	// URL is the request URL that yielded the 404.
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// APIError is returned for any non-success upstream response other than a
// 404. It carries the status code and URL for diagnostics.
type APIError struct {
	// Status is the HTTP status code of the failed response.
	Status int
	// URL is the request URL.
	URL string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.URL)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
