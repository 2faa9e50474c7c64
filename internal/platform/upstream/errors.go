package upstream

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrRateLimited marks HTTP 429 responses. They are never retried.
	ErrRateLimited = crerr.New("upstream rate limited")
	errTransient   = crerr.New("upstream transient failure")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status=%d body=%s", e.Code, e.Body)
}

func IsRateLimited(err error) bool {
	return err != nil && crerr.Is(err, ErrRateLimited)
}

// IsTransient covers 5xx responses, network errors and attempt timeouts.
func IsTransient(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}
