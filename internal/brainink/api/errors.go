package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is matched by any remote error caused by an HTTP 401.
// The stored credential has already been cleared when it is returned.
var ErrSessionExpired = errors.New("session expired")

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// RemoteFetchError describes a failed remote call: a transport failure
// (StatusCode 0) or a non-2xx response.
type RemoteFetchError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteFetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: remote fetch failed", e.Method, e.URL)
	}
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// Is reports a match against ErrSessionExpired for HTTP 401.
func (e *RemoteFetchError) Is(target error) bool {
	return target == ErrSessionExpired && e.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fetchErr *RemoteFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}
