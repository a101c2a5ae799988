package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure.
type Kind string

const (
	// KindNetwork means the request never completed.
	KindNetwork Kind = "network"
	// KindAuth is a 401-class rejection; callers clear the session and force
	// re-authentication.
	KindAuth Kind = "auth"
	// KindServer is any other 4xx/5xx, carrying the server's detail message
	// when one could be parsed.
	KindServer Kind = "server"
	// KindDecode means the response body was not a well-formed document.
	KindDecode Kind = "decode"
)

// Error is the typed failure returned by the fetcher. All failures are
// recoverable by retrying the triggering action.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	URL    string
	err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("client: %s %s: %s (status %d)", e.Kind, e.URL, e.Detail, e.Status)
	case e.Status > 0:
		return fmt.Sprintf("client: %s %s: status %d", e.Kind, e.URL, e.Status)
	default:
		return fmt.Sprintf("client: %s %s: %v", e.Kind, e.URL, e.err)
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

// IsAuth reports whether err is a 401-class failure.
func IsAuth(err error) bool {
	var reqErr *Error
	return errors.As(err, &reqErr) && reqErr.Kind == KindAuth
}

// IsNotFound reports whether err is a 404. List views treat this as "zero
// items" rather than a failure.
func IsNotFound(err error) bool {
	var reqErr *Error
	return errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound
}

// AsError extracts the typed failure, when err carries one.
func AsError(err error) (*Error, bool) {
	var reqErr *Error
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
