package newsapi

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps network and transport failures, including a
	// cancelled or expired context.
	ErrTransport = errors.New("newsapi: transport error")
	// ErrMalformed marks a response body that could not be decoded.
	ErrMalformed = errors.New("newsapi: malformed response")
)

// APIError is returned when the API answers with status "error" or with an
// HTTP error status.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("newsapi: %s: %s (http %d)", e.Code, e.Message, e.HTTPStatus)
	case e.Message != "":
		return fmt.Sprintf("newsapi: %s (http %d)", e.Message, e.HTTPStatus)
	default:
		return fmt.Sprintf("newsapi: request failed (http %d)", e.HTTPStatus)
	}
}

// Kind names the error class for logs and the status line.
func Kind(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.As(err, &apiErr):
		return "api"
	case errors.Is(err, ErrMalformed):
		return "payload"
	default:
		return "other"
	}
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("%v: %v", ErrTransport, e.err) }

// Is lets errors.Is match both ErrTransport and the underlying cause, so
// callers can still test for context.Canceled.
func (e *transportError) Is(target error) bool { return target == ErrTransport }

func (e *transportError) Unwrap() error { return e.err }
