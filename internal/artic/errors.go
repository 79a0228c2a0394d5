package artic

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by FetchError.
var (
	ErrHTTPStatus  = errors.New("unexpected HTTP status")
	ErrDecode      = errors.New("malformed page response")
	ErrTransport   = errors.New("request failed")
	ErrInvalidPage = errors.New("page must be >= 1")
)

// FetchError reports a failed page fetch. Message is suitable for display.
type FetchError struct {
	Page       int
	StatusCode int
	Message    string
	Err        error
}

// Error implements error.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching page %d: %s", e.Page, e.Message)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

func statusError(page, status int) *FetchError {
	return &FetchError{
		Page:       page,
		StatusCode: status,
		Message:    fmt.Sprintf("HTTP error! status: %d", status),
		Err:        ErrHTTPStatus,
	}
}
