// Package adapter implements the service-independent lookup pipeline:
// search a remote service, disambiguate between candidates, fetch the
// chosen record, gate adult content, and build the pages to present.
package adapter

import (
	"errors"
	"fmt"
)

// NotFoundError reports that the remote knows nothing about the query or id.
type NotFoundError struct {
	Code    int
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("not found (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("not found (%d)", e.Code)
}

// UnavailableError reports a remote 5xx or a transport failure.
type UnavailableError struct {
	Code int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("service unavailable (%d)", e.Code)
}

// RateLimitedError reports an exhausted remote quota.
type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string {
	return "rate limited: " + e.Message
}

// ErrEmptyResult is returned when the remote answered 200 OK with zero
// candidates.
var ErrEmptyResult = errors.New("empty result")

// ErrCancelled is returned when the user cancelled disambiguation, either
// explicitly or by timeout. It never produces a user-visible message.
var ErrCancelled = errors.New("cancelled")

// UserMessage converts a pipeline error into the single user-visible
// message for it. ok is false for silent errors (cancellation) and for nil.
func UserMessage(err error) (msg string, ok bool) {
	var notFound *NotFoundError
	var unavailable *UnavailableError
	var limited *RateLimitedError
	switch {
	case err == nil, errors.Is(err, ErrCancelled):
		return "", false
	case errors.Is(err, ErrEmptyResult), errors.As(err, &notFound):
		return "No results found.", true
	case errors.As(err, &unavailable):
		return fmt.Sprintf("https://http.cat/%d", unavailable.Code), true
	case errors.As(err, &limited):
		return "Daily request quota exhausted. Try again tomorrow.", true
	default:
		return "Something went wrong.", true
	}
}
