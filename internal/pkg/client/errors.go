package client

import (
	"fmt"
	"net/http"
)

// ConnectionError is a network level failure, no HTTP response was received.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf(`cannot reach "%s": %s`, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ClientRequestError is an HTTP 4xx response, the request itself is invalid.
type ClientRequestError struct {
	Status int
	Path   string
}

func (e *ClientRequestError) Error() string {
	return fmt.Sprintf(`request to "%s" failed: %d %s`, e.Path, e.Status, http.StatusText(e.Status))
}

// ServerError is an HTTP 5xx response.
type ServerError struct {
	Status int
	Path   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf(`server error from "%s": %d %s`, e.Path, e.Status, http.StatusText(e.Status))
}

// MalformedResponseError - the response body cannot be decoded to records.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

// AmbiguousResultError - a unique key query matched more than one record.
type AmbiguousResultError struct {
	Count int
}

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("expected a single record, found %d, check search criteria", e.Count)
}
