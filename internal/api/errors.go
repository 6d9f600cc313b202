package api

import (
	"errors"
	"fmt"
	"strings"
)

// RequestError reports a failed call: a non-2xx response, a transport
// failure (Status 0), or an undecodable success body.
type RequestError struct {
	Method  string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// newStatusError builds the error for a non-success response. The raw body
// text is the message; an empty body falls back to a generic one.
func newStatusError(method, url string, status int, body string) *RequestError {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = fmt.Sprintf("Request failed: %d", status)
	}
	return &RequestError{Method: method, URL: url, Status: status, Message: msg}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
