package upstream

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the API answers 401.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// StatusError is a non-2xx answer other than 401.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("network response was not ok (%s: status %d)", e.Endpoint, e.Code)
}

// ParseError means the body could not be decoded or did not match the schema.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
