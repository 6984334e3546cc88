package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRequest means a request could not be built from the given input or configuration
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized means an operation needs a token and none is stored
	ErrUnauthorized = errors.New("user not authorized")
)

type (
	// NetworkError is a transport-level failure: timeout, refused connection, cancellation
	NetworkError struct {
		Op  string
		Err error
	}

	// StatusError is a response outside the 200-299 range
	StatusError struct {
		Code int
	}

	// DecodeError is a payload that did not match the expected shape
	DecodeError struct {
		Body []byte
		Err  error
	}
)

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Code)
}

// IsAuth reports whether the status means the token was rejected
func (e *StatusError) IsAuth() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether err means the user has to sign in again
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.IsAuth()
}
