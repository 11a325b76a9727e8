package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is a request the backend answered with a failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error [%d]: %s", e.StatusCode, e.Message)
}

// UserMessage is the backend's own explanation, suitable for showing as is.
func (e *APIError) UserMessage() string {
	return e.Message
}

func newAPIError(status int, env *envelope) *APIError {
	msg := env.Message
	if msg == "" && !isNull(env.Error) {
		var s string
		if err := json.Unmarshal(env.Error, &s); err == nil {
			msg = s
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *transportError) Unwrap() error {
	return e.err
}

// IsTransport reports whether err is a network-level failure rather than a
// backend answer.
func IsTransport(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
