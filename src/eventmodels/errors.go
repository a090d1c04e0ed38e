package eventmodels

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	AuthenticationFailedKind ErrorKind = "AuthenticationFailed"
	ValidationRejectedKind   ErrorKind = "ValidationRejected"
	SyncUnavailableKind      ErrorKind = "SyncUnavailable"
	MissingFieldsKind        ErrorKind = "MissingFields"
	InternalKind             ErrorKind = "Internal"
)

var NoCredentialsErr = fmt.Errorf("no credentials stored")
var NoSessionTokenErr = fmt.Errorf("no session token stored")

// AuthenticationFailedError is returned when the platform does not hand out a
// token. StatusCode is zero when the request never got a response.
type AuthenticationFailedError struct {
	StatusCode int
	Body       string
	Message    string
	Cause      error
}

func (e *AuthenticationFailedError) Error() string {
	msg := "authentication failed"
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if body := strings.TrimSpace(e.Body); body != "" {
		msg = fmt.Sprintf("%s: %s", msg, body)
	}

	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

func (e *AuthenticationFailedError) Unwrap() error {
	return e.Cause
}

// SyncUnavailableError is returned when the account search response cannot be used.
type SyncUnavailableError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *SyncUnavailableError) Error() string {
	msg := "account sync unavailable"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

func (e *SyncUnavailableError) Unwrap() error {
	return e.Cause
}

type MissingFieldsError struct {
	Fields []string
}

func NewMissingFieldsError(fields ...string) *MissingFieldsError {
	return &MissingFieldsError{Fields: fields}
}

func (e *MissingFieldsError) Error() string {
	if len(e.Fields) == 0 {
		return "Missing required fields"
	}

	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
}

// KindOf maps an error returned by any component to its kind.
func KindOf(err error) ErrorKind {
	var authErr *AuthenticationFailedError
	var syncErr *SyncUnavailableError
	var fieldsErr *MissingFieldsError

	switch {
	case errors.As(err, &fieldsErr):
		return MissingFieldsKind
	case errors.As(err, &authErr):
		return AuthenticationFailedKind
	case errors.As(err, &syncErr):
		return SyncUnavailableKind
	default:
		return InternalKind
	}
}
