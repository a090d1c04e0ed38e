package eventmodels

import "net/http"

type WebError struct {
	StatusCode int
	Kind       ErrorKind
	Cause      error
}

func (e *WebError) Error() string {
	return e.Cause.Error()
}

func (e *WebError) Unwrap() error {
	return e.Cause
}

func NewWebError(statusCode int, kind ErrorKind, cause error) *WebError {
	return &WebError{
		StatusCode: statusCode,
		Kind:       kind,
		Cause:      cause,
	}
}

// WebErrorFrom picks the HTTP status for an error by its kind.
func WebErrorFrom(err error) *WebError {
	kind := KindOf(err)
	switch kind {
	case MissingFieldsKind:
		return NewWebError(http.StatusBadRequest, kind, err)
	case SyncUnavailableKind:
		return NewWebError(http.StatusBadGateway, kind, err)
	default:
		return NewWebError(http.StatusInternalServerError, kind, err)
	}
}
