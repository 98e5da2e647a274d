package api

import (
	"errors"
	"net/http"

	"github.com/roomify-app/roomify/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrNotSignedIn  = errors.New("not signed in")
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// Unwrap maps the status code onto a sentinel.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	case http.StatusBadRequest:
		return common.ErrorValidation
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

func isTokenExpired(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		se.StatusCode == http.StatusUnauthorized &&
		se.Message == common.ErrTokenExpired.Error()
}
