// Package api holds the HTTP error taxonomy and response helpers shared by
// all handlers.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Inner errors for the fixed failure taxonomy. Handlers wrap these so the
// error handler can map any failure to a status class with errors.Is.
var (
	// ErrInvalid is the inner error for failures that convert to a 400.
	ErrInvalid = errors.New("bad request")
	// ErrUnauthenticated is the inner error for failures that convert to a 401.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotConfirmed is the inner error for unconfirmed accounts (403).
	ErrNotConfirmed = errors.New("account not confirmed")
	// ErrForbidden is the inner error for permission failures (403).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is the inner error for failures that convert to a 404.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is the inner error for failures that convert to a 429.
	ErrRateLimited = errors.New("rate limited")
)

// AsValidationError returns an error that wraps ErrInvalid, so that errors.Is
// can identify it.
func AsValidationError(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalid, msg, args...)
}

// AsErrUnauthenticated returns an error that wraps ErrUnauthenticated.
func AsErrUnauthenticated(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrUnauthenticated, msg, args...)
}

// AsErrNotConfirmed returns an error that wraps ErrNotConfirmed.
func AsErrNotConfirmed(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrNotConfirmed, msg, args...)
}

// AsErrForbidden returns an error that wraps ErrForbidden.
func AsErrForbidden(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrForbidden, msg, args...)
}

// AsErrNotFound returns an error that wraps ErrNotFound.
func AsErrNotFound(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, msg, args...)
}

// AsErrRateLimited returns an error that wraps ErrRateLimited.
func AsErrRateLimited(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrRateLimited, msg, args...)
}

// StatusOf resolves an error to its HTTP status class. Unrecognized errors
// are internal errors.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotConfirmed), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// JSONErrorHandler is the single exception boundary of the server: every
// handler failure becomes a JSON body with a single "error" key and an
// appropriate status code. Raw backend details are logged, never returned.
func JSONErrorHandler(err error, c echo.Context) {
	code := StatusOf(err)
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		}
	}

	if code >= 500 {
		log.WithError(err).Error("request failed")
		msg = "internal server error"
	}

	if !c.Response().Committed {
		if jsonErr := c.JSON(code, map[string]string{"error": msg}); jsonErr != nil {
			log.WithError(jsonErr).Error("error writing error response")
		}
	}
}
