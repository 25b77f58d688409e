// Package apperr defines the application error taxonomy and the single
// boundary point that maps errors onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthorized
	Forbidden
	NotFound
	Conflict
)

// Clients always see this message for Internal errors.
const internalMessage = "something went wrong"

// Error carries a kind and a user-facing message, optionally wrapping an
// underlying cause that is logged but never sent to the client.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a user-facing message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a kind and user-facing message to an underlying error.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Status maps an error kind onto an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for err. Internal errors always
// collapse to a generic message so no internals leak to the client.
func Message(err error) string {
	if KindOf(err) == Internal {
		return internalMessage
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return internalMessage
}

type errorBody struct {
	Message string `json:"message"`
}

// Respond logs err and writes the mapped status and message as JSON.
// Every failed request must reach this exactly once.
func Respond(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		log.Errorw("request failed", "status", status, "error", err)
	} else {
		log.Infow("request rejected", "status", status, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Message: Message(err)})
}
