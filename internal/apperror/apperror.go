// Package apperror classifies failures of SSPAD operations so handlers can
// map them to HTTP statuses without inspecting error strings.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an operation.
type Kind int

const (
	// KindBadRequest covers malformed or incomplete client input, detected
	// before any external call.
	KindBadRequest Kind = iota
	// KindNotFound covers lookups that resolved to no node.
	KindNotFound
	// KindConflict covers duplicate UID / legacy UID detection.
	KindConflict
	// KindUnsupportedMedia covers datastreams failing type validation.
	KindUnsupportedMedia
	// KindExternal covers failed calls to LAKE, the triplestore, the UID
	// minter or the resize service. Always fatal to the operation.
	KindExternal
	// KindTxState covers commit/rollback failures that leave the repository
	// transaction in an unknown state. Never conflated with validation.
	KindTxState
)

// Error is a classified SSPAD failure. Link optionally points at the
// conflicting or offending resource so the caller can self-diagnose.
type Error struct {
	Kind Kind
	Msg  string
	Link string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest reports invalid client input.
func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing node.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate resource; link points at the existing node.
func Conflict(link, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...), Link: link}
}

// UnsupportedMedia reports a datastream that failed validation.
func UnsupportedMedia(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnsupportedMedia, Msg: fmt.Sprintf(format, args...)}
}

// External wraps a failed call to a collaborator service.
func External(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindExternal, Msg: fmt.Sprintf(format, args...), Err: err}
}

// TxState wraps a commit or rollback failure. The enclosing transaction is in
// an unknown state and the operation must not be reported as a plain failure.
func TxState(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindTxState, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind of err, defaulting to KindExternal for
// unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindExternal
}

// LinkOf returns the resource link attached to err, if any.
func LinkOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Link
	}
	return ""
}

// HTTPStatus maps an error to the status code reported to the caller.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
