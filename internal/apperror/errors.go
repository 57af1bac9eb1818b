package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable, machine-readable class of an error returned to callers.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
	KindStorage      Kind = "storage_error"
)

// Codes refine a Kind for callers that need to tell failures apart.
const (
	CodeProjectNotFound      = "project_not_found"
	CodeInvalidStatus        = "invalid_status"
	CodeMissingRequiredField = "missing_required_field"
	CodeStorageConflict      = "storage_conflict"
	CodeDuplicateName        = "duplicate_name"
)

// Error is the error type shared by every service in the portal. Op names
// the failing store operation; it is logged but never sent to callers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinel-style comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// HTTPStatus maps the kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, "", message) }

func Forbidden(message string) *Error { return New(KindForbidden, "", message) }

func NotFound(code, message string) *Error { return New(KindNotFound, code, message) }

func InvalidInput(code, message string) *Error { return New(KindInvalidInput, code, message) }

func Conflict(code, message string) *Error { return New(KindConflict, code, message) }

// Storage wraps a collaborator failure. The message shown to callers stays generic.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Op: op, Err: err}
}

// StorageConflict wraps a write the store refused because of a concurrent
// change or a uniqueness race.
func StorageConflict(op string, err error) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeStorageConflict,
		Message: "the record was modified concurrently",
		Op:      op,
		Err:     err,
	}
}

// Sentinels for errors.Is checks.
var (
	ErrProjectNotFound      = NotFound(CodeProjectNotFound, "project not found")
	ErrInvalidStatus        = InvalidInput(CodeInvalidStatus, "invalid status")
	ErrMissingRequiredField = InvalidInput(CodeMissingRequiredField, "missing required field")
	ErrStorageConflict      = Conflict(CodeStorageConflict, "storage conflict")
	ErrDuplicateName        = Conflict(CodeDuplicateName, "name already exists")
)

// KindOf reports the kind of err, treating unknown errors as storage failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}
