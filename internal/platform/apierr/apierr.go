package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps err onto an *Error. Unknown errors become 500 with fallbackCode.
func From(err error, fallbackCode string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	default:
		return New(http.StatusInternalServerError, fallbackCode, err)
	}
}
