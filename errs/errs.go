package errs

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every domain error wraps exactly one of these, so
// callers recover the kind with errors.Is without depending on message
// text. Errors that wrap none of them are infrastructure failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrBusiness      = errors.New("business rule violated")
	ErrAuthorization = errors.New("not authorized")
	ErrValidation    = errors.New("invalid input")
)

// Error is a domain error: a stable kind plus a human-readable message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func NotFound(format string, args ...interface{}) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Business(format string, args ...interface{}) error {
	return &Error{kind: ErrBusiness, msg: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) error {
	return &Error{kind: ErrAuthorization, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}
