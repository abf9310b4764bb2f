// Package apperr classifies failures so the transport layer can decide
// whether to show them to the user, log them, or abort.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUser      Code = "user"
	CodeNotFound  Code = "not_found"
	CodeTransport Code = "transport"
	CodeConfig    Code = "config"
	CodeStore     Code = "store"
)

type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// User returns a rejection that is reported back to the acting user.
func User(message string) *AppError {
	return New(CodeUser, message, nil)
}

// CodeOf returns the code of the outermost AppError in err's chain.
// Unclassified errors are treated as store failures.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStore
}

// IsUserFacing reports whether err should be shown to the user instead of logged.
func IsUserFacing(err error) bool {
	code := CodeOf(err)
	return code == CodeUser || code == CodeNotFound
}
