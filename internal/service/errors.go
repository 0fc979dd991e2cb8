package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for callers and the HTTP layer.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindTypeMismatch    ErrorKind = "type_mismatch"
	KindInvalidValue    ErrorKind = "invalid_value"
	KindUnsupportedType ErrorKind = "unsupported_type"
	KindStorage         ErrorKind = "storage"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrInvalidValue    = &Error{Kind: KindInvalidValue}
	ErrUnsupportedType = &Error{Kind: KindUnsupportedType}
	ErrStorage         = &Error{Kind: KindStorage}
)

type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindStorage.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func validationError(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func notFoundError(message string, err error) error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func storageError(err error) error {
	return &Error{Kind: KindStorage, Message: "internal storage error", Err: err}
}
