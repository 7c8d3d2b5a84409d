// Package apperr defines the domain error taxonomy. Services return these;
// the HTTP layer maps kinds to status codes without leaking internals.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindContentRejected
	KindGateway
)

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

func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Msg: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Msg: msg} }
func ContentRejected(msg string) *Error { return &Error{Kind: KindContentRejected, Msg: msg} }

// Gateway wraps a payment-gateway failure.
func Gateway(msg string, err error) *Error {
	return &Error{Kind: KindGateway, Msg: msg, Err: err}
}

// Internal wraps an unexpected persistence or infrastructure failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
func IsConflict(err error) bool  { return KindOf(err) == KindConflict }
