// Package apierr carries the error-kind taxonomy shared by every core
// component: NotFound, Upstream, Timeout, Validation, Unauthorized.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindUpstream     Kind = "upstream"
	KindTimeout      Kind = "timeout"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

func NotFound(op, message string) *Error {
	return New(KindNotFound, op, message, nil)
}

func Upstream(op, message string, cause error) *Error {
	return New(KindUpstream, op, message, cause)
}

func Validation(op, message string) *Error {
	return New(KindValidation, op, message, nil)
}

func Unauthorized(op, message string) *Error {
	return New(KindUnauthorized, op, message, nil)
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Classify turns a transport-layer error into an Upstream or Timeout *Error,
// the way internal/platform/qdrant classifies HTTP client failures.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindTimeout, op, "deadline exceeded", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(KindTimeout, op, "network timeout", err)
	}
	return Upstream(op, "upstream call failed", err)
}
