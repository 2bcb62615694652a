package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Kind classifies a failure by what the caller can do about it.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNetwork
	KindAuth
	KindRateLimited
	KindNotFound
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindDecoding:
		return "decoding"
	default:
		return "unknown"
	}
}

// Retryable reports whether trying again may succeed.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindRateLimited
}

// Error is a classified failure from an external collaborator.
type Error struct {
	Kind       Kind
	Op         string // operation that failed, e.g. "search_repositories"
	Status     int    // HTTP status, 0 when the request never completed
	Message    string // server supplied message, if any
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err under kind.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// ErrEmptyQuery is returned when a search is attempted without a query.
var ErrEmptyQuery = New(KindInvalidInput, "search", "empty query")

// FromStatus classifies a non-2xx HTTP response.
func FromStatus(op string, status int, message string) *Error {
	e := &Error{Op: op, Status: status, Message: message}
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		e.Kind = KindInvalidInput
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden:
		if strings.Contains(strings.ToLower(message), "rate limit") {
			e.Kind = KindRateLimited
		} else {
			e.Kind = KindAuth
		}
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusRequestTimeout, status >= 500:
		e.Kind = KindNetwork
	default:
		e.Kind = KindUnknown
	}
	return e
}

// KindOf extracts the kind of err. Transport failures that were never
// classified count as network errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether the operation that produced err may succeed if
// repeated.
func Retryable(err error) bool {
	return err != nil && KindOf(err).Retryable()
}

// Carrier is implemented by result actions that may hold a collaborator
// error, so a parent reducer can react to failures it did not request.
type Carrier interface {
	Failure() error
}

// FailureOf returns the error carried by v, if any.
func FailureOf(v any) error {
	if c, ok := v.(Carrier); ok {
		return c.Failure()
	}
	return nil
}
