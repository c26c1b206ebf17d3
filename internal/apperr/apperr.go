// Package apperr defines the error taxonomy shared by the gateway, the services and the
// HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for the HTTP boundary.
type Kind string

const (
	// KindInvalidRequest marks missing or contradictory input.
	KindInvalidRequest Kind = "INVALID_REQUEST"

	// KindFundingFailed marks a faucet that refused to fund a new account.
	KindFundingFailed Kind = "FUNDING_FAILED"

	// KindAccountLookupFailed marks a ledger account that could not be loaded.
	KindAccountLookupFailed Kind = "ACCOUNT_LOOKUP_FAILED"

	// KindPaymentFailed marks a payment the ledger did not accept.
	KindPaymentFailed Kind = "PAYMENT_FAILED"

	// KindStoreUnavailable marks an event that could not be durably written.
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"

	// KindRateLimited marks a request rejected by a local rate limiter.
	KindRateLimited Kind = "RATE_LIMITED"

	// KindInternal is used for errors that carry no kind.
	KindInternal Kind = "INTERNAL"
)

// HTTPStatus maps the kind to a response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a categorized error with an optional detail payload supplied by an
// upstream service.
type Error struct {
	Kind    Kind
	Message string
	Detail  any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that wraps err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetail attaches an upstream detail payload.
func (e *Error) WithDetail(detail any) *Error {
	e.Detail = detail
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Invalid is shorthand for New(KindInvalidRequest, message).
func Invalid(message string) *Error {
	return New(KindInvalidRequest, message)
}
