// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewResponse constructs an error response with the specified message.
func NewResponse(message string) Response {
	return Response{
		Type:    "error",
		Message: message,
	}
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// NewTrustedFromDomain wraps a blockchain error with the HTTP status code
// that matches its kind. A rejected chain is 406, a mining attempt that
// lost the race is 409 and every other rule violation is 400.
func NewTrustedFromDomain(err error) error {
	switch {
	case errors.Is(err, state.ErrStaleMining):
		return NewTrusted(err, http.StatusConflict)

	case errors.Is(err, database.ErrChainTooShort),
		errors.Is(err, database.ErrInvalidChainStructure),
		errors.Is(err, database.ErrInvalidDifficulty):
		return NewTrusted(err, http.StatusNotAcceptable)

	case errors.Is(err, state.ErrNoTransactions):
		return NewTrusted(err, http.StatusConflict)
	}

	return NewTrusted(err, http.StatusBadRequest)
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap returns the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}
