package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeIdempotency      Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeDependency       Code = "DEPENDENCY_ERROR"

	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeInvalidSchedule     Code = "INVALID_SCHEDULE"
	CodeUnsupportedProvider Code = "UNSUPPORTED_PROVIDER"
	CodeBelowMinimum        Code = "BELOW_MINIMUM"
	CodeDuplicatePayout     Code = "DUPLICATE_PAYOUT"
	CodeCalculation         Code = "CALCULATION_ERROR"
)

// Metadata drives how a Code is rendered on the wire.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:       {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized:     {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:        {http.StatusForbidden, false, "access denied", false},
	CodeNotFound:         {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:         {http.StatusConflict, false, "conflict detected", false},
	CodeMethodNotAllowed: {http.StatusMethodNotAllowed, false, "method not allowed", false},
	CodeIdempotency:      {http.StatusConflict, false, "idempotency key reused", true},
	CodeInternal:         {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:       {http.StatusServiceUnavailable, true, "dependency unavailable", true},

	// payout domain
	CodeInvalidTransition:   {http.StatusUnprocessableEntity, false, "status transition not allowed", true},
	CodeInvalidSchedule:     {http.StatusBadRequest, false, "invalid schedule", true},
	CodeUnsupportedProvider: {http.StatusBadRequest, false, "unsupported ach provider", true},
	CodeBelowMinimum:        {http.StatusUnprocessableEntity, false, "amount below ach minimum", true},
	CodeDuplicatePayout:     {http.StatusConflict, false, "payout already exists for transaction", true},
	CodeCalculation:         {http.StatusUnprocessableEntity, false, "commission calculation failed", true},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error carrying the same code, so callers can write
// errors.Is(err, pkgerrors.New(pkgerrors.CodeConflict, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if e == nil || !stdErrors.As(target, &other) || other == nil {
		return false
	}
	return other.code == e.code
}

// HasCode reports whether err carries a typed error with the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
