package util

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced in HTTP responses and checked by the inbound
// channel router.
const (
	CodeValidationFailed          = "VALIDATION_FAILED"
	CodeNotFound                  = "NOT_FOUND"
	CodeCooldownActive            = "COOLDOWN_ACTIVE"
	CodeTicketAllocationExhausted = "TICKET_ALLOCATION_EXHAUSTED"
	CodeInvalidTransition         = "INVALID_TRANSITION"
	CodeAmbiguousTicket           = "AMBIGUOUS_TICKET"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeForbidden                 = "FORBIDDEN"
	CodeInternalError             = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewCooldownActive reports a rate-limited submission with the
// server-computed remaining wait.
func NewCooldownActive(retryAfter time.Duration) error {
	seconds := int64(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	hours := int64(math.Ceil(retryAfter.Hours()))
	return &DomainError{
		Code:       CodeCooldownActive,
		Message:    fmt.Sprintf("you can submit another grievance in %d hour(s)", hours),
		HTTPStatus: http.StatusTooManyRequests,
		Details: map[string]any{
			"retry_after_seconds": seconds,
		},
	}
}

// NewTicketAllocationExhausted reports repeated ticket-number
// collisions; the caller may retry the whole submission.
func NewTicketAllocationExhausted(attempts int) error {
	return &DomainError{
		Code:       CodeTicketAllocationExhausted,
		Message:    "could not allocate a unique ticket number",
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]any{
			"attempts":  attempts,
			"retryable": true,
		},
	}
}

// NewInvalidTransition reports a transition refused by the terminal
// state lock.
func NewInvalidTransition(message string) error {
	return NewDomainError(CodeInvalidTransition, message, http.StatusConflict, nil)
}

// NewAmbiguousTicket reports a defensive invariant violation: more
// than one record matched a ticket number. It should never occur.
func NewAmbiguousTicket(ticketNumber string) error {
	return &DomainError{
		Code:       CodeAmbiguousTicket,
		Message:    "ticket number matches more than one record",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"ticket_number": ticketNumber},
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError carrying the code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func MapError(err error) error {
	return ToDomainError(err)
}
