package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
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
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewPermissionDenied(message string) error {
	return NewDomainError("PERMISSION_DENIED", message, http.StatusForbidden, nil)
}

func NewInvalidTransition(from, to string) error {
	return NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("no transition from %s to %s", from, to),
		http.StatusConflict,
		map[string]any{"from": from, "to": to})
}

func NewDuplicateBid(ticketID, vendorID int64) error {
	return NewDomainError("DUPLICATE_BID", "vendor already has a bid on this ticket",
		http.StatusConflict,
		map[string]any{"ticket_id": ticketID, "vendor_id": vendorID})
}

func NewTicketNotBiddable(ticketID int64, reason string) error {
	return NewDomainError("TICKET_NOT_BIDDABLE", reason, http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

func NewConcurrentBidConflict(ticketID int64) error {
	return NewDomainError("CONCURRENT_BID_CONFLICT", "another bid on this ticket is already accepted",
		http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

func NewStaleTicketState(ticketID int64) error {
	return NewDomainError("STALE_TICKET_STATE", "ticket was modified since it was read; reload and retry",
		http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

func NewNoWorkOrders(ticketID int64) error {
	return NewDomainError("NO_WORK_ORDERS", "invoice requires at least one work order",
		http.StatusUnprocessableEntity,
		map[string]any{"ticket_id": ticketID})
}

func NewTicketNotBillable(ticketID int64, status string) error {
	return NewDomainError("TICKET_NOT_BILLABLE", "ticket is not in a billable status",
		http.StatusConflict,
		map[string]any{"ticket_id": ticketID, "status": status})
}

func NewAlreadySent(invoiceID int64, status string) error {
	return NewDomainError("ALREADY_SENT", "invoice is not in a sendable status",
		http.StatusConflict,
		map[string]any{"invoice_id": invoiceID, "status": status})
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
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
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// CodeOf returns the domain error code for err, or an empty string for
// non-domain errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
