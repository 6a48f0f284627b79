package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeNothingToCancel   = "NOTHING_TO_CANCEL"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeSlotUnavailable   = "SLOT_UNAVAILABLE"
	CodeWorkflowBusy      = "WORKFLOW_BUSY"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeTimeout           = "REQUEST_TIMEOUT"
	CodeIdempotencyReuse  = "IDEMPOTENCY_KEY_REUSED"
	CodeIdempotencyBusy   = "IDEMPOTENCY_KEY_IN_FLIGHT"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidation, message, http.StatusUnprocessableEntity).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

func CapacityExceeded(err error) *AppError {
	return Wrap(err, CodeCapacityExceeded, "This slot is fully booked", http.StatusConflict)
}

func NothingToCancel(err error) *AppError {
	return Wrap(err, CodeNothingToCancel, "There are no bookings for this slot", http.StatusConflict)
}

func OutOfRange(err error) *AppError {
	return Wrap(err, CodeOutOfRange, "Slot index is out of range", http.StatusBadRequest)
}

func SlotUnavailable(reason string, err error) *AppError {
	return Wrap(err, CodeSlotUnavailable, reason, http.StatusConflict)
}

func WorkflowBusy(err error) *AppError {
	return Wrap(err, CodeWorkflowBusy, "A booking is already in progress", http.StatusConflict)
}

func InvalidTransition(err error) *AppError {
	return Wrap(err, CodeInvalidTransition, err.Error(), http.StatusConflict)
}

func Timeout() *AppError {
	return New(CodeTimeout, "Request timeout", http.StatusServiceUnavailable)
}

func IdempotencyKeyReused() *AppError {
	return New(CodeIdempotencyReuse, "Idempotency key was already used with a different request body", http.StatusUnprocessableEntity)
}

func IdempotencyKeyInFlight() *AppError {
	return New(CodeIdempotencyBusy, "A request with this idempotency key is still in progress", http.StatusConflict)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
