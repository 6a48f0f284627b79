package handler

import (
	"errors"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/profiles/validator"
	"slotbook/internal/workflow"
	apperrors "slotbook/pkg/errors"
)

// toAppError maps domain failures onto HTTP-facing application errors.
func toAppError(err error) *apperrors.AppError {
	var (
		appErr      *apperrors.AppError
		verrs       validator.ValidationErrors
		unavailable *workflow.SlotUnavailableError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &verrs):
		details := make(map[string]any, len(verrs))
		for field, msg := range verrs.Fields() {
			details[field] = msg
		}
		return apperrors.Validation("Invalid contact details", details)
	case errors.As(err, &unavailable):
		return apperrors.SlotUnavailable(unavailable.Reason(), err)
	case errors.Is(err, bookingserrors.ErrCapacityExceeded):
		return apperrors.CapacityExceeded(err)
	case errors.Is(err, bookingserrors.ErrNothingToCancel):
		return apperrors.NothingToCancel(err)
	case errors.Is(err, bookingserrors.ErrOutOfRange):
		return apperrors.OutOfRange(err)
	case errors.Is(err, bookingserrors.ErrInvalidDateKey):
		return apperrors.InvalidInput("Invalid date")
	case errors.Is(err, workflow.ErrBusy):
		return apperrors.WorkflowBusy(err)
	case errors.Is(err, workflow.ErrInvalidTransition):
		return apperrors.InvalidTransition(err)
	default:
		return apperrors.Internal("Failed to process booking request", err)
	}
}

// withResult attaches the step's notification, if any, to an error response.
func withResult(appErr *apperrors.AppError, res workflow.Result) *apperrors.AppError {
	if res.Notification == nil {
		return appErr
	}
	details := make(map[string]any, len(appErr.Details)+2)
	for k, v := range appErr.Details {
		details[k] = v
	}
	details["state"] = res.State
	details["notification"] = res.Notification

	withNotification := *appErr
	return withNotification.WithDetails(details)
}
