package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.StatusCode() != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.StatusCode())
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "profile not found"},
			expected: "NOT_FOUND: profile not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("disk full"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("booking capacity exceeded")
	appErr := CapacityExceeded(sentinel)

	if !errors.Is(appErr, sentinel) {
		t.Errorf("errors.Is should see the wrapped sentinel")
	}
}

func TestDomainConstructors(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"capacity exceeded", CapacityExceeded(cause), CodeCapacityExceeded, http.StatusConflict},
		{"nothing to cancel", NothingToCancel(cause), CodeNothingToCancel, http.StatusConflict},
		{"out of range", OutOfRange(cause), CodeOutOfRange, http.StatusBadRequest},
		{"slot unavailable", SlotUnavailable("This time slot has passed", cause), CodeSlotUnavailable, http.StatusConflict},
		{"workflow busy", WorkflowBusy(cause), CodeWorkflowBusy, http.StatusConflict},
		{"invalid transition", InvalidTransition(cause), CodeInvalidTransition, http.StatusConflict},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unavailable", Unavailable("storage"), CodeUnavailable, http.StatusServiceUnavailable},
		{"idempotency key reused", IdempotencyKeyReused(), CodeIdempotencyReuse, http.StatusUnprocessableEntity},
		{"idempotency key in flight", IdempotencyKeyInFlight(), CodeIdempotencyBusy, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.HTTPStatus)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	original := Conflict("already booked")
	wrapped := fmt.Errorf("commit: %w", original)

	if got := AsAppError(wrapped); got != original {
		t.Errorf("AsAppError should unwrap to the original AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError should report true for wrapped AppError")
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected plain errors to become %s, got %s", CodeInternal, got.Code)
	}
	if !errors.Is(got, plain) {
		t.Errorf("internal error should wrap the plain error")
	}
}

func TestToJSON(t *testing.T) {
	err := Validation("Contact details are invalid", map[string]any{"email": "Please enter a valid email address"})
	want := `{"code":"VALIDATION_ERROR","message":"Contact details are invalid","details":{"email":"Please enter a valid email address"}}`
	if got := string(err.ToJSON()); got != want {
		t.Errorf("ToJSON() = %s, want %s", got, want)
	}
}
