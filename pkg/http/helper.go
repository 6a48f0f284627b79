package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"slotbook/pkg/clock"
	apperrors "slotbook/pkg/errors"
)

// ParseDate parses a yyyy-MM-dd request value into local midnight.
func ParseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput(name + " is required (yyyy-MM-dd)")
	}
	t, err := clock.ParseDateKey(value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter: " + value)
	}
	return t, nil
}

func ParseSlotIndex(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid slot parameter: " + value)
	}
	return n, nil
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
