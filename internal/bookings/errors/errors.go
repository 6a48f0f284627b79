package errors

import "errors"

var (
	ErrCapacityExceeded = errors.New("booking capacity exceeded")

	ErrNothingToCancel = errors.New("no booking to cancel")

	ErrOutOfRange = errors.New("slot index out of range")

	ErrInvalidDateKey = errors.New("invalid date key")

	// ErrPersistenceParse marks stored data that could not be decoded. It is
	// logged and replaced with an empty default at load time.
	ErrPersistenceParse = errors.New("stored data could not be parsed")
)
