package errors

import "errors"

var (
	ErrNoProfile = errors.New("no saved contact profile")
)
