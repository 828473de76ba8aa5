package core

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrNoActiveProfile    = errors.New("no active profile")
	ErrNotFound           = errors.New("not found")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrEmptyData          = errors.New("no data")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Validation failures, all wrapping ErrValidation.
var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	ErrMissingDate     = fmt.Errorf("%w: date is required", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: profile name is required", ErrValidation)
	ErrNameTooLong     = fmt.Errorf("%w: profile name must be at most %d characters", ErrValidation, MaxProfileNameLength)
	ErrDuplicateName   = fmt.Errorf("%w: profile name already exists", ErrValidation)
	ErrInvalidMonth    = fmt.Errorf("%w: month must be formatted as YYYY-MM", ErrValidation)
	ErrInvalidMode     = fmt.Errorf("%w: import mode must be replace or append", ErrValidation)
)
