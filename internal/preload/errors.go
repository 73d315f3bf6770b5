package preload

import "errors"

var (
	// ErrAuthentication is returned when no usable credential is stored. It
	// wraps the underlying session error.
	ErrAuthentication = errors.New("authentication required")
	// ErrUnknownCategory is returned by Refresh for an unrecognised category.
	ErrUnknownCategory = errors.New("unknown refresh category")
)
