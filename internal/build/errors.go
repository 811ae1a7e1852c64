package build

import (
	"errors"
	"fmt"
)

type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
)

// Error message constants for the builder.
const (
	ErrMsgUnknownCategory      = "Unknown component category"
	ErrMsgCategoryMismatch     = "Offering belongs to a different category"
	ErrMsgIndexOutOfRange      = "Selection index out of range"
	ErrMsgQuantityNotSupported = "Category does not carry a quantity"
	ErrMsgOfferingIDRequired   = "Offering ID is required"
	ErrMsgNegativePrice        = "Unit price must not be negative"
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	default:
		return "UNKNOWN"
	}
}

// Error reports a rejected builder operation. The build state is unchanged
// when an Error is returned.
type Error struct {
	Code    StatusCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewInvalidArgument(message string) *Error {
	return &Error{Code: StatusInvalidArgument, Message: message}
}

func NewInvalidArgumentf(format string, args ...any) *Error {
	return &Error{Code: StatusInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NewFailedPrecondition(message string) *Error {
	return &Error{Code: StatusFailedPrecondition, Message: message}
}

// CodeOf returns the status code carried by err, if any.
func CodeOf(err error) (StatusCode, bool) {
	var buildErr *Error
	if errors.As(err, &buildErr) {
		return buildErr.Code, true
	}
	return 0, false
}
