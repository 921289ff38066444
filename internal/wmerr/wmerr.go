// Package wmerr defines the result codes returned by stacking operations.
//
// A successful operation returns a nil error. Every other outcome is a Code,
// possibly wrapped with context, so callers can use errors.Is or CodeOf.
package wmerr

import "errors"

// Code is a non-OK result of a window-stacking operation.
type Code int

const (
	// OK is never returned as an error value; it exists so CodeOf(nil) has a name.
	OK Code = iota
	DoNothing
	NullPtr
	InvalidParam
	InvalidType
	DestroyedObject
	InvalidDisplay
)

var (
	ErrDoNothing       error = DoNothing
	ErrNullPtr         error = NullPtr
	ErrInvalidParam    error = InvalidParam
	ErrInvalidType     error = InvalidType
	ErrDestroyedObject error = DestroyedObject
	ErrInvalidDisplay  error = InvalidDisplay
)

func (c Code) Error() string {
	return c.String()
}

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case DoNothing:
		return "DO_NOTHING"
	case NullPtr:
		return "NULLPTR"
	case InvalidParam:
		return "INVALID_PARAM"
	case InvalidType:
		return "INVALID_TYPE"
	case DestroyedObject:
		return "DESTROYED_OBJECT"
	case InvalidDisplay:
		return "INVALID_DISPLAY"
	default:
		return "UNKNOWN"
	}
}

// CodeOf extracts the result code carried by err. A nil error is OK; an error
// that carries no Code is reported as InvalidParam.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return InvalidParam
}

// ParseCode is the inverse of Code.String.
func ParseCode(s string) (Code, bool) {
	for c := OK; c <= InvalidDisplay; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return OK, false
}
