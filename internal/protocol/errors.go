package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected   = errors.New("protocol: port not opened or connection lost")
	ErrTransport      = errors.New("protocol: transport failure")
	ErrMalformed      = errors.New("protocol: malformed frame")
	ErrWrongEnvelope  = errors.New("protocol: unexpected envelope")
	ErrBadField       = errors.New("protocol: bad field")
	ErrInvalidRequest = errors.New("protocol: invalid request")
)

// TransportError wraps a failure of the underlying read or write primitive.
type TransportError struct {
	Op  string
	Err error
}

func (that *TransportError) Error() string {
	return fmt.Sprintf("protocol: %s: %v", that.Op, that.Err)
}

func (that *TransportError) Unwrap() error {
	return that.Err
}

func (that *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// BadFieldError reports a field that is missing or cannot be interpreted.
type BadFieldError struct {
	Field string
	Value string
}

func (that *BadFieldError) Error() string {
	return fmt.Sprintf("protocol: bad field %q: %q", that.Field, that.Value)
}

func (that *BadFieldError) Is(target error) bool {
	return target == ErrBadField
}

// IsDecodeError reports whether err means a frame arrived but could not be used.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrWrongEnvelope) || errors.Is(err, ErrBadField)
}
