package device

import (
	"errors"
	"fmt"
)

var ErrQueueClosed = errors.New("device: queue is closed")

// TerminalError marks a failure after which the GPIO lines can no longer be
// trusted. The queue closes the cartridge and stops.
type TerminalError struct {
	wrapped error
}

func NewTerminalError(err error) *TerminalError { return &TerminalError{wrapped: err} }

func (e *TerminalError) Unwrap() error { return e.wrapped }
func (e *TerminalError) Error() string {
	if e.wrapped == nil {
		return "device terminal error"
	}
	return fmt.Sprintf("device terminal error: %v", e.wrapped)
}

func IsTerminalError(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}
