package digipot

import (
	"errors"
	"fmt"

	"github.com/robotalks/digipot.go/pkg/digipot/protocol"
)

// ErrReadUnsupported indicates the transport can't clock data back in.
var ErrReadUnsupported = errors.New("transport does not support reading")

// TransactionError wraps a transport failure in the middle of a frame.
// The device state is unknown afterwards.
type TransactionError struct {
	Frame protocol.Frame
	// Sent is the number of bytes transferred before the failure.
	Sent int
	Err  error
}

// Error implements error.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction [%s] failed after %d byte(s): %v", e.Frame, e.Sent, e.Err)
}

// Unwrap returns the transport error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}
