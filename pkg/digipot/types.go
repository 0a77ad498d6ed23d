package digipot

import "time"

// Transport sends single bytes over the serial bus. Send blocks until the
// byte is transferred.
type Transport interface {
	Send(b byte) error
}

// Exchanger is implemented by full duplex transports, which clock a byte
// in while sending one.
type Exchanger interface {
	Exchange(b byte) (byte, error)
}

// ChipSelect drives the chip-select line of the device. Low selects.
type ChipSelect interface {
	SetHigh()
	SetLow()
}

// Sleeper provides the blocking delays between transaction steps.
// clock.Clock from github.com/benbjohnson/clock implements it.
type Sleeper interface {
	Sleep(time.Duration)
}

// TransportFunc is func form of Transport.
type TransportFunc func(b byte) error

// Send implements Transport.
func (f TransportFunc) Send(b byte) error {
	return f(b)
}
