package periph

import (
	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Transport clocks single bytes over an SPI connection. The connection is
// expected to leave chip-select alone (spi.NoCS).
type Transport struct {
	Conn spi.Conn
}

// Send implements digipot.Transport.
func (t *Transport) Send(b byte) error {
	_, err := t.Exchange(b)
	return err
}

// Exchange implements digipot.Exchanger.
func (t *Transport) Exchange(b byte) (byte, error) {
	var r [1]byte
	if err := t.Conn.Tx([]byte{b}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// ChipSelect drives chip-select with a GPIO pin.
type ChipSelect struct {
	Pin gpio.PinOut
}

// SetHigh implements digipot.ChipSelect.
func (c *ChipSelect) SetHigh() {
	c.out(gpio.High)
}

// SetLow implements digipot.ChipSelect.
func (c *ChipSelect) SetLow() {
	c.out(gpio.Low)
}

func (c *ChipSelect) out(l gpio.Level) {
	if err := c.Pin.Out(l); err != nil {
		glog.Errorf("CS %s: %v", c.Pin, err)
	}
}
