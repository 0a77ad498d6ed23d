package digipot

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"

	"github.com/robotalks/digipot.go/pkg/digipot/protocol"
)

// DefaultSettle is the delay after selecting and before deselecting the chip.
const DefaultSettle = time.Millisecond

// Device drives one potentiometer. It exclusively owns the chip-select line.
// Device is not safe for concurrent use; callers on multiple goroutines must
// serialize access.
type Device struct {
	// Clock provides the settle delays.
	Clock Sleeper
	// Settle is the delay on both ends of a transaction.
	Settle time.Duration

	cs        ChipSelect
	fullScale uint16
	nBits     uint16
}

// New creates a Device and deselects the chip. fullScale is the largest
// resistance accepted by SetResistance and nBits the raw step count it maps to.
func New(cs ChipSelect, fullScale, nBits uint16) *Device {
	cs.SetHigh()
	return &Device{
		Clock:     clock.New(),
		Settle:    DefaultSettle,
		cs:        cs,
		fullScale: fullScale,
		nBits:     nBits,
	}
}

// FullScale returns the largest accepted resistance.
func (d *Device) FullScale() uint16 {
	return d.fullScale
}

// NBits returns the raw step count at full scale.
func (d *Device) NBits() uint16 {
	return d.nBits
}

// Steps converts a resistance into raw wiper steps, capping at full scale.
func (d *Device) Steps(resistance uint16) uint16 {
	if d.fullScale == 0 {
		return 0
	}
	if resistance > d.fullScale {
		resistance = d.fullScale
	}
	return uint16(uint32(resistance) * uint32(d.nBits) / uint32(d.fullScale))
}

// Resistance converts raw wiper steps back into resistance.
func (d *Device) Resistance(steps uint16) uint16 {
	if d.nBits == 0 {
		return 0
	}
	if steps > d.nBits {
		steps = d.nBits
	}
	return uint16(uint32(steps) * uint32(d.fullScale) / uint32(d.nBits))
}

// SetResistance writes the volatile wiper 0 to the position closest below
// resistance. Values above full scale are capped.
func (d *Device) SetResistance(tr Transport, resistance uint16) (protocol.Frame, error) {
	return d.Do(tr, protocol.WriteOp(protocol.VolatileWiper0, d.Steps(resistance)))
}

// SendCommand encodes and sends one command. An illegal command/data pairing
// is reported before the chip is selected.
func (d *Device) SendCommand(tr Transport, addr protocol.MemoryAddress, cmd protocol.Command, data protocol.Data) (protocol.Frame, error) {
	f, err := protocol.Compose(addr, cmd, data)
	if err != nil {
		return f, err
	}
	return f, d.transact(tr, nil, f, nil)
}

// Do sends an operation.
func (d *Device) Do(tr Transport, op protocol.Op) (protocol.Frame, error) {
	f := op.Frame()
	return f, d.transact(tr, nil, f, nil)
}

// ReadRegister reads a register. The transport must implement Exchanger.
func (d *Device) ReadRegister(tr Transport, addr protocol.MemoryAddress) (uint16, error) {
	x, ok := tr.(Exchanger)
	if !ok {
		return 0, ErrReadUnsupported
	}
	var rx [protocol.FrameSize]byte
	if err := d.transact(tr, x, protocol.ReadOp(addr).Frame(), rx[:]); err != nil {
		return 0, err
	}
	return uint16(rx[0]&0x03)<<8 | uint16(rx[1]), nil
}

func (d *Device) transact(tr Transport, x Exchanger, f protocol.Frame, rx []byte) error {
	glog.V(4).Infof("TX [%s]", f)
	d.cs.SetLow()
	d.settle()
	for n, b := range f.Bytes() {
		var err error
		if x != nil {
			rx[n], err = x.Exchange(b)
		} else {
			err = tr.Send(b)
		}
		if err != nil {
			d.cs.SetHigh()
			return &TransactionError{Frame: f, Sent: n, Err: err}
		}
	}
	d.settle()
	d.cs.SetHigh()
	return nil
}

func (d *Device) settle() {
	if d.Clock != nil && d.Settle > 0 {
		d.Clock.Sleep(d.Settle)
	}
}
