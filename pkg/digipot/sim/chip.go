package sim

import (
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/digipot.go/pkg/digipot/protocol"
)

// ErrNotSelected is returned when bytes are clocked while chip-select is high.
var ErrNotSelected = errors.New("chip not selected")

// DefaultSteps is the wiper range of a 8-bit part, 0 to 256 inclusive.
const DefaultSteps uint16 = 256

// Transaction is what the chip saw between one select and deselect.
type Transaction struct {
	Bytes []byte
}

// Complete indicates a whole frame was clocked in.
func (t Transaction) Complete() bool {
	return len(t.Bytes) == protocol.FrameSize
}

// Decoded decodes the frame. It's only meaningful when Complete.
func (t Transaction) Decoded() protocol.Decoded {
	var b [protocol.FrameSize]byte
	copy(b[:], t.Bytes)
	return protocol.Decode(b[0], b[1])
}

// Chip simulates the potentiometer on the bus side. It implements the
// ChipSelect, Transport and Exchanger of package digipot.
type Chip struct {
	// Steps is the maximum wiper position.
	Steps uint16

	lock     sync.Mutex
	selected bool
	current  []byte
	regs     [16]uint16
	locked   bool
	txs      []Transaction
}

// NewChip creates a deselected chip with wipers at mid scale.
func NewChip(steps uint16) *Chip {
	c := &Chip{Steps: steps}
	for _, addr := range []protocol.MemoryAddress{
		protocol.VolatileWiper0,
		protocol.VolatileWiper1,
		protocol.NonVolatileWiper0,
		protocol.NonVolatileWiper1,
	} {
		c.regs[addr.Code()>>4] = steps / 2
	}
	c.regs[protocol.VolatileTCONRegister.Code()>>4] = 0x1ff
	return c
}

// SetLow implements ChipSelect.
func (c *Chip) SetLow() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.selected {
		return
	}
	c.selected = true
	c.current = nil
}

// SetHigh implements ChipSelect.
func (c *Chip) SetHigh() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.selected {
		return
	}
	c.selected = false
	c.txs = append(c.txs, Transaction{Bytes: c.current})
	c.current = nil
}

// Send implements Transport.
func (c *Chip) Send(b byte) error {
	_, err := c.Exchange(b)
	return err
}

// Exchange implements Exchanger. During a Read the register contents are
// shifted out, otherwise the output line idles high.
func (c *Chip) Exchange(b byte) (byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.selected {
		return 0, ErrNotSelected
	}
	c.current = append(c.current, b)
	switch len(c.current) {
	case 1:
		d := protocol.Decode(b, 0)
		if d.Command == protocol.BitsRead {
			return 0xfc | byte(c.regs[d.Address]>>8)&0x03, nil
		}
	case protocol.FrameSize:
		d := protocol.Decode(c.current[0], c.current[1])
		if d.Command == protocol.BitsRead {
			return byte(c.regs[d.Address]), nil
		}
		c.apply(d)
	}
	return 0xff, nil
}

func (c *Chip) apply(d protocol.Decoded) {
	glog.V(4).Infof("SIM addr=%x cmd=%d data=%03x", d.Address, d.Command, d.Data)
	if d.Address == protocol.WiperLock.Code()>>4 {
		c.locked = d.Command == protocol.BitsIncrement
		return
	}
	wiper := d.Address < 4
	if c.locked && (d.Address == 2 || d.Address == 3) {
		return
	}
	reg := &c.regs[d.Address]
	switch d.Command {
	case protocol.BitsWrite:
		*reg = d.Data
		if wiper && *reg > c.Steps {
			*reg = c.Steps
		}
	case protocol.BitsIncrement:
		if wiper && *reg < c.Steps {
			*reg++
		}
	case protocol.BitsDecrement:
		if wiper && *reg > 0 {
			*reg--
		}
	}
}

// Register returns the contents of a register.
func (c *Chip) Register(addr protocol.MemoryAddress) uint16 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.regs[addr.Code()>>4]
}

// Wiper returns the volatile wiper 0 position.
func (c *Chip) Wiper() uint16 {
	return c.Register(protocol.VolatileWiper0)
}

// Locked indicates the non-volatile wipers are locked.
func (c *Chip) Locked() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.locked
}

// Selected indicates the chip-select line is low.
func (c *Chip) Selected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.selected
}

// Transactions returns the transactions seen so far.
func (c *Chip) Transactions() []Transaction {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Transaction(nil), c.txs...)
}
