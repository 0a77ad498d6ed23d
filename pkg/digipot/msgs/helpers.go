// Package msgs defines the messages a digipot controller accepts and
// publishes.
package msgs

import (
	"fmt"

	"github.com/robotalks/digipot.go/pkg/digipot/protocol"
	"github.com/robotalks/digipot.go/pkg/digipot/sweep"
)

// Op parses the operation named by the message.
func (m *SendCommand) Op() (addr protocol.MemoryAddress, cmd protocol.Command, data protocol.Data, err error) {
	if addr, err = protocol.ParseAddress(m.Address); err != nil {
		return
	}
	if cmd, err = protocol.ParseCommand(m.Command); err != nil {
		return
	}
	if m.HasData {
		if m.Data > 0xffff {
			err = fmt.Errorf("data %#x exceeds 16 bits", m.Data)
			return
		}
		data = protocol.Value(uint16(m.Data))
	}
	return
}

// NewFrameSent creates a FrameSent from a frame.
func NewFrameSent(f protocol.Frame) *FrameSent {
	return &FrameSent{
		Command: uint32(f.Command),
		Data:    uint32(f.Data),
		HasData: f.HasData,
	}
}

// Frame converts back to protocol.Frame.
func (m *FrameSent) Frame() protocol.Frame {
	return protocol.Frame{
		Command: byte(m.Command),
		Data:    byte(m.Data),
		HasData: m.HasData,
	}
}

// NewSweepSample creates a SweepSample event.
func NewSweepSample(s sweep.Sample) *SweepSample {
	return &SweepSample{
		Step:       uint32(s.Step),
		Resistance: uint32(s.Resistance),
		Wiper:      uint32(s.Wiper),
		Raw:        s.Raw,
		Voltage:    int64(s.V),
	}
}
