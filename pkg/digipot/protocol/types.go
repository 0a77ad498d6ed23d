package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is an operation understood by the device.
type Command uint8

// Commands
const (
	Write Command = iota
	Increment
	Decrement
	Read
	EnableWiperLock
	DisableWiperLock
)

// Positioned command codes (bits 2-3 of the command byte).
// EnableWiperLock shares the Increment code and is told apart by the
// address it is paired with. DisableWiperLock uses a wider code.
const (
	CodeWrite            byte = 0x00 << 2
	CodeIncrement        byte = 0x01 << 2
	CodeDecrement        byte = 0x02 << 2
	CodeRead             byte = 0x03 << 2
	CodeEnableWiperLock  byte = 0x01 << 2
	CodeDisableWiperLock byte = 0x10 << 2
)

var commandNames = [...]string{
	Write:            "write",
	Increment:        "inc",
	Decrement:        "dec",
	Read:             "read",
	EnableWiperLock:  "lock",
	DisableWiperLock: "unlock",
}

// IsValid reports whether c is one of the defined commands.
func (c Command) IsValid() bool {
	return int(c) < len(commandNames)
}

// Code returns the command code positioned in the command byte.
func (c Command) Code() byte {
	switch c {
	case Increment:
		return CodeIncrement
	case Decrement:
		return CodeDecrement
	case Read:
		return CodeRead
	case EnableWiperLock:
		return CodeEnableWiperLock
	case DisableWiperLock:
		return CodeDisableWiperLock
	}
	return CodeWrite
}

// RequiresData reports whether the command must carry a data word.
// Write is the only one; all others must not.
func (c Command) RequiresData() bool {
	return c == Write
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if c.IsValid() {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

// ParseCommand converts a command name into Command.
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(name)
	for n, s := range commandNames {
		if s == name {
			return Command(n), nil
		}
	}
	return Write, fmt.Errorf("unknown command %q", name)
}

type addressKind uint8

const (
	kindVolatileWiper0 addressKind = iota
	kindVolatileWiper1
	kindNonVolatileWiper0
	kindNonVolatileWiper1
	kindVolatileTCON
	kindStatus
	kindDataEEPROM
	kindWiperLock
)

// EEPROMSlots is the number of general purpose EEPROM locations.
const EEPROMSlots = 10

// MemoryAddress is a register of the device. Values can only be obtained
// from the predefined addresses or DataEEPROM, so an out of range EEPROM
// slot never reaches the encoder.
type MemoryAddress struct {
	kind addressKind
	slot uint8
}

// Predefined addresses.
var (
	VolatileWiper0       = MemoryAddress{kind: kindVolatileWiper0}
	VolatileWiper1       = MemoryAddress{kind: kindVolatileWiper1}
	NonVolatileWiper0    = MemoryAddress{kind: kindNonVolatileWiper0}
	NonVolatileWiper1    = MemoryAddress{kind: kindNonVolatileWiper1}
	VolatileTCONRegister = MemoryAddress{kind: kindVolatileTCON}
	StatusRegister       = MemoryAddress{kind: kindStatus}
	WiperLock            = MemoryAddress{kind: kindWiperLock}
)

// DataEEPROM returns the address of a general purpose EEPROM slot.
func DataEEPROM(slot uint8) (MemoryAddress, error) {
	if slot >= EEPROMSlots {
		return MemoryAddress{}, &AddressRangeError{Slot: uint64(slot)}
	}
	return MemoryAddress{kind: kindDataEEPROM, slot: slot}, nil
}

// MustDataEEPROM is DataEEPROM for constant slots, it panics when the slot
// is out of range.
func MustDataEEPROM(slot uint8) MemoryAddress {
	addr, err := DataEEPROM(slot)
	if err != nil {
		panic(err)
	}
	return addr
}

// Slot returns the EEPROM slot and whether the address is an EEPROM slot.
func (a MemoryAddress) Slot() (uint8, bool) {
	return a.slot, a.kind == kindDataEEPROM
}

// Code returns the address code positioned in the command byte (bits 4-7).
func (a MemoryAddress) Code() byte {
	var code byte
	switch a.kind {
	case kindVolatileWiper0:
		code = 0x00
	case kindVolatileWiper1:
		code = 0x01
	case kindNonVolatileWiper0:
		code = 0x02
	case kindNonVolatileWiper1:
		code = 0x03
	case kindVolatileTCON:
		code = 0x04
	case kindStatus:
		code = 0x05
	case kindDataEEPROM:
		code = 0x05 + a.slot
	case kindWiperLock:
		code = 0x0F
	}
	return code << 4
}

// String implements fmt.Stringer.
func (a MemoryAddress) String() string {
	switch a.kind {
	case kindVolatileWiper0:
		return "wiper0"
	case kindVolatileWiper1:
		return "wiper1"
	case kindNonVolatileWiper0:
		return "nvwiper0"
	case kindNonVolatileWiper1:
		return "nvwiper1"
	case kindVolatileTCON:
		return "tcon"
	case kindStatus:
		return "status"
	case kindDataEEPROM:
		return "eeprom" + strconv.Itoa(int(a.slot))
	case kindWiperLock:
		return "wiperlock"
	}
	return "address(?)"
}

// Addresses lists every valid address.
func Addresses() []MemoryAddress {
	addrs := []MemoryAddress{
		VolatileWiper0,
		VolatileWiper1,
		NonVolatileWiper0,
		NonVolatileWiper1,
		VolatileTCONRegister,
		StatusRegister,
	}
	for slot := uint8(0); slot < EEPROMSlots; slot++ {
		addrs = append(addrs, MustDataEEPROM(slot))
	}
	return append(addrs, WiperLock)
}

// ParseAddress converts an address name (as produced by String) into
// MemoryAddress.
func ParseAddress(name string) (MemoryAddress, error) {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "eeprom") {
		slot, err := strconv.ParseUint(name[len("eeprom"):], 10, 64)
		if err != nil {
			return MemoryAddress{}, fmt.Errorf("invalid eeprom slot in %q", name)
		}
		if slot >= EEPROMSlots {
			return MemoryAddress{}, &AddressRangeError{Slot: slot}
		}
		return DataEEPROM(uint8(slot))
	}
	for _, addr := range Addresses() {
		if addr.String() == name {
			return addr, nil
		}
	}
	return MemoryAddress{}, fmt.Errorf("unknown address %q", name)
}

// Data is an optional data word.
type Data struct {
	Value uint16
	Valid bool
}

// NoData is the absent data word.
var NoData = Data{}

// Value creates a present data word.
func Value(v uint16) Data {
	return Data{Value: v, Valid: true}
}

// Frame is the encoded form of one operation.
type Frame struct {
	Command byte
	Data    byte
	HasData bool
}

// FrameSize is the number of bytes clocked per transaction.
const FrameSize = 2

// Bytes returns the bytes on the wire, the data byte is zero if absent.
func (f Frame) Bytes() []byte {
	b := []byte{f.Command, 0}
	if f.HasData {
		b[1] = f.Data
	}
	return b
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	if f.HasData {
		return fmt.Sprintf("%02x %02x", f.Command, f.Data)
	}
	return fmt.Sprintf("%02x --", f.Command)
}
