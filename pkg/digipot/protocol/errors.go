package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand indicates a Command value outside the defined set.
var ErrUnknownCommand = errors.New("unknown command")

// CombinationError indicates a command paired with the wrong data presence:
// Write without data, or any other command with data.
type CombinationError struct {
	Command Command
	HasData bool
}

// Error implements error.
func (e *CombinationError) Error() string {
	if e.HasData {
		return fmt.Sprintf("invalid combination: %s does not take data", e.Command)
	}
	return fmt.Sprintf("invalid combination: %s requires data", e.Command)
}

// AddressRangeError indicates an EEPROM slot beyond the device's range.
type AddressRangeError struct {
	Slot uint64
}

// Error implements error.
func (e *AddressRangeError) Error() string {
	return fmt.Sprintf("eeprom slot %d out of range 0-%d", e.Slot, EEPROMSlots-1)
}
