package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	for _, addr := range Addresses() {
		parsed, err := ParseAddress(addr.String())
		require.NoError(t, err)
		require.Equal(t, addr, parsed)
	}
	addr, err := ParseAddress("EEPROM4")
	require.NoError(t, err)
	require.Equal(t, MustDataEEPROM(4), addr)

	_, err = ParseAddress("eepromx")
	require.Error(t, err)
	_, err = ParseAddress("wiper2")
	require.Error(t, err)
}

func TestParseAddressSlotRange(t *testing.T) {
	testCases := []struct {
		name string
		slot uint64
	}{
		{"eeprom10", 10},
		{"eeprom255", 255},
		{"eeprom256", 256},
		{"EEPROM300", 300},
		{"eeprom18446744073709551615", 1<<64 - 1},
	}
	for _, tc := range testCases {
		_, err := ParseAddress(tc.name)
		require.Equal(t, &AddressRangeError{Slot: tc.slot}, err, tc.name)
	}
}

func TestParseCommand(t *testing.T) {
	for cmd := Write; cmd <= DisableWiperLock; cmd++ {
		parsed, err := ParseCommand(cmd.String())
		require.NoError(t, err)
		require.Equal(t, cmd, parsed)
	}
	_, err := ParseCommand("erase")
	require.Error(t, err)
	require.Equal(t, "command(9)", Command(9).String())
}

func TestOps(t *testing.T) {
	testCases := []struct {
		op     Op
		cmd    Command
		expect Frame
	}{
		{WriteOp(VolatileWiper0, 256), Write, Frame{Command: 0x01, Data: 0x00, HasData: true}},
		{IncrementOp(VolatileWiper1), Increment, Frame{Command: 0x14}},
		{DecrementOp(NonVolatileWiper0), Decrement, Frame{Command: 0x28}},
		{ReadOp(StatusRegister), Read, Frame{Command: 0x5c}},
		{EnableWiperLockOp(NonVolatileWiper0), EnableWiperLock, Frame{Command: 0x24}},
		{DisableWiperLockOp(NonVolatileWiper0), DisableWiperLock, Frame{Command: 0x60}},
	}
	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			require.Equal(t, tc.cmd, tc.op.Command())
			require.Equal(t, tc.expect, tc.op.Frame())
			f, err := Compose(tc.op.Address(), tc.op.Command(), tc.op.Data())
			require.NoError(t, err)
			require.Equal(t, tc.expect, f)
		})
	}
}
