package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var dataless = []Command{Increment, Decrement, Read, EnableWiperLock, DisableWiperLock}

func TestComposeWrite(t *testing.T) {
	for _, addr := range Addresses() {
		t.Run(addr.String(), func(t *testing.T) {
			for data := uint16(0); data <= 1023; data++ {
				f, err := Compose(addr, Write, Value(data))
				require.NoError(t, err)
				require.True(t, f.HasData)
				require.Equal(t, byte(data>>8)&0x03, f.Command&0x03)
				require.Equal(t, byte(data&0xff), f.Data)
				require.Equal(t, addr.Code(), f.Command&0xf0)
			}
		})
	}
}

func TestComposeDataless(t *testing.T) {
	for _, addr := range Addresses() {
		for _, cmd := range dataless {
			t.Run(addr.String()+"/"+cmd.String(), func(t *testing.T) {
				for _, x := range []uint16{0, 1, 0x3ff, 0xffff} {
					_, err := Compose(addr, cmd, Value(x))
					require.Error(t, err)
					require.IsType(t, &CombinationError{}, err)
					require.True(t, err.(*CombinationError).HasData)
				}
				f, err := Compose(addr, cmd, NoData)
				require.NoError(t, err)
				require.False(t, f.HasData)
				require.Zero(t, f.Data)
				require.Zero(t, f.Command&0x03)
			})
		}
	}
}

func TestComposeWriteWithoutData(t *testing.T) {
	for _, addr := range Addresses() {
		_, err := Compose(addr, Write, NoData)
		require.Error(t, err)
		require.IsType(t, &CombinationError{}, err)
		require.False(t, err.(*CombinationError).HasData)
		require.Contains(t, err.Error(), "requires data")
	}
}

func TestComposeUnknownCommand(t *testing.T) {
	_, err := Compose(VolatileWiper0, Command(42), NoData)
	require.Equal(t, ErrUnknownCommand, err)
}

func TestComposeAddressPlacement(t *testing.T) {
	testCases := []struct {
		name   string
		addr   MemoryAddress
		expect byte
	}{
		{"volatile wiper 0", VolatileWiper0, 0x0},
		{"volatile wiper 1", VolatileWiper1, 0x1},
		{"non-volatile wiper 0", NonVolatileWiper0, 0x2},
		{"non-volatile wiper 1", NonVolatileWiper1, 0x3},
		{"tcon", VolatileTCONRegister, 0x4},
		{"status", StatusRegister, 0x5},
		{"eeprom 0", MustDataEEPROM(0), 0x5},
		{"eeprom 3", MustDataEEPROM(3), 0x8},
		{"eeprom 9", MustDataEEPROM(9), 0xe},
		{"wiper lock", WiperLock, 0xf},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Compose(tc.addr, Read, NoData)
			require.NoError(t, err)
			require.Equal(t, tc.expect, f.Command>>4)
		})
	}
}

func TestComposeCommandCodes(t *testing.T) {
	testCases := []struct {
		cmd    Command
		data   Data
		expect byte
	}{
		{Write, Value(0), 0x00},
		{Increment, NoData, 0x04},
		{Decrement, NoData, 0x08},
		{Read, NoData, 0x0c},
		{EnableWiperLock, NoData, 0x04},
		{DisableWiperLock, NoData, 0x40},
	}
	for _, tc := range testCases {
		t.Run(tc.cmd.String(), func(t *testing.T) {
			f, err := Compose(VolatileWiper0, tc.cmd, tc.data)
			require.NoError(t, err)
			require.Equal(t, tc.expect, f.Command)
		})
	}
	// the wide DisableWiperLock code overlaps the address nibble.
	f, err := Compose(WiperLock, DisableWiperLock, NoData)
	require.NoError(t, err)
	require.Equal(t, byte(0xf0), f.Command)
	f, err = Compose(NonVolatileWiper1, DisableWiperLock, NoData)
	require.NoError(t, err)
	require.Equal(t, byte(0x70), f.Command)
}

func TestComposeMasksHighBits(t *testing.T) {
	testCases := []struct {
		data    uint16
		cmdLow  byte
		dataOut byte
	}{
		{0x0400, 0x00, 0x00},
		{0x0401, 0x00, 0x01},
		{0x07ff, 0x03, 0xff},
		{0xffff, 0x03, 0xff},
		{0x8100, 0x01, 0x00},
	}
	for _, tc := range testCases {
		f, err := Compose(NonVolatileWiper0, Write, Value(tc.data))
		require.NoError(t, err)
		require.Equal(t, byte(0x20)|tc.cmdLow, f.Command)
		require.Equal(t, tc.dataOut, f.Data)
	}
}

func TestComposeIdempotent(t *testing.T) {
	first, err := Compose(MustDataEEPROM(7), Write, Value(0x2a5))
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		f, err := Compose(MustDataEEPROM(7), Write, Value(0x2a5))
		require.NoError(t, err)
		require.Equal(t, first, f)
	}
	require.Equal(t, Frame{Command: 0xc2, Data: 0xa5, HasData: true}, first)
}

func TestDataEEPROMRange(t *testing.T) {
	for slot := uint8(0); slot < EEPROMSlots; slot++ {
		addr, err := DataEEPROM(slot)
		require.NoError(t, err)
		s, ok := addr.Slot()
		require.True(t, ok)
		require.Equal(t, slot, s)
	}
	for _, slot := range []uint8{10, 11, 15, 255} {
		_, err := DataEEPROM(slot)
		require.Error(t, err)
		require.Equal(t, &AddressRangeError{Slot: uint64(slot)}, err)
		require.Panics(t, func() { MustDataEEPROM(slot) })
	}
	_, ok := WiperLock.Slot()
	require.False(t, ok)
}

func TestDecode(t *testing.T) {
	for _, addr := range Addresses() {
		f := WriteOp(addr, 0x1ff).Frame()
		d := Decode(f.Command, f.Data)
		require.Equal(t, addr.Code()>>4, d.Address)
		require.Equal(t, BitsWrite, d.Command)
		require.Equal(t, uint16(0x1ff), d.Data)
	}
	d := Decode(0x5c, 0)
	require.Equal(t, Decoded{Address: 0x5, Command: BitsRead}, d)
}

func TestFrameBytes(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x00}, Frame{Command: 0x01}.Bytes())
	require.Equal(t, []byte{0x01, 0x80}, Frame{Command: 0x01, Data: 0x80, HasData: true}.Bytes())
	require.Equal(t, []byte{0x04, 0x00}, Frame{Command: 0x04, Data: 0x33}.Bytes())
}
