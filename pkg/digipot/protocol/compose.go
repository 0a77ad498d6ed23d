package protocol

// DataMask keeps the 10 bits of the device's data path.
const DataMask uint16 = 0x03ff

// Compose encodes an operation into a frame. Write requires data and every
// other command requires its absence; the opposite fails with
// *CombinationError. Data bits above bit 9 are discarded.
func Compose(addr MemoryAddress, cmd Command, data Data) (Frame, error) {
	if !cmd.IsValid() {
		return Frame{}, ErrUnknownCommand
	}
	if cmd.RequiresData() != data.Valid {
		return Frame{}, &CombinationError{Command: cmd, HasData: data.Valid}
	}
	return compose(addr, cmd, data), nil
}

func compose(addr MemoryAddress, cmd Command, data Data) Frame {
	f := Frame{Command: addr.Code() | cmd.Code()}
	if data.Valid {
		v := data.Value & DataMask
		f.Command |= byte(v>>8) & 0x03
		f.Data, f.HasData = byte(v), true
	}
	return f
}

// Decoded is a frame split back into its bit fields.
type Decoded struct {
	// Address is the 4-bit address code.
	Address byte
	// Command is the 2-bit command code.
	Command byte
	// Data is the 10-bit data word.
	Data uint16
}

// Command bits after decoding.
const (
	BitsWrite     byte = CodeWrite >> 2
	BitsIncrement byte = CodeIncrement >> 2
	BitsDecrement byte = CodeDecrement >> 2
	BitsRead      byte = CodeRead >> 2
)

// Decode splits the two frame bytes the way the device reads them.
func Decode(cmdByte, dataByte byte) Decoded {
	return Decoded{
		Address: cmdByte >> 4,
		Command: (cmdByte >> 2) & 0x03,
		Data:    uint16(cmdByte&0x03)<<8 | uint16(dataByte),
	}
}
