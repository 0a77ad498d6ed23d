package protocol

import "fmt"

// Op is an operation whose command and payload were paired by its
// constructor, so encoding it cannot fail.
type Op struct {
	addr MemoryAddress
	cmd  Command
	data Data
}

// WriteOp writes a data word to addr.
func WriteOp(addr MemoryAddress, v uint16) Op {
	return Op{addr: addr, cmd: Write, data: Value(v)}
}

// IncrementOp steps the wiper at addr up by one.
func IncrementOp(addr MemoryAddress) Op {
	return Op{addr: addr, cmd: Increment}
}

// DecrementOp steps the wiper at addr down by one.
func DecrementOp(addr MemoryAddress) Op {
	return Op{addr: addr, cmd: Decrement}
}

// ReadOp reads the register at addr.
func ReadOp(addr MemoryAddress) Op {
	return Op{addr: addr, cmd: Read}
}

// EnableWiperLockOp enables the wiper lock.
func EnableWiperLockOp(addr MemoryAddress) Op {
	return Op{addr: addr, cmd: EnableWiperLock}
}

// DisableWiperLockOp disables the wiper lock.
func DisableWiperLockOp(addr MemoryAddress) Op {
	return Op{addr: addr, cmd: DisableWiperLock}
}

// Address returns the target address.
func (o Op) Address() MemoryAddress { return o.addr }

// Command returns the command.
func (o Op) Command() Command { return o.cmd }

// Data returns the data word, if any.
func (o Op) Data() Data { return o.data }

// Frame encodes the operation.
func (o Op) Frame() Frame {
	return compose(o.addr, o.cmd, o.data)
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if o.data.Valid {
		return fmt.Sprintf("%s %s %d", o.addr, o.cmd, o.data.Value)
	}
	return fmt.Sprintf("%s %s", o.addr, o.cmd)
}
