package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1/msgs"
)

// StatusQuery queries the controller status.
type StatusQuery struct {
}

// NewMessage implements Message.
func (m *StatusQuery) NewMessage() fx.Message { return &StatusQuery{} }

// TypeID implements SerializableMessage.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *StatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *StatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusQuery) Reset() { *m = StatusQuery{} }

// String implements proto.Message.
func (m *StatusQuery) String() string { return proto.CompactTextString(m) }

// StatusReply is the response for StatusQuery.
type StatusReply struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *StatusReply) NewMessage() fx.Message { return &StatusReply{} }

// TypeID implements SerializableMessage.
func (m *StatusReply) TypeID() uint32 { return StatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *StatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *StatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusReply) Reset() { *m = StatusReply{} }

// String implements proto.Message.
func (m *StatusReply) String() string { return proto.CompactTextString(m) }

// Status reflects the device and sweep state. It's also published as an
// event whenever it changes.
type Status struct {
	FullScale  uint32 `protobuf:"varint,1,opt,name=full_scale,json=fullScale,proto3" json:"full_scale,omitempty"`
	NBits      uint32 `protobuf:"varint,2,opt,name=n_bits,json=nBits,proto3" json:"n_bits,omitempty"`
	Resistance uint32 `protobuf:"varint,3,opt,name=resistance,proto3" json:"resistance,omitempty"`
	Wiper      uint32 `protobuf:"varint,4,opt,name=wiper,proto3" json:"wiper,omitempty"`
	Failed     bool   `protobuf:"varint,5,opt,name=failed,proto3" json:"failed,omitempty"`
	Error      string `protobuf:"bytes,6,opt,name=error,proto3" json:"error,omitempty"`
	Sweeping   bool   `protobuf:"varint,7,opt,name=sweeping,proto3" json:"sweeping,omitempty"`
	SweepStep  uint32 `protobuf:"varint,8,opt,name=sweep_step,json=sweepStep,proto3" json:"sweep_step,omitempty"`
}

// NewMessage implements Message.
func (m *Status) NewMessage() fx.Message { return &Status{} }

// TypeID implements SerializableMessage.
func (m *Status) TypeID() uint32 { return StatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *Status) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

// SetResistance sets volatile wiper 0 from a resistance.
type SetResistance struct {
	Resistance uint32 `protobuf:"varint,1,opt,name=resistance,proto3" json:"resistance,omitempty"`
}

// NewMessage implements Message.
func (m *SetResistance) NewMessage() fx.Message { return &SetResistance{} }

// TypeID implements SerializableMessage.
func (m *SetResistance) TypeID() uint32 { return SetResistanceTypeID }

// Serializable implements SerializableMessage.
func (m *SetResistance) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SetResistance) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetResistance) Reset() { *m = SetResistance{} }

// String implements proto.Message.
func (m *SetResistance) String() string { return proto.CompactTextString(m) }

// SendCommand issues one raw operation. Address and Command are names
// accepted by protocol.ParseAddress and protocol.ParseCommand.
type SendCommand struct {
	Address string `protobuf:"bytes,1,opt,name=address,proto3" json:"address,omitempty"`
	Command string `protobuf:"bytes,2,opt,name=command,proto3" json:"command,omitempty"`
	Data    uint32 `protobuf:"varint,3,opt,name=data,proto3" json:"data,omitempty"`
	HasData bool   `protobuf:"varint,4,opt,name=has_data,json=hasData,proto3" json:"has_data,omitempty"`
}

// NewMessage implements Message.
func (m *SendCommand) NewMessage() fx.Message { return &SendCommand{} }

// TypeID implements SerializableMessage.
func (m *SendCommand) TypeID() uint32 { return SendCommandTypeID }

// Serializable implements SerializableMessage.
func (m *SendCommand) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SendCommand) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SendCommand) Reset() { *m = SendCommand{} }

// String implements proto.Message.
func (m *SendCommand) String() string { return proto.CompactTextString(m) }

// FrameSent replies SetResistance and SendCommand with the bytes clocked out.
type FrameSent struct {
	Command uint32 `protobuf:"varint,1,opt,name=command,proto3" json:"command,omitempty"`
	Data    uint32 `protobuf:"varint,2,opt,name=data,proto3" json:"data,omitempty"`
	HasData bool   `protobuf:"varint,3,opt,name=has_data,json=hasData,proto3" json:"has_data,omitempty"`
}

// NewMessage implements Message.
func (m *FrameSent) NewMessage() fx.Message { return &FrameSent{} }

// TypeID implements SerializableMessage.
func (m *FrameSent) TypeID() uint32 { return FrameSentTypeID }

// Serializable implements SerializableMessage.
func (m *FrameSent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *FrameSent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *FrameSent) Reset() { *m = FrameSent{} }

// String implements proto.Message.
func (m *FrameSent) String() string { return proto.CompactTextString(m) }

// ReadRegister reads a register.
type ReadRegister struct {
	Address string `protobuf:"bytes,1,opt,name=address,proto3" json:"address,omitempty"`
}

// NewMessage implements Message.
func (m *ReadRegister) NewMessage() fx.Message { return &ReadRegister{} }

// TypeID implements SerializableMessage.
func (m *ReadRegister) TypeID() uint32 { return ReadRegisterTypeID }

// Serializable implements SerializableMessage.
func (m *ReadRegister) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ReadRegister) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ReadRegister) Reset() { *m = ReadRegister{} }

// String implements proto.Message.
func (m *ReadRegister) String() string { return proto.CompactTextString(m) }

// RegisterValue is the response for ReadRegister.
type RegisterValue struct {
	Address string `protobuf:"bytes,1,opt,name=address,proto3" json:"address,omitempty"`
	Value   uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

// NewMessage implements Message.
func (m *RegisterValue) NewMessage() fx.Message { return &RegisterValue{} }

// TypeID implements SerializableMessage.
func (m *RegisterValue) TypeID() uint32 { return RegisterValueTypeID }

// Serializable implements SerializableMessage.
func (m *RegisterValue) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RegisterValue) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RegisterValue) Reset() { *m = RegisterValue{} }

// String implements proto.Message.
func (m *RegisterValue) String() string { return proto.CompactTextString(m) }

// SweepStart starts a resistance sweep. Zero values use the controller's
// defaults.
type SweepStart struct {
	Steps    uint32 `protobuf:"varint,1,opt,name=steps,proto3" json:"steps,omitempty"`
	StepSize uint32 `protobuf:"varint,2,opt,name=step_size,json=stepSize,proto3" json:"step_size,omitempty"`
	Once     bool   `protobuf:"varint,3,opt,name=once,proto3" json:"once,omitempty"`
}

// NewMessage implements Message.
func (m *SweepStart) NewMessage() fx.Message { return &SweepStart{} }

// TypeID implements SerializableMessage.
func (m *SweepStart) TypeID() uint32 { return SweepStartTypeID }

// Serializable implements SerializableMessage.
func (m *SweepStart) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SweepStart) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SweepStart) Reset() { *m = SweepStart{} }

// String implements proto.Message.
func (m *SweepStart) String() string { return proto.CompactTextString(m) }

// SweepStop stops the sweep, leaving the wiper where it is.
type SweepStop struct {
}

// NewMessage implements Message.
func (m *SweepStop) NewMessage() fx.Message { return &SweepStop{} }

// TypeID implements SerializableMessage.
func (m *SweepStop) TypeID() uint32 { return SweepStopTypeID }

// Serializable implements SerializableMessage.
func (m *SweepStop) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SweepStop) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SweepStop) Reset() { *m = SweepStop{} }

// String implements proto.Message.
func (m *SweepStop) String() string { return proto.CompactTextString(m) }

// SweepSample is an event carrying the measurement at one sweep step.
type SweepSample struct {
	Step       uint32 `protobuf:"varint,1,opt,name=step,proto3" json:"step,omitempty"`
	Resistance uint32 `protobuf:"varint,2,opt,name=resistance,proto3" json:"resistance,omitempty"`
	Wiper      uint32 `protobuf:"varint,3,opt,name=wiper,proto3" json:"wiper,omitempty"`
	Raw        int32  `protobuf:"varint,4,opt,name=raw,proto3" json:"raw,omitempty"`
	Voltage    int64  `protobuf:"varint,5,opt,name=voltage,proto3" json:"voltage,omitempty"`
}

// NewMessage implements Message.
func (m *SweepSample) NewMessage() fx.Message { return &SweepSample{} }

// TypeID implements SerializableMessage.
func (m *SweepSample) TypeID() uint32 { return SweepSampleEventTypeID }

// Serializable implements SerializableMessage.
func (m *SweepSample) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SweepSample) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SweepSample) Reset() { *m = SweepSample{} }

// String implements proto.Message.
func (m *SweepSample) String() string { return proto.CompactTextString(m) }

// GroupDigipot defines the custom group.
const GroupDigipot = msgs.GroupCustom | 0x00010000

// TypeIDs
const (
	StatusEventTypeID      uint32 = GroupDigipot | msgs.TypeIDKindEvent | 0x0000
	SweepSampleEventTypeID uint32 = GroupDigipot | msgs.TypeIDKindEvent | 0x0001

	StatusQueryTypeID   uint32 = GroupDigipot | 0x0000
	SetResistanceTypeID uint32 = GroupDigipot | 0x0001
	SendCommandTypeID   uint32 = GroupDigipot | 0x0002
	ReadRegisterTypeID  uint32 = GroupDigipot | 0x0003
	SweepStartTypeID    uint32 = GroupDigipot | 0x0004
	SweepStopTypeID     uint32 = GroupDigipot | 0x0005

	StatusReplyTypeID   uint32 = GroupDigipot | msgs.TypeIDMaskReply | 0x0000
	FrameSentTypeID     uint32 = GroupDigipot | msgs.TypeIDMaskReply | 0x0001
	RegisterValueTypeID uint32 = GroupDigipot | msgs.TypeIDMaskReply | 0x0003
)

func init() {
	msgs.MessageTypes[StatusQueryTypeID] = (*StatusQuery)(nil)
	msgs.MessageTypes[StatusReplyTypeID] = (*StatusReply)(nil)
	msgs.MessageTypes[StatusEventTypeID] = (*Status)(nil)
	msgs.MessageTypes[SetResistanceTypeID] = (*SetResistance)(nil)
	msgs.MessageTypes[SendCommandTypeID] = (*SendCommand)(nil)
	msgs.MessageTypes[FrameSentTypeID] = (*FrameSent)(nil)
	msgs.MessageTypes[ReadRegisterTypeID] = (*ReadRegister)(nil)
	msgs.MessageTypes[RegisterValueTypeID] = (*RegisterValue)(nil)
	msgs.MessageTypes[SweepStartTypeID] = (*SweepStart)(nil)
	msgs.MessageTypes[SweepStopTypeID] = (*SweepStop)(nil)
	msgs.MessageTypes[SweepSampleEventTypeID] = (*SweepSample)(nil)
}
