package comm

import (
	"context"
	"fmt"
	"io"

	"github.com/robotalks/digipot.go/pkg/l1"
	"github.com/robotalks/digipot.go/pkg/l1/msgs"
)

// DialFunc opens a packet connection to a controller served by a Hub.
type DialFunc func(context.Context) (PacketReadWriter, error)

// DirectConnector implements l1.Connector for the single controller behind
// a Hub.
type DirectConnector struct {
	Dial DialFunc
}

// ErrControllerMismatch is returned when the connected controller isn't
// the requested one.
type ErrControllerMismatch struct {
	Expected l1.ControllerRef
	Actual   l1.ControllerRef
}

// Error implements error.
func (e *ErrControllerMismatch) Error() string {
	return fmt.Sprintf("connected to %s, expected %s", e.Actual.Name(), e.Expected.Name())
}

// ReadHello reads the greeting sent by a Hub.
func ReadHello(r PacketReader) (l1.ControllerInfo, error) {
	var info l1.ControllerInfo
	pkt, err := r.ReadPacket()
	if err != nil {
		return info, err
	}
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		return info, err
	}
	msg, err := typed.Decode()
	if err != nil {
		return info, err
	}
	hello, ok := msg.(*msgs.ControllerHello)
	if !ok {
		return info, fmt.Errorf("expect ControllerHello, got %T", msg)
	}
	info.Ref = l1.ControllerRef{Type: hello.Type, ID: hello.ID}
	info.Meta.Description = hello.Description
	return info, nil
}

// Discover implements Connector.
func (c *DirectConnector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	rw, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer closeRW(rw)
	info, err := ReadHello(rw)
	if err != nil {
		return nil, err
	}
	return []l1.ControllerInfo{info}, nil
}

// Connect implements Connector. An invalid ref connects to whatever
// controller is served.
func (c *DirectConnector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	rw, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	info, err := ReadHello(rw)
	if err == nil && ref.IsValid() && info.Ref != ref {
		err = &ErrControllerMismatch{Expected: ref, Actual: info.Ref}
	}
	if err != nil {
		closeRW(rw)
		return nil, err
	}
	conn := &DirectConn{Info: info}
	conn.Init(rw)
	return conn, nil
}

// DirectConn is the ControllerConn created by DirectConnector.
type DirectConn struct {
	ControllerConn
	Info l1.ControllerInfo
}

func closeRW(rw PacketReadWriter) {
	if closer, ok := rw.(io.Closer); ok {
		closer.Close()
	}
}
