package stream

import (
	"context"
	"net"

	"github.com/robotalks/digipot.go/pkg/l1/comm"
)

// NewConnector creates a Connector to the Server at the TCP address.
func NewConnector(addr string) *comm.DirectConnector {
	return &comm.DirectConnector{
		Dial: func(ctx context.Context) (comm.PacketReadWriter, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			return New(conn), nil
		},
	}
}
