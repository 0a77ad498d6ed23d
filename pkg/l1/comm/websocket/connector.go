package websocket

import (
	"context"

	"golang.org/x/net/websocket"

	"github.com/robotalks/digipot.go/pkg/l1/comm"
)

// DefaultOrigin is sent in the handshake.
const DefaultOrigin = "http://localhost/"

// NewConnector creates a Connector to the Server at the ws:// URL.
func NewConnector(url string) *comm.DirectConnector {
	return &comm.DirectConnector{
		Dial: func(context.Context) (comm.PacketReadWriter, error) {
			conn, err := websocket.Dial(url, "", DefaultOrigin)
			if err != nil {
				return nil, err
			}
			return New(conn), nil
		},
	}
}
