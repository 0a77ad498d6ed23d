package websocket

import (
	"context"
	"net"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1/comm"
)

// Server accepts websocket connections on any path and serves them through
// a Hub.
type Server struct {
	Listener net.Listener
	Hub      *comm.Hub
}

// Listen creates a Server listening on the TCP address.
func Listen(addr string, hub *comm.Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{Listener: ln, Hub: hub}, nil
}

// SendEvent implements Registrar.
func (s *Server) SendEvent(ctx context.Context, msg fx.Message) error {
	return s.Hub.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddRunnable(s)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Handler: websocket.Server{
			// Clients are not browsers, any origin is accepted.
			Handshake: func(*websocket.Config, *http.Request) error { return nil },
			Handler: func(conn *websocket.Conn) {
				glog.V(2).Infof("accepted %s", conn.Request().RemoteAddr)
				s.Hub.Serve(ctx, New(conn))
			},
		},
	}
	glog.Infof("listening on ws://%s", s.Listener.Addr())
	return fx.RunWithContextCloser(ctx, srv, func() error {
		return srv.Serve(s.Listener)
	})
}
