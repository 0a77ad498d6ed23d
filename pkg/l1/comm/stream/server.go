package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1/comm"
)

// Server accepts TCP connections and serves them through a Hub.
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
	glog.Infof("listening on tcp://%s", s.Listener.Addr())
	return fx.RunWithContextCloser(ctx, s.Listener, func() error {
		for {
			conn, err := s.Listener.Accept()
			if err != nil {
				return err
			}
			glog.V(2).Infof("accepted %s", conn.RemoteAddr())
			go s.Hub.Serve(ctx, New(conn))
		}
	})
}
