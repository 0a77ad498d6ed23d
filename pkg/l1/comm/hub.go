package comm

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1"
	"github.com/robotalks/digipot.go/pkg/l1/msgs"
)

// Hub implements l1.Registrar for any number of direct connections. Each
// connection is greeted with a ControllerHello and receives every event.
type Hub struct {
	Info l1.ControllerInfo

	lock  sync.RWMutex
	pipes map[*Pipe]struct{}
}

// NewHub creates a Hub.
func NewHub(info l1.ControllerInfo) *Hub {
	return &Hub{Info: info}
}

// Serve runs a connection until it fails or ctx is done. Commands are
// posted to the loop attached to ctx.
func (h *Hub) Serve(ctx context.Context, rw PacketReadWriter) error {
	pipe := NewPipe(rw)
	pipe.Handler = postToLoop(pipe)
	hello := &msgs.ControllerHello{
		Type:        h.Info.Ref.Type,
		ID:          h.Info.Ref.ID,
		Description: h.Info.Meta.Description,
	}
	if err := pipe.SendEventMsg(hello); err != nil {
		pipe.Close()
		return err
	}
	h.lock.Lock()
	if h.pipes == nil {
		h.pipes = make(map[*Pipe]struct{})
	}
	h.pipes[pipe] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.pipes, pipe)
		h.lock.Unlock()
	}()
	err := pipe.Run(ctx)
	glog.V(2).Infof("connection closed: %v", err)
	return err
}

// Len returns the number of connections being served.
func (h *Hub) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.pipes)
}

// SendEvent implements Registrar.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		return fmt.Errorf("%T is not an event", msg)
	}
	h.lock.RLock()
	pipes := make([]*Pipe, 0, len(h.pipes))
	for pipe := range h.pipes {
		pipes = append(pipes, pipe)
	}
	h.lock.RUnlock()
	var errs fx.AggregatedError
	for _, pipe := range pipes {
		errs.Add(pipe.SendTyped(typed))
	}
	return errs.Aggregate()
}
