package comm

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1"
	"github.com/robotalks/digipot.go/pkg/l1/msgs"
)

type pingCmd struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

const pingTypeID = msgs.GroupCustom | 0x00fe0000 | 0x0001

func (m *pingCmd) NewMessage() fx.Message      { return &pingCmd{} }
func (m *pingCmd) TypeID() uint32              { return pingTypeID }
func (m *pingCmd) Serializable() proto.Message { return m }
func (m *pingCmd) ProtoMessage()               {}
func (m *pingCmd) Reset()                      { *m = pingCmd{} }
func (m *pingCmd) String() string              { return proto.CompactTextString(m) }

func init() {
	msgs.MessageTypes[pingTypeID] = (*pingCmd)(nil)
}

type memLink struct {
	once   sync.Once
	closed chan struct{}
}

type memRW struct {
	link *memLink
	in   <-chan []byte
	out  chan<- []byte
}

func memPair() (*memRW, *memRW) {
	link := &memLink{closed: make(chan struct{})}
	ab, ba := make(chan []byte, 16), make(chan []byte, 16)
	return &memRW{link: link, in: ba, out: ab}, &memRW{link: link, in: ab, out: ba}
}

func (m *memRW) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-m.in:
		return pkt, nil
	case <-m.link.closed:
		return nil, io.EOF
	}
}

func (m *memRW) WritePacket(pkt []byte) error {
	select {
	case m.out <- pkt:
		return nil
	case <-m.link.closed:
		return io.ErrClosedPipe
	}
}

func (m *memRW) Close() error {
	m.link.once.Do(func() { close(m.link.closed) })
	return nil
}

var testInfo = l1.ControllerInfo{
	Ref:  l1.ControllerRef{Type: "digipot", ID: "t1"},
	Meta: l1.ControllerMeta{Description: "test"},
}

// echoController replies pingCmd with a CommandErr carrying the text.
func echoController(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		cmd, ok := mc.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		if ping, ok := cmd.Command.Msg().(*pingCmd); ok && ping.Text != "" {
			mc.MessageTaken()
			cmd.Command.Done(msgs.NewCommandErrFromMsg("echo " + ping.Text))
		}
	}))
	return nil
}

type testRig struct {
	ctx    context.Context
	cancel func()
	hub    *Hub
	conn   l1.ControllerConn
	events chan fx.Message
}

func newTestRig(t *testing.T) *testRig {
	r := &testRig{hub: NewHub(testInfo), events: make(chan fx.Message, 4)}
	r.ctx, r.cancel = context.WithCancel(context.Background())

	ctl := fx.NewLoop()
	ctl.AddController(fx.PrLvControl, fx.ControlFunc(echoController))
	ctl.Add(&UnsupportedCommands{})
	go ctl.Run(r.ctx)

	server, client := memPair()
	go r.hub.Serve(fx.WithLoopCtl(r.ctx, ctl), server)

	connector := &DirectConnector{Dial: func(context.Context) (PacketReadWriter, error) {
		return client, nil
	}}
	conn, err := connector.Connect(r.ctx, testInfo.Ref)
	require.NoError(t, err)
	r.conn = conn
	require.Equal(t, testInfo.Ref, conn.(*DirectConn).Info.Ref)

	cl := fx.NewLoop()
	cl.Add(conn.(fx.LoopAdder))
	cl.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			mc.MessageTaken()
			r.events <- mc.CurrentMessage()
		}))
		return nil
	}))
	go cl.Run(r.ctx)
	return r
}

func waitResult(t *testing.T, f l1.CommandFuture) l1.Result {
	select {
	case res := <-f.ResultChan():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
	return l1.Result{}
}

func TestHubCommandReply(t *testing.T) {
	r := newTestRig(t)
	defer r.cancel()

	res := waitResult(t, r.conn.DoCommand(&pingCmd{Text: "hi"}))
	require.EqualError(t, res.Err, "echo hi")

	res = waitResult(t, r.conn.DoCommand(&pingCmd{}))
	require.EqualError(t, res.Err, msgs.ErrUnsupportedCommand.Error())
}

func TestHubBroadcastsEvents(t *testing.T) {
	r := newTestRig(t)
	defer r.cancel()

	deadline := time.Now().Add(2 * time.Second)
	for r.hub.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("connection not registered")
		}
		time.Sleep(time.Millisecond)
	}

	require.NoError(t, r.hub.SendEvent(r.ctx, &msgs.ControllerHello{Type: "x", ID: "y"}))
	select {
	case msg := <-r.events:
		require.Equal(t, &msgs.ControllerHello{Type: "x", ID: "y"}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}

	require.Error(t, r.hub.SendEvent(r.ctx, &pingCmd{}))
}

func TestDirectConnectorMismatch(t *testing.T) {
	hub := NewHub(testInfo)
	server, client := memPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Serve(fx.WithLoopCtl(ctx, fx.NewLoop()), server)

	connector := &DirectConnector{Dial: func(context.Context) (PacketReadWriter, error) {
		return client, nil
	}}
	_, err := connector.Connect(ctx, l1.ControllerRef{Type: "digipot", ID: "other"})
	require.IsType(t, &ErrControllerMismatch{}, err)
}

func TestDirectConnectorDiscover(t *testing.T) {
	hub := NewHub(testInfo)
	server, client := memPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Serve(fx.WithLoopCtl(ctx, fx.NewLoop()), server)

	connector := &DirectConnector{Dial: func(context.Context) (PacketReadWriter, error) {
		return client, nil
	}}
	infos, err := connector.Discover(ctx)
	require.NoError(t, err)
	require.Equal(t, []l1.ControllerInfo{testInfo}, infos)

	connector.Dial = func(context.Context) (PacketReadWriter, error) {
		return nil, errors.New("refused")
	}
	_, err = connector.Discover(ctx)
	require.EqualError(t, err, "refused")
}

func TestControllerConnExpires(t *testing.T) {
	_, client := memPair()
	var conn ControllerConn
	conn.Init(client)
	mock := clock.NewMock()
	conn.Clock = mock

	f := conn.DoCommand(&pingCmd{Text: "lost"})
	require.Equal(t, 1, conn.Pending())

	l := fx.NewLoop()
	conn.AddToLoop(l)
	l.Iterate(context.Background())
	require.Equal(t, 1, conn.Pending())

	mock.Add(DefaultCommandExpiration)
	l.Iterate(context.Background())
	require.Zero(t, conn.Pending())
	res := <-f.ResultChan()
	require.Equal(t, context.DeadlineExceeded, res.Err)
}

func TestPipeAnswersUnknownCommands(t *testing.T) {
	server, client := memPair()
	pipe := NewPipe(server)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pipe.Run(ctx)

	pkt, err := (&msgs.Typed{TypeID: msgs.GroupCustom | 0x7777, Sequence: 3}).Encode()
	require.NoError(t, err)
	require.NoError(t, client.WritePacket(pkt))

	pkt, err = client.ReadPacket()
	require.NoError(t, err)
	typed, err := msgs.DecodeTyped(pkt)
	require.NoError(t, err)
	require.Equal(t, msgs.CommandErrTypeID, typed.TypeID)
	require.Equal(t, uint32(3), typed.Sequence)
}
