package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/digipot.go/pkg/framework"
)

type plainMsg struct{}

func (m *plainMsg) NewMessage() fx.Message { return &plainMsg{} }

func TestTypedEnvelope(t *testing.T) {
	typed, err := TypedFrom(NewCommandErrFromMsg("bad"))
	require.NoError(t, err)
	typed.Sequence = 7
	require.True(t, typed.IsCommand())
	require.True(t, typed.IsReply())
	require.False(t, typed.IsEvent())

	pkt, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(pkt)
	require.NoError(t, err)
	require.Equal(t, CommandErrTypeID, decoded.TypeID)
	require.Equal(t, uint32(7), decoded.Sequence)

	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.IsType(t, &CommandErr{}, msg)
	require.EqualError(t, msg.(*CommandErr), "bad")
}

func TestTypedEmptyMessage(t *testing.T) {
	typed, err := TypedFrom(NewCommandOK())
	require.NoError(t, err)
	msg, err := typed.Decode()
	require.NoError(t, err)
	require.IsType(t, &CommandOK{}, msg)
}

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(&plainMsg{})
	require.Equal(t, ErrNotSerializable, err)

	typed := &Typed{TypeID: TypeIDKindEvent | 0x1234}
	require.True(t, typed.IsEvent())
	require.False(t, typed.IsReply())
	_, err = typed.Decode()
	require.EqualError(t, err, "unknown type: 80001234")
}

func TestControllerHello(t *testing.T) {
	typed, err := TypedFrom(&ControllerHello{Type: "digipot", ID: "a1", Description: "pot"})
	require.NoError(t, err)
	require.True(t, typed.IsEvent())
	msg, err := typed.Decode()
	require.NoError(t, err)
	require.Equal(t, &ControllerHello{Type: "digipot", ID: "a1", Description: "pot"}, msg)
}
