package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/protocol"
)

type noSleep struct{}

func (noSleep) Sleep(time.Duration) {}

func newDevice(chip *Chip) *digipot.Device {
	d := digipot.New(chip, 5000, chip.Steps)
	d.Clock = noSleep{}
	return d
}

func TestChipRejectsBytesWhenDeselected(t *testing.T) {
	chip := NewChip(DefaultSteps)
	require.Equal(t, ErrNotSelected, chip.Send(0))
	require.Empty(t, chip.Transactions())
}

func TestChipSetResistance(t *testing.T) {
	chip := NewChip(DefaultSteps)
	d := newDevice(chip)
	require.False(t, chip.Selected())
	require.Equal(t, DefaultSteps/2, chip.Wiper())

	_, err := d.SetResistance(chip, 1250)
	require.NoError(t, err)
	require.Equal(t, uint16(64), chip.Wiper())
	require.False(t, chip.Selected())

	txs := chip.Transactions()
	require.Len(t, txs, 1)
	require.True(t, txs[0].Complete())
	require.Equal(t, []byte{0x00, 0x40}, txs[0].Bytes)
	require.Equal(t, protocol.Decoded{Address: 0, Command: protocol.BitsWrite, Data: 64}, txs[0].Decoded())
}

func TestChipWriteClampsWiper(t *testing.T) {
	chip := NewChip(DefaultSteps)
	d := newDevice(chip)
	_, err := d.Do(chip, protocol.WriteOp(protocol.VolatileWiper1, 0x3ff))
	require.NoError(t, err)
	require.Equal(t, DefaultSteps, chip.Register(protocol.VolatileWiper1))

	_, err = d.Do(chip, protocol.WriteOp(protocol.MustDataEEPROM(3), 0x3ff))
	require.NoError(t, err)
	require.Equal(t, uint16(0x3ff), chip.Register(protocol.MustDataEEPROM(3)))
}

func TestChipIncrementDecrement(t *testing.T) {
	chip := NewChip(2)
	d := digipot.New(chip, 100, 2)
	d.Clock = noSleep{}
	ops := []struct {
		op     protocol.Op
		expect uint16
	}{
		{protocol.IncrementOp(protocol.VolatileWiper0), 2},
		{protocol.IncrementOp(protocol.VolatileWiper0), 2},
		{protocol.DecrementOp(protocol.VolatileWiper0), 1},
		{protocol.DecrementOp(protocol.VolatileWiper0), 0},
		{protocol.DecrementOp(protocol.VolatileWiper0), 0},
	}
	for _, tc := range ops {
		_, err := d.Do(chip, tc.op)
		require.NoError(t, err)
		require.Equal(t, tc.expect, chip.Wiper(), tc.op.String())
	}
}

func TestChipReadRegister(t *testing.T) {
	chip := NewChip(DefaultSteps)
	d := newDevice(chip)
	_, err := d.Do(chip, protocol.WriteOp(protocol.NonVolatileWiper0, 0x101))
	require.NoError(t, err)
	v, err := d.ReadRegister(chip, protocol.NonVolatileWiper0)
	require.NoError(t, err)
	require.Equal(t, DefaultSteps, v)

	v, err = d.ReadRegister(chip, protocol.VolatileTCONRegister)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1ff), v)
}

func TestChipWiperLock(t *testing.T) {
	chip := NewChip(DefaultSteps)
	d := newDevice(chip)
	_, err := d.Do(chip, protocol.EnableWiperLockOp(protocol.WiperLock))
	require.NoError(t, err)
	require.True(t, chip.Locked())

	_, err = d.Do(chip, protocol.WriteOp(protocol.NonVolatileWiper0, 10))
	require.NoError(t, err)
	require.Equal(t, DefaultSteps/2, chip.Register(protocol.NonVolatileWiper0))

	_, err = d.Do(chip, protocol.DecrementOp(protocol.WiperLock))
	require.NoError(t, err)
	require.False(t, chip.Locked())
}

func TestChipPartialTransaction(t *testing.T) {
	chip := NewChip(DefaultSteps)
	chip.SetLow()
	require.NoError(t, chip.Send(0x00))
	chip.SetHigh()
	txs := chip.Transactions()
	require.Len(t, txs, 1)
	require.False(t, txs[0].Complete())
	require.Equal(t, DefaultSteps/2, chip.Wiper())
}

func TestDivider(t *testing.T) {
	chip := NewChip(DefaultSteps)
	adc := NewDivider(chip)
	s, err := adc.Read()
	require.NoError(t, err)
	require.Equal(t, 1650*physic.MilliVolt, s.V)
	require.Equal(t, int32(511), s.Raw)

	d := newDevice(chip)
	_, err = d.SetResistance(chip, 5000)
	require.NoError(t, err)
	s, err = adc.Read()
	require.NoError(t, err)
	require.Equal(t, DefaultVref, s.V)
	require.Equal(t, int32(DefaultResolution), s.Raw)

	lo, hi := adc.Range()
	require.Zero(t, lo.Raw)
	require.Equal(t, DefaultVref, hi.V)
}
