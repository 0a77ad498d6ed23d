package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/sim"
)

type sleepRecorder struct {
	d []time.Duration
}

func (r *sleepRecorder) Sleep(d time.Duration) {
	r.d = append(r.d, d)
}

func newSimSweep() (*Sweep, *sim.Chip, *sleepRecorder) {
	chip := sim.NewChip(512)
	dev := digipot.New(chip, 5000, 512)
	dev.Settle = 0
	s := New(dev, chip, sim.NewDivider(chip))
	sleeps := &sleepRecorder{}
	s.Clock = sleeps
	return s, chip, sleeps
}

func TestStep(t *testing.T) {
	s, chip, _ := newSimSweep()
	smpl, err := s.Step(50)
	require.NoError(t, err)
	require.Equal(t, 50, smpl.Step)
	require.Equal(t, uint16(2500), smpl.Resistance)
	require.Equal(t, uint16(256), smpl.Wiper)
	require.Equal(t, uint16(256), chip.Wiper())
	require.Equal(t, int32(511), smpl.Raw)
}

func TestRunOnePass(t *testing.T) {
	s, chip, _ := newSimSweep()
	var samples []Sample
	require.NoError(t, s.Run(context.Background(), func(smpl Sample) error {
		samples = append(samples, smpl)
		return nil
	}))
	require.Len(t, samples, DefaultSteps)
	for i, smpl := range samples {
		require.Equal(t, i, smpl.Step)
		require.Equal(t, uint16(i)*DefaultStepSize, smpl.Resistance)
		if i > 0 {
			require.True(t, smpl.Raw >= samples[i-1].Raw)
		}
	}
	require.Len(t, chip.Transactions(), DefaultSteps)
	require.Equal(t, uint16(4950*512/5000), chip.Wiper())
}

func TestRunStopsOnCallbackError(t *testing.T) {
	s, chip, _ := newSimSweep()
	stop := errors.New("stop")
	n := 0
	err := s.Run(context.Background(), func(Sample) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	require.Equal(t, stop, err)
	require.Len(t, chip.Transactions(), 3)
}

func TestRunHonorsContext(t *testing.T) {
	s, chip, _ := newSimSweep()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, s.Run(ctx, func(Sample) error { return nil }))
	require.Empty(t, chip.Transactions())
}

type failingSampler struct{}

func (failingSampler) Read() (analog.Sample, error) {
	return analog.Sample{}, errors.New("adc")
}

func TestStepSamplerError(t *testing.T) {
	s, _, _ := newSimSweep()
	s.Sampler = failingSampler{}
	_, err := s.Step(1)
	require.EqualError(t, err, "adc")
}

func TestSettleDelays(t *testing.T) {
	s, _, sleeps := newSimSweep()
	s.Steps = 2
	s.Settle = 10 * time.Millisecond
	require.NoError(t, s.Run(context.Background(), func(Sample) error { return nil }))
	require.Equal(t, []time.Duration{
		10 * time.Millisecond, 10 * time.Millisecond,
		10 * time.Millisecond, 10 * time.Millisecond,
	}, sleeps.d)
}
