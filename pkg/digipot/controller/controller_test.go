package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/msgs"
	"github.com/robotalks/digipot.go/pkg/digipot/sim"
	"github.com/robotalks/digipot.go/pkg/digipot/sweep"
	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1"
	"github.com/robotalks/digipot.go/pkg/l1/comm"
	env "github.com/robotalks/digipot.go/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/digipot.go/pkg/l1/msgs"
)

type noSleep struct{}

func (noSleep) Sleep(time.Duration) {}

type sleepRecorder struct {
	d []time.Duration
}

func (r *sleepRecorder) Sleep(d time.Duration) {
	r.d = append(r.d, d)
}

type recorder struct {
	events []fx.Message
}

func (r *recorder) SendEvent(ctx context.Context, msg fx.Message) error {
	r.events = append(r.events, msg)
	return nil
}

func (r *recorder) samples() (res []*msgs.SweepSample) {
	for _, ev := range r.events {
		if s, ok := ev.(*msgs.SweepSample); ok {
			res = append(res, s)
		}
	}
	return
}

func (r *recorder) lastStatus() *msgs.Status {
	for n := len(r.events) - 1; n >= 0; n-- {
		if s, ok := r.events[n].(*msgs.Status); ok {
			return s
		}
	}
	return nil
}

type fakeCommand struct {
	msg   fx.Message
	reply fx.Message
}

func (c *fakeCommand) Msg() fx.Message { return c.msg }

func (c *fakeCommand) Done(reply fx.Message) error {
	c.reply = reply
	return nil
}

type rig struct {
	chip *sim.Chip
	ctl  *Controller
	reg  *recorder
	loop *fx.Loop
}

func newRig(tr digipot.Transport) *rig {
	r := &rig{chip: sim.NewChip(sim.DefaultSteps), reg: &recorder{}}
	if tr == nil {
		tr = r.chip
	}
	dev := digipot.New(r.chip, 5000, sim.DefaultSteps)
	dev.Clock = noSleep{}
	e := &env.Env{Registrar: &comm.RegistrarMux{}}
	e.Registrar.Add(r.reg)
	r.ctl = NewController(e, dev, tr)
	r.ctl.Clock = noSleep{}
	r.ctl.Sampler = sim.NewDivider(r.chip)
	r.loop = fx.NewLoop().Add(r.ctl)
	return r
}

func (r *rig) iterate() {
	r.loop.Iterate(context.Background())
}

func (r *rig) do(msg fx.Message) fx.Message {
	cmd := &fakeCommand{msg: msg}
	r.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	r.iterate()
	return cmd.reply
}

func TestStatusQuery(t *testing.T) {
	r := newRig(nil)
	reply := r.do(&msgs.StatusQuery{})
	require.IsType(t, &msgs.StatusReply{}, reply)
	status := reply.(*msgs.StatusReply).Status
	require.Equal(t, uint32(5000), status.FullScale)
	require.Equal(t, uint32(sim.DefaultSteps), status.NBits)
	require.False(t, status.Failed)
	require.NotNil(t, r.reg.lastStatus())
}

func TestSetResistance(t *testing.T) {
	r := newRig(nil)
	reply := r.do(&msgs.SetResistance{Resistance: 2500})
	require.Equal(t, &msgs.FrameSent{Command: 0x00, Data: 0x80, HasData: true}, reply)
	require.Equal(t, uint16(128), r.chip.Wiper())

	status := r.reg.lastStatus()
	require.Equal(t, uint32(128), status.Wiper)
	require.Equal(t, uint32(2500), status.Resistance)

	reply = r.do(&msgs.SetResistance{Resistance: 70000})
	require.IsType(t, &l1msgs.CommandErr{}, reply)
	require.Equal(t, uint16(128), r.chip.Wiper())
}

func TestSendCommand(t *testing.T) {
	r := newRig(nil)
	r.do(&msgs.SetResistance{Resistance: 2500})
	reply := r.do(&msgs.SendCommand{Address: "wiper0", Command: "inc"})
	require.Equal(t, &msgs.FrameSent{Command: 0x04}, reply)
	require.Equal(t, uint16(129), r.chip.Wiper())
	require.Equal(t, uint32(129), r.ctl.Status().Wiper)

	reply = r.do(&msgs.SendCommand{Address: "wiper0", Command: "write", Data: 10, HasData: true})
	require.Equal(t, &msgs.FrameSent{Command: 0x00, Data: 10, HasData: true}, reply)
	require.Equal(t, uint32(10), r.ctl.Status().Wiper)
}

func TestSendCommandRejected(t *testing.T) {
	testCases := []struct {
		name string
		msg  *msgs.SendCommand
	}{
		{"write-without-data", &msgs.SendCommand{Address: "wiper0", Command: "write"}},
		{"read-with-data", &msgs.SendCommand{Address: "status", Command: "read", HasData: true}},
		{"unknown-address", &msgs.SendCommand{Address: "wiper7", Command: "inc"}},
		{"eeprom-range", &msgs.SendCommand{Address: "eeprom12", Command: "read"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(nil)
			reply := r.do(tc.msg)
			require.IsType(t, &l1msgs.CommandErr{}, reply)
			require.Empty(t, r.chip.Transactions())
			require.False(t, r.ctl.Status().Failed)
		})
	}
}

func TestReadRegister(t *testing.T) {
	r := newRig(nil)
	reply := r.do(&msgs.ReadRegister{Address: "tcon"})
	require.Equal(t, &msgs.RegisterValue{Address: "tcon", Value: 0x1ff}, reply)

	reply = r.do(&msgs.ReadRegister{Address: "wiper0"})
	require.Equal(t, &msgs.RegisterValue{Address: "wiper0", Value: 128}, reply)
	require.Equal(t, uint32(128), r.ctl.Status().Wiper)
}

func TestSweepOnce(t *testing.T) {
	r := newRig(nil)
	reply := r.do(&msgs.SweepStart{Steps: 3, StepSize: 1000, Once: true})
	require.IsType(t, &l1msgs.CommandOK{}, reply)
	require.True(t, r.ctl.Status().Sweeping)
	r.iterate()
	r.iterate()
	r.iterate()

	samples := r.reg.samples()
	require.Len(t, samples, 3)
	for n, s := range samples {
		require.Equal(t, uint32(n), s.Step)
		require.Equal(t, uint32(n*1000), s.Resistance)
	}
	require.Equal(t, uint32(102), samples[2].Wiper)
	require.Equal(t, uint16(102), r.chip.Wiper())
	require.False(t, r.ctl.Status().Sweeping)
	require.False(t, r.reg.lastStatus().Sweeping)
}

func TestSweepSettlesTwicePerStep(t *testing.T) {
	testCases := []struct {
		steps  uint32
		settle time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 10 * time.Millisecond},
		{4, time.Second},
	}
	for _, tc := range testCases {
		r := newRig(nil)
		sleeps := &sleepRecorder{}
		r.ctl.Clock = sleeps
		r.ctl.SweepSettle = tc.settle
		r.do(&msgs.SweepStart{Steps: tc.steps, StepSize: 100, Once: true})
		require.Len(t, sleeps.d, 2)
		for n := uint32(1); n < tc.steps; n++ {
			r.iterate()
			require.Len(t, sleeps.d, int(n+1)*2)
		}
		r.iterate()
		require.Len(t, sleeps.d, int(tc.steps)*2)
		require.False(t, r.ctl.Status().Sweeping)
		require.Len(t, r.reg.samples(), int(tc.steps))
		for _, d := range sleeps.d {
			require.Equal(t, tc.settle, d)
		}
	}
}

func TestSweepStepsFallBackToDefault(t *testing.T) {
	for _, steps := range []int{0, -1, -100} {
		r := newRig(nil)
		r.ctl.SweepSteps = steps
		r.do(&msgs.SweepStart{StepSize: 10, Once: true})
		require.Equal(t, sweep.DefaultSteps, r.ctl.sweep.Steps)
		for n := 0; n < sweep.DefaultSteps; n++ {
			r.iterate()
		}
		require.False(t, r.ctl.Status().Sweeping, "steps %d", steps)
		require.Len(t, r.reg.samples(), sweep.DefaultSteps)
	}
}

func TestSweepRepeatsUntilStopped(t *testing.T) {
	r := newRig(nil)
	r.do(&msgs.SweepStart{Steps: 2, StepSize: 100})
	r.iterate()
	r.iterate()
	samples := r.reg.samples()
	require.Len(t, samples, 3)
	require.Equal(t, uint32(0), samples[2].Step)

	require.IsType(t, &l1msgs.CommandOK{}, r.do(&msgs.SweepStop{}))
	require.Len(t, r.reg.samples(), 3)
	require.False(t, r.ctl.Status().Sweeping)
}

func TestSetResistanceStopsSweep(t *testing.T) {
	r := newRig(nil)
	r.do(&msgs.SweepStart{Steps: 10})
	r.do(&msgs.SetResistance{Resistance: 5000})
	require.False(t, r.ctl.Status().Sweeping)
	require.Equal(t, sim.DefaultSteps, r.chip.Wiper())
}

func TestSweepRequiresSampler(t *testing.T) {
	r := newRig(nil)
	r.ctl.Sampler = nil
	reply := r.do(&msgs.SweepStart{})
	require.Equal(t, l1msgs.NewCommandErr(ErrNoSampler), reply)
}

func TestBusFailureMarksDeviceFailed(t *testing.T) {
	r := newRig(digipot.TransportFunc(func(byte) error { return errors.New("bus fault") }))
	reply := r.do(&msgs.SetResistance{Resistance: 100})
	require.IsType(t, &l1msgs.CommandErr{}, reply)
	require.False(t, r.chip.Selected())

	status := r.reg.lastStatus()
	require.True(t, status.Failed)
	require.Contains(t, status.Error, "bus fault")

	reply = r.do(&msgs.ReadRegister{Address: "wiper0"})
	require.Contains(t, reply.(*l1msgs.CommandErr).Message, "device failed")
	reply = r.do(&msgs.StatusQuery{})
	require.True(t, reply.(*msgs.StatusReply).Status.Failed)
}

func TestUnknownCommandsPassThrough(t *testing.T) {
	r := newRig(nil)
	var leftover []fx.Message
	r.loop.AddController(fx.PrLvIdle, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			leftover = append(leftover, mctx.CurrentMessage())
		}))
		return nil
	}))
	require.Nil(t, r.do(&l1msgs.ControllerHello{}))
	require.Len(t, leftover, 1)
}

func TestConfigAutoSweep(t *testing.T) {
	chip := sim.NewChip(sim.DefaultSteps)
	dev := digipot.New(chip, 5000, sim.DefaultSteps)
	e := &env.Env{Registrar: &comm.RegistrarMux{}}

	conf := NewConfig()
	conf.AutoSweep = true
	conf.SweepStepSize = 100000
	ctl := conf.NewController(e, dev, chip, sim.NewDivider(chip))
	require.True(t, ctl.Status().Sweeping)
	require.Equal(t, uint16(0xffff), ctl.SweepStepSize)

	ctl = conf.NewController(e, dev, chip, nil)
	require.False(t, ctl.Status().Sweeping)
}
