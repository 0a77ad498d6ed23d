// Package controller publishes a Device as a controller. Remote commands
// drive the device from loop iterations, which is the only place the device
// is touched.
package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/msgs"
	"github.com/robotalks/digipot.go/pkg/digipot/protocol"
	"github.com/robotalks/digipot.go/pkg/digipot/sweep"
	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1"
	env "github.com/robotalks/digipot.go/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/digipot.go/pkg/l1/msgs"
)

// Type is the controller type.
const Type = "digipot"

// Errors
var (
	ErrNoSampler = errors.New("no ADC attached")
)

// Controller serves commands against a Device.
type Controller struct {
	Env       *env.Env
	Device    *digipot.Device
	Transport digipot.Transport
	// Sampler is optional, sweeps need it.
	Sampler sweep.Sampler
	Clock   digipot.Sleeper

	SweepSteps    int
	SweepStepSize uint16
	SweepSettle   time.Duration

	sweep     *sweep.Sweep
	sweepStep int
	sweepOnce bool
	failure   error

	status        msgs.Status
	statusChanged bool
}

// NewController creates a Controller.
func NewController(e *env.Env, dev *digipot.Device, tr digipot.Transport) *Controller {
	c := &Controller{
		Env:           e,
		Device:        dev,
		Transport:     tr,
		Clock:         clock.New(),
		SweepSteps:    sweep.DefaultSteps,
		SweepStepSize: sweep.DefaultStepSize,
		SweepSettle:   sweep.DefaultSettle,
		statusChanged: true,
	}
	c.status.FullScale = uint32(dev.FullScale())
	c.status.NBits = uint32(dev.NBits())
	return c
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

// Status returns a copy of current status.
func (c *Controller) Status() msgs.Status {
	return c.status
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		reply := c.handle(cmdMsg.Command.Msg())
		if reply == nil {
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Errorf("reply %T error: %v", reply, err)
		}
	}))
	if c.sweep == nil {
		return nil
	}
	return c.stepSweep(cc)
}

// handle returns nil for messages it doesn't understand.
func (c *Controller) handle(msg fx.Message) fx.Message {
	switch msg.(type) {
	case *msgs.StatusQuery:
		status := c.status
		return &msgs.StatusReply{Status: &status}
	case *msgs.SweepStop:
		c.stopSweep()
		return l1msgs.NewCommandOK()
	}

	if c.failure != nil {
		switch msg.(type) {
		case *msgs.SetResistance, *msgs.SendCommand, *msgs.ReadRegister, *msgs.SweepStart:
			return l1msgs.NewCommandErrFromMsg(fmt.Sprintf("device failed: %v", c.failure))
		}
		return nil
	}

	switch m := msg.(type) {
	case *msgs.SetResistance:
		if m.Resistance > 0xffff {
			return l1msgs.NewCommandErrFromMsg(fmt.Sprintf("resistance %d out of range", m.Resistance))
		}
		c.stopSweep()
		f, err := c.Device.SetResistance(c.Transport, uint16(m.Resistance))
		if err != nil {
			return c.deviceErr(err)
		}
		c.setWiper(c.Device.Steps(uint16(m.Resistance)))
		return msgs.NewFrameSent(f)
	case *msgs.SendCommand:
		addr, cmd, data, err := m.Op()
		if err != nil {
			return l1msgs.NewCommandErr(err)
		}
		c.stopSweep()
		f, err := c.Device.SendCommand(c.Transport, addr, cmd, data)
		if err != nil {
			return c.deviceErr(err)
		}
		if addr == protocol.VolatileWiper0 {
			c.trackWiper(cmd, data)
		}
		return msgs.NewFrameSent(f)
	case *msgs.ReadRegister:
		addr, err := protocol.ParseAddress(m.Address)
		if err != nil {
			return l1msgs.NewCommandErr(err)
		}
		v, err := c.Device.ReadRegister(c.Transport, addr)
		if err != nil {
			return c.deviceErr(err)
		}
		if addr == protocol.VolatileWiper0 {
			c.setWiper(v)
		}
		return &msgs.RegisterValue{Address: addr.String(), Value: uint32(v)}
	case *msgs.SweepStart:
		if c.Sampler == nil {
			return l1msgs.NewCommandErr(ErrNoSampler)
		}
		c.startSweep(m)
		return l1msgs.NewCommandOK()
	}
	return nil
}

// deviceErr marks the device failed on bus faults, the device is not used
// again.
func (c *Controller) deviceErr(err error) fx.Message {
	var txErr *digipot.TransactionError
	if errors.As(err, &txErr) {
		glog.Errorf("device failed: %v", err)
		c.failure = err
		c.stopSweep()
		c.status.Failed, c.status.Error = true, err.Error()
		c.statusChanged = true
	}
	return l1msgs.NewCommandErr(err)
}

func (c *Controller) setWiper(v uint16) {
	if top := c.Device.NBits(); v > top {
		v = top
	}
	c.status.Wiper = uint32(v)
	c.status.Resistance = uint32(c.Device.Resistance(v))
	c.statusChanged = true
}

// trackWiper follows the wiper 0 position from raw commands.
func (c *Controller) trackWiper(cmd protocol.Command, data protocol.Data) {
	v := uint16(c.status.Wiper)
	switch cmd {
	case protocol.Write:
		v = data.Value & protocol.DataMask
	case protocol.Increment:
		if v < c.Device.NBits() {
			v++
		}
	case protocol.Decrement:
		if v > 0 {
			v--
		}
	default:
		return
	}
	c.setWiper(v)
}

func (c *Controller) startSweep(m *msgs.SweepStart) {
	s := sweep.New(c.Device, c.Transport, c.Sampler)
	s.Clock = c.Clock
	s.Steps, s.StepSize, s.Settle = c.SweepSteps, c.SweepStepSize, c.SweepSettle
	if m.Steps > 0 {
		s.Steps = int(m.Steps)
	}
	if m.StepSize > 0 {
		s.StepSize = clampStepSize(uint(m.StepSize))
	}
	if s.Steps <= 0 {
		glog.Warningf("invalid sweep steps %d, using %d", s.Steps, sweep.DefaultSteps)
		s.Steps = sweep.DefaultSteps
	}
	glog.Infof("sweep started: %d steps of %d", s.Steps, s.StepSize)
	c.sweep, c.sweepStep, c.sweepOnce = s, 0, m.Once
	c.status.Sweeping, c.status.SweepStep = true, 0
	c.statusChanged = true
}

func (c *Controller) stopSweep() {
	if c.sweep == nil {
		return
	}
	glog.Infof("sweep stopped at step %d", c.sweepStep)
	c.sweep = nil
	c.status.Sweeping = false
	c.statusChanged = true
}

// stepSweep runs one sweep step per iteration, publishes the sample and
// pauses before the next step.
func (c *Controller) stepSweep(cc fx.ControlContext) error {
	s := c.sweep
	smpl, err := s.Step(c.sweepStep)
	if err != nil {
		c.stopSweep()
		c.deviceErr(err)
		return fmt.Errorf("sweep step %d: %v", smpl.Step, err)
	}
	c.setWiper(smpl.Wiper)
	if c.sweepStep++; c.sweepStep >= s.Steps {
		if c.sweepOnce {
			c.stopSweep()
		} else {
			c.sweepStep = 0
		}
	}
	c.status.SweepStep = uint32(c.sweepStep)
	if c.sweep != nil {
		cc.TriggerNext()
	}
	err = c.Env.Registrar.SendEvent(cc.Context(), msgs.NewSweepSample(smpl))
	s.Pause()
	return err
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	changed := c.statusChanged
	c.statusChanged = false
	if changed {
		status := c.status
		return c.Env.Registrar.SendEvent(cc.Context(), &status)
	}
	return nil
}
