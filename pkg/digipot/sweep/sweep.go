// Package sweep steps the wiper across its range while sampling an ADC on
// the wiper, producing the transfer curve of the circuit.
package sweep

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3/analog"

	"github.com/robotalks/digipot.go/pkg/digipot"
)

// Sampler reads the measured value. analog.PinADC implements it.
type Sampler interface {
	Read() (analog.Sample, error)
}

// Defaults
const (
	DefaultSteps           = 100
	DefaultStepSize uint16 = 50
	DefaultSettle          = 10 * time.Millisecond
)

// Sample is the measurement at one step.
type Sample struct {
	Step       int
	Resistance uint16
	// Wiper is the raw wiper position written.
	Wiper uint16
	analog.Sample
}

// Sweep drives the device through Steps resistances, StepSize apart.
type Sweep struct {
	Device    *digipot.Device
	Transport digipot.Transport
	Sampler   Sampler
	Clock     digipot.Sleeper

	Steps    int
	StepSize uint16
	// Settle is the delay after each write before sampling and again after
	// sampling.
	Settle time.Duration
}

// New creates a Sweep with defaults.
func New(dev *digipot.Device, tr digipot.Transport, sampler Sampler) *Sweep {
	return &Sweep{
		Device:    dev,
		Transport: tr,
		Sampler:   sampler,
		Clock:     clock.New(),
		Steps:     DefaultSteps,
		StepSize:  DefaultStepSize,
		Settle:    DefaultSettle,
	}
}

// Resistance returns the resistance set at step i.
func (s *Sweep) Resistance(i int) uint16 {
	return uint16(uint32(s.StepSize) * uint32(i))
}

// Step sets the resistance of step i and samples after settling.
func (s *Sweep) Step(i int) (Sample, error) {
	smpl := Sample{Step: i, Resistance: s.Resistance(i)}
	smpl.Wiper = s.Device.Steps(smpl.Resistance)
	if _, err := s.Device.SetResistance(s.Transport, smpl.Resistance); err != nil {
		return smpl, err
	}
	s.Pause()
	var err error
	smpl.Sample, err = s.Sampler.Read()
	return smpl, err
}

// Run performs one pass, calling fn with each sample. It stops at the first
// error or when ctx is done.
func (s *Sweep) Run(ctx context.Context, fn func(Sample) error) error {
	for i := 0; i < s.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		smpl, err := s.Step(i)
		if err != nil {
			return err
		}
		if err = fn(smpl); err != nil {
			return err
		}
		s.Pause()
	}
	return nil
}

// Pause waits the settle delay that follows each published sample.
func (s *Sweep) Pause() {
	if s.Clock != nil && s.Settle > 0 {
		s.Clock.Sleep(s.Settle)
	}
}
