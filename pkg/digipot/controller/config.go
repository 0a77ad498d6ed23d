package controller

import (
	"flag"
	"time"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/msgs"
	"github.com/robotalks/digipot.go/pkg/digipot/sweep"
	env "github.com/robotalks/digipot.go/pkg/l1/env/controller"
)

// Config defines the configurations for the controller.
type Config struct {
	SweepSteps    int
	SweepStepSize uint
	SweepSettle   time.Duration
	// AutoSweep starts sweeping continuously when the controller starts.
	AutoSweep bool
}

var defaultConfig = Config{
	SweepSteps:    sweep.DefaultSteps,
	SweepStepSize: uint(sweep.DefaultStepSize),
	SweepSettle:   sweep.DefaultSettle,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.SweepSteps, "sweep-steps", defaultConfig.SweepSteps, "Number of steps in a sweep.")
	flag.UintVar(&defaultConfig.SweepStepSize, "sweep-step-size", defaultConfig.SweepStepSize, "Resistance increment per sweep step.")
	flag.DurationVar(&defaultConfig.SweepSettle, "sweep-settle", defaultConfig.SweepSettle, "Delay between setting the wiper and sampling.")
	flag.BoolVar(&defaultConfig.AutoSweep, "sweep", defaultConfig.AutoSweep, "Start sweeping on startup.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config. sampler may be nil
// when no ADC is attached, then sweeps are rejected.
func (c *Config) NewController(e *env.Env, dev *digipot.Device, tr digipot.Transport, sampler sweep.Sampler) *Controller {
	ctl := NewController(e, dev, tr)
	ctl.Sampler = sampler
	ctl.SweepSteps = c.SweepSteps
	ctl.SweepStepSize = clampStepSize(c.SweepStepSize)
	ctl.SweepSettle = c.SweepSettle
	if c.AutoSweep && sampler != nil {
		ctl.startSweep(&msgs.SweepStart{})
	}
	return ctl
}

func clampStepSize(v uint) uint16 {
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
