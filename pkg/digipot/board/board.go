// Package board opens the potentiometer a process drives, either the real
// chip through periph or the simulated one.
package board

import (
	"flag"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/periph"
	"github.com/robotalks/digipot.go/pkg/digipot/sim"
	"github.com/robotalks/digipot.go/pkg/digipot/sweep"
)

// Config selects the board.
type Config struct {
	Simulate bool
	// SimSteps is the wiper range of the simulated chip, 0 follows
	// Device.NBits.
	SimSteps uint
	// Device is the scaling the board is driven with.
	Device *digipot.Config
	Periph *periph.Config
}

var defaultConfig = Config{
	Device: digipot.Default(),
	Periph: periph.Default(),
}

// SetupFlags sets command line flags, including the periph ones.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Simulate, "sim", defaultConfig.Simulate, "Use a simulated chip instead of hardware.")
	flag.UintVar(&defaultConfig.SimSteps, "sim-steps", defaultConfig.SimSteps, "Wiper range of the simulated chip, 0 to match -n-bits.")
	periph.SetupFlags()
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

// Board is an opened potentiometer.
type Board struct {
	ChipSelect digipot.ChipSelect
	Transport  digipot.Transport
	// Sampler is nil without an ADC.
	Sampler sweep.Sampler

	closer io.Closer
}

// Open opens the board.
func (c *Config) Open() (*Board, error) {
	if c.Simulate {
		steps := c.simSteps()
		if c.Device != nil && uint(steps) != c.Device.NBits {
			glog.Warningf("simulated chip has %d steps, device scales to %d", steps, c.Device.NBits)
		}
		chip := sim.NewChip(steps)
		glog.Infof("simulated chip with %d steps", steps)
		return &Board{
			ChipSelect: chip,
			Transport:  chip,
			Sampler:    sim.NewDivider(chip),
		}, nil
	}
	conf := c.Periph
	if conf == nil {
		conf = periph.NewConfig()
	}
	bus, err := periph.Open(conf)
	if err != nil {
		return nil, err
	}
	glog.Infof("opened %s, chip-select %s", conf.SPI, conf.CS)
	b := &Board{
		ChipSelect: bus.ChipSelect,
		Transport:  bus.Transport,
		closer:     bus,
	}
	if bus.ADC != nil {
		b.Sampler = bus.ADC
	}
	return b, nil
}

func (c *Config) simSteps() uint16 {
	steps := c.SimSteps
	if steps == 0 && c.Device != nil {
		steps = c.Device.NBits
	}
	if steps == 0 {
		return sim.DefaultSteps
	}
	if steps > 0xffff {
		return 0xffff
	}
	return uint16(steps)
}

// Close releases the hardware.
func (b *Board) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}
