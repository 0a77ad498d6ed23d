package digipot

import (
	"flag"
	"time"
)

// Config defines the scaling of a device.
type Config struct {
	FullScale uint
	NBits     uint
	Settle    time.Duration
}

// Defaults
const (
	DefaultFullScale uint = 5000
	DefaultNBits     uint = 512
)

var defaultConfig = Config{
	FullScale: DefaultFullScale,
	NBits:     DefaultNBits,
	Settle:    DefaultSettle,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.UintVar(&defaultConfig.FullScale, "full-scale", defaultConfig.FullScale, "Resistance at full scale, in the unit used by set commands.")
	flag.UintVar(&defaultConfig.NBits, "n-bits", defaultConfig.NBits, "Raw wiper steps at full scale.")
	flag.DurationVar(&defaultConfig.Settle, "settle", defaultConfig.Settle, "Chip-select settle delay.")
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

// NewDevice creates a Device using the config. Values beyond 16 bits are
// capped at 0xffff.
func (c *Config) NewDevice(cs ChipSelect) *Device {
	d := New(cs, clamp16(c.FullScale), clamp16(c.NBits))
	d.Settle = c.Settle
	return d
}

func clamp16(v uint) uint16 {
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
