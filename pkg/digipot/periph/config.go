package periph

import (
	"flag"
)

// Config defines the hardware wiring.
type Config struct {
	// SPI is the SPI port name in spireg, e.g. "SPI0.0".
	SPI string
	// Hz is the SPI clock frequency.
	Hz int64
	// CS is the GPIO pin driving chip-select.
	CS string
	// ADC is an optional analog pin measuring the wiper.
	ADC string
}

// Defaults
const (
	DefaultSPI       = "SPI0.0"
	DefaultHz  int64 = 1000000
	DefaultCS        = "GPIO8"
)

var defaultConfig = Config{
	SPI: DefaultSPI,
	Hz:  DefaultHz,
	CS:  DefaultCS,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.SPI, "spi", defaultConfig.SPI, "SPI port the potentiometer is attached to.")
	flag.Int64Var(&defaultConfig.Hz, "spi-hz", defaultConfig.Hz, "SPI clock frequency in Hz.")
	flag.StringVar(&defaultConfig.CS, "cs", defaultConfig.CS, "GPIO pin driving chip-select.")
	flag.StringVar(&defaultConfig.ADC, "adc", defaultConfig.ADC, "Optional analog pin measuring the wiper.")
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
