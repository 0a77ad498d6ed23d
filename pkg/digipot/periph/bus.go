package periph

import (
	"fmt"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Bus is the opened hardware.
type Bus struct {
	Transport  *Transport
	ChipSelect *ChipSelect
	// ADC is nil unless configured.
	ADC analog.PinADC

	port spi.PortCloser
}

// Open initializes the host drivers and opens the configured hardware.
func Open(c *Config) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	cs := gpioreg.ByName(c.CS)
	if cs == nil {
		return nil, fmt.Errorf("unknown chip-select pin %q", c.CS)
	}
	var adc analog.PinADC
	if c.ADC != "" {
		p := gpioreg.ByName(c.ADC)
		if p == nil {
			return nil, fmt.Errorf("unknown analog pin %q", c.ADC)
		}
		var ok bool
		if adc, ok = p.(analog.PinADC); !ok {
			return nil, fmt.Errorf("pin %s is not an ADC", p)
		}
	}
	port, err := spireg.Open(c.SPI)
	if err != nil {
		return nil, err
	}
	return connect(port, c.Hz, &ChipSelect{Pin: cs}, adc)
}

func connect(port spi.PortCloser, hz int64, cs *ChipSelect, adc analog.PinADC) (*Bus, error) {
	conn, err := port.Connect(physic.Hertz*physic.Frequency(hz), spi.Mode0|spi.NoCS, 8)
	if err != nil {
		return nil, multierr.Combine(err, port.Close())
	}
	return &Bus{
		Transport:  &Transport{Conn: conn},
		ChipSelect: cs,
		ADC:        adc,
		port:       port,
	}, nil
}

// Close releases the hardware, leaving the chip deselected.
func (b *Bus) Close() error {
	b.ChipSelect.SetHigh()
	var err error
	if b.ADC != nil {
		err = b.ADC.Halt()
	}
	return multierr.Append(err, b.port.Close())
}
