package sim

import (
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// Defaults of Divider.
const (
	DefaultVref       = 3300 * physic.MilliVolt
	DefaultResolution = 1023
)

// Divider simulates an ADC measuring the wiper of a chip used as a voltage
// divider between Vref and ground.
type Divider struct {
	Chip       *Chip
	Vref       physic.ElectricPotential
	Resolution int32
}

// NewDivider creates a Divider with a 3.3V reference and a 10-bit ADC.
func NewDivider(chip *Chip) *Divider {
	return &Divider{Chip: chip, Vref: DefaultVref, Resolution: DefaultResolution}
}

// Range returns the minimum and maximum samples.
func (d *Divider) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{}, analog.Sample{V: d.Vref, Raw: d.Resolution}
}

// Read samples the wiper voltage.
func (d *Divider) Read() (analog.Sample, error) {
	steps := int64(d.Chip.Steps)
	if steps == 0 {
		return analog.Sample{}, nil
	}
	w := int64(d.Chip.Wiper())
	return analog.Sample{
		V:   d.Vref * physic.ElectricPotential(w) / physic.ElectricPotential(steps),
		Raw: int32(int64(d.Resolution) * w / steps),
	}, nil
}
