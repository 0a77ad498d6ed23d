// Package periph binds the potentiometer capabilities to real hardware
// through periph.io.
package periph
