// Package protocol encodes MCP4161-class digital potentiometer commands.
package protocol

// Every operation is a two byte frame clocked out while chip-select is low:
//
//	command byte: AAAA CC DD
//	data byte:    DDDD DDDD
//
// AAAA is the memory address, CC the command and DD..DD the 10-bit data
// word (only with Write). Commands without data are followed by a zero
// filler byte so the device always sees 16 clocks.
//
// Producer: host (this package)
// Consumer: potentiometer
