// Package sim provides a software model of the potentiometer and of an ADC
// measuring its wiper, so the whole stack runs without hardware.
package sim
