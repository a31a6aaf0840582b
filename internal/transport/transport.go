// Package transport supplies configured buses and GPIO lines by id.
package transport

import (
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// Factory injects bus instances by configured id. Buses use the TinyGo
// drivers interfaces so the same chip code runs on MCU and host builds.
type Factory interface {
	I2C(id string) (drivers.I2C, bool)
	SPI(id string, cs uint8) (drivers.SPI, bool)
	GPIO(name string) (gpio.PinIO, bool)
}
