package gateway

import (
	"encoding/binary"
	"errors"

	"tinygo.org/x/drivers"
)

// Transport moves raw register bytes for one chip. Offsets are already
// bounds-checked by the Gateway.
type Transport interface {
	ReadRegs(off uint8, buf []byte) error
	WriteRegs(off uint8, data []byte) error
	Probe() error
}

// ---------------- I2C ----------------

// I2C addresses a chip on a TinyGo-style I2C bus. Register reads are a
// one-byte pointer write followed by a read; writes carry the pointer first.
type I2C struct {
	bus  drivers.I2C
	addr uint16
	w    [1 + maxBurst]byte
}

// Longest single write we frame without allocating (a whole 0x7F map fits).
const maxBurst = 0x80

func NewI2C(bus drivers.I2C, addr uint16) *I2C {
	return &I2C{bus: bus, addr: addr}
}

func (t *I2C) ReadRegs(off uint8, buf []byte) error {
	t.w[0] = off
	return t.bus.Tx(t.addr, t.w[:1], buf)
}

func (t *I2C) WriteRegs(off uint8, data []byte) error {
	if len(data) > maxBurst {
		return errBurstTooLong
	}
	t.w[0] = off
	n := copy(t.w[1:], data)
	return t.bus.Tx(t.addr, t.w[:1+n], nil)
}

// Probe is an address-only transaction; a NACK surfaces as an error.
func (t *I2C) Probe() error {
	return t.bus.Tx(t.addr, nil, nil)
}

// ---------------- SPI ----------------

var (
	errBurstTooLong = errors.New("burst_too_long")
	errSPIRegister  = errors.New("spi_register_above_0x3f")
)

// SPIMaxRegs is how many registers the 6-bit frame field can address.
const SPIMaxRegs = 0x40

// SPIFrame packs one 32-bit PMIC SPI word: bit 31 write flag, bits 30..25
// register, bits 23..0 value.
func SPIFrame(reg uint8, val uint32, write bool) uint32 {
	var w uint32
	if write {
		w = 1
	}
	return w<<31 | uint32(reg)<<25 | val&0xFFFFFF
}

// SPI talks to a chip using one big-endian 32-bit frame per register. A
// write is followed by a read frame of the same register.
type SPI struct {
	bus    drivers.SPI
	tx, rx [4]byte
}

func NewSPI(bus drivers.SPI) *SPI { return &SPI{bus: bus} }

// MaxRegs bounds the gateway's register window.
func (t *SPI) MaxRegs() int { return SPIMaxRegs }

func (t *SPI) xfer(frame uint32) (uint32, error) {
	binary.BigEndian.PutUint32(t.tx[:], frame)
	if err := t.bus.Tx(t.tx[:], t.rx[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(t.rx[:]), nil
}

func (t *SPI) ReadRegs(off uint8, buf []byte) error {
	for i := range buf {
		reg := off + uint8(i)
		if int(reg) >= SPIMaxRegs {
			return errSPIRegister
		}
		v, err := t.xfer(SPIFrame(reg, 0, false))
		if err != nil {
			return err
		}
		buf[i] = byte(v)
	}
	return nil
}

func (t *SPI) WriteRegs(off uint8, data []byte) error {
	for i, b := range data {
		reg := off + uint8(i)
		if int(reg) >= SPIMaxRegs {
			return errSPIRegister
		}
		if _, err := t.xfer(SPIFrame(reg, uint32(b), true)); err != nil {
			return err
		}
		if _, err := t.xfer(SPIFrame(reg, 0, false)); err != nil {
			return err
		}
	}
	return nil
}

// Probe reads register 0.
func (t *SPI) Probe() error {
	_, err := t.xfer(SPIFrame(0, 0, false))
	return err
}
