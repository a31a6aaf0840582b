package transport

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// SPIClock is the rate used for every PMIC SPI connection.
const SPIClock = physic.MegaHertz

// Host is a Factory over the buses and GPIO lines of a Linux host. Bus ids
// are periph registry names ("1", "I2C1", "/dev/i2c-1", "SPI0.0").
type Host struct {
	mu      sync.Mutex
	i2c     map[string]drivers.I2C
	spi     map[string]drivers.SPI
	closers []io.Closer
}

var _ Factory = (*Host)(nil)

// NewHost loads the periph host drivers.
func NewHost() (*Host, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return &Host{i2c: map[string]drivers.I2C{}, spi: map[string]drivers.SPI{}}, nil
}

// I2C opens bus id on first use. periph's i2c.Bus already has the
// drivers.I2C Tx shape.
func (h *Host) I2C(id string) (drivers.I2C, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.i2c[id]; ok {
		return b, true
	}
	b, err := i2creg.Open(id)
	if err != nil {
		return nil, false
	}
	h.closers = append(h.closers, b)
	h.i2c[id] = b
	return b, true
}

// SPI opens and connects port id on first use (mode 0, 8-bit words). An id
// without a chip-select suffix gets ".cs" appended.
func (h *Host) SPI(id string, cs uint8) (drivers.SPI, bool) {
	if !strings.Contains(id, ".") {
		id += "." + strconv.Itoa(int(cs))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.spi[id]; ok {
		return c, true
	}
	p, err := spireg.Open(id)
	if err != nil {
		return nil, false
	}
	conn, err := p.Connect(SPIClock, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, false
	}
	h.closers = append(h.closers, p)
	c := spiConn{conn}
	h.spi[id] = c
	return c, true
}

func (h *Host) GPIO(name string) (gpio.PinIO, bool) {
	p := gpioreg.ByName(name)
	return p, p != nil
}

// Close releases every opened bus.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var first error
	for _, c := range h.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}

// spiConn adds the single-byte transfer drivers.SPI asks for.
type spiConn struct{ spi.Conn }

func (c spiConn) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := c.Conn.Tx([]byte{b}, r[:])
	return r[0], err
}
