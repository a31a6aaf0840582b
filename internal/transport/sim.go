package transport

import (
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"tinygo.org/x/drivers"

	"pmic-go/drivers/sandbox"
	"pmic-go/types"
)

// simBus routes I2C transactions to emulated chips by address.
type simBus struct {
	mu    sync.Mutex
	chips map[uint16]*sandbox.Chip
}

func (b *simBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	c, ok := b.chips[addr]
	b.mu.Unlock()
	if !ok {
		return sandbox.ErrNoAck
	}
	return c.Tx(addr, w, r)
}

// Sim is a Factory backed by emulated chips and fake GPIO lines.
type Sim struct {
	mu   sync.Mutex
	i2c  map[string]*simBus
	spi  map[string]*sandbox.Chip
	pins map[string]*gpiotest.Pin
}

var _ Factory = (*Sim)(nil)

func NewSim() *Sim {
	return &Sim{
		i2c:  map[string]*simBus{},
		spi:  map[string]*sandbox.Chip{},
		pins: map[string]*gpiotest.Pin{},
	}
}

// SimBoard populates a Sim with one emulated chip per configured PMIC and
// one fake line per fixed regulator.
func SimBoard(b types.BoardConfig) *Sim {
	s := NewSim()
	for _, c := range b.Chips {
		iface, _ := types.ParseInterface(c.Interface)
		switch iface {
		case types.IfaceI2C:
			chip := sandbox.Preset(c.Compatible, c.Addr, c.RegCount)
			s.AddI2C(c.Bus, chipAddr(c, chip), chip)
		case types.IfaceSPI:
			s.AddSPI(c.Bus, c.CS, sandbox.Preset(c.Compatible, 0, c.RegCount))
		}
	}
	for _, f := range b.Fixed {
		s.AddPin(f.GPIO)
	}
	return s
}

// chipAddr is where the emulated chip answers when the board omits addr.
func chipAddr(c types.ChipConfig, chip *sandbox.Chip) uint16 {
	if c.Addr != 0 {
		return c.Addr
	}
	return chip.Addr()
}

// AddI2C attaches chip at addr on bus id.
func (s *Sim) AddI2C(id string, addr uint16, chip *sandbox.Chip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.i2c[id]
	if !ok {
		b = &simBus{chips: map[uint16]*sandbox.Chip{}}
		s.i2c[id] = b
	}
	b.mu.Lock()
	b.chips[addr] = chip
	b.mu.Unlock()
}

func spiKey(id string, cs uint8) string { return id + "." + strconv.Itoa(int(cs)) }

// AddSPI attaches chip to chip-select cs of SPI bus id.
func (s *Sim) AddSPI(id string, cs uint8, chip *sandbox.Chip) {
	s.mu.Lock()
	s.spi[spiKey(id, cs)] = chip
	s.mu.Unlock()
}

// AddPin creates (or returns) a fake GPIO line.
func (s *Sim) AddPin(name string) *gpiotest.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pins[name]; ok {
		return p
	}
	p := &gpiotest.Pin{N: name, Num: len(s.pins)}
	s.pins[name] = p
	return p
}

// Chip returns the emulated chip at addr on I2C bus id.
func (s *Sim) Chip(id string, addr uint16) (*sandbox.Chip, bool) {
	s.mu.Lock()
	b, ok := s.i2c[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.chips[addr]
	return c, ok
}

func (s *Sim) I2C(id string) (drivers.I2C, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.i2c[id]
	if !ok {
		return nil, false
	}
	return b, true
}

// SPIChip returns the emulated chip behind cs on SPI bus id.
func (s *Sim) SPIChip(id string, cs uint8) (*sandbox.Chip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.spi[spiKey(id, cs)]
	return c, ok
}

func (s *Sim) SPI(id string, cs uint8) (drivers.SPI, bool) {
	c, ok := s.SPIChip(id, cs)
	if !ok {
		return nil, false
	}
	return sandbox.SPI{Chip: c}, true
}

func (s *Sim) GPIO(name string) (gpio.PinIO, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pins[name]
	if !ok {
		return nil, false
	}
	return p, true
}
