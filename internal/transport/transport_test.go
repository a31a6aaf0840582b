package transport

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"

	"pmic-go/drivers/max77686"
	"pmic-go/drivers/sandbox"
	"pmic-go/types"
)

func TestSimBoard(t *testing.T) {
	s := SimBoard(types.BoardConfig{
		Chips: []types.ChipConfig{
			{Name: "pmic", Compatible: max77686.Compatible, Interface: "i2c", Bus: "i2c0"},
			{Name: "spi-pmic", Compatible: "vendor,other", Interface: "spi", Bus: "spi0", RegCount: 0x20},
			{Name: "spi-pmic1", Compatible: max77686.Compatible, Interface: "spi", Bus: "spi0", CS: 1},
		},
		Fixed: []types.FixedConfig{{Name: "VCC", GPIO: "GPIO5"}},
	})

	b, ok := s.I2C("i2c0")
	if !ok {
		t.Fatal("i2c0 missing")
	}
	var r [1]byte
	if err := b.Tx(max77686.AddressDefault, []byte{0x11}, r[:]); err != nil || r[0] != 0x07 {
		t.Fatalf("BUCK1 voltage reg = %#x %v", r[0], err)
	}
	if err := b.Tx(0x50, nil, nil); !errors.Is(err, sandbox.ErrNoAck) {
		t.Fatalf("empty address: %v", err)
	}
	if _, ok := s.Chip("i2c0", max77686.AddressDefault); !ok {
		t.Fatal("chip lookup")
	}

	if _, ok := s.SPI("spi0", 0); !ok {
		t.Fatal("spi0.0 missing")
	}
	if _, ok := s.SPI("spi0", 2); ok {
		t.Fatal("empty chip-select resolved")
	}
	c0, _ := s.SPIChip("spi0", 0)
	c1, ok := s.SPIChip("spi0", 1)
	if !ok || c0 == c1 {
		t.Fatal("chip-selects share a chip")
	}
	if c1.Reg(0x11) != 0x07 || c0.Reg(0x11) != 0 {
		t.Fatalf("presets %#x %#x", c0.Reg(0x11), c1.Reg(0x11))
	}
	if _, ok := s.I2C("i2c9"); ok {
		t.Fatal("unknown bus resolved")
	}

	p, ok := s.GPIO("GPIO5")
	if !ok {
		t.Fatal("pin missing")
	}
	if err := p.Out(gpio.High); err != nil || p.Read() != gpio.High {
		t.Fatal("pin level")
	}
	if s.AddPin("GPIO5") != p {
		t.Fatal("AddPin should return the existing line")
	}
}
