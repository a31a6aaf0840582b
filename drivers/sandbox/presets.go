package sandbox

import "pmic-go/drivers/max77686"

// Power-on register contents of the emulated MAX77686.
var max77686Defaults = map[uint8]byte{
	0x10: 0x03,      // BUCK1 ON
	0x11: 0x07,      // BUCK1 1.10 V
	0x12: 0x30,      // BUCK2 ON
	0x30: 0x03,      // BUCK5 ON
	0x31: 0x07,      // BUCK5 1.10 V
	0x40: 0xC0 | 16, // LDO1 ON 1.20 V
	0x42: 0xC0 | 20, // LDO3 ON 1.80 V
}

// NewMAX77686 returns an emulated MAX77686 at its default address.
func NewMAX77686() *Chip {
	return New(max77686.AddressDefault, max77686.RegCount, max77686Defaults)
}

// Preset builds an emulated chip for a compatible string. Unknown chips get
// a blank register file of regCount bytes (0x100 when zero).
func Preset(compatible string, addr uint16, regCount int) *Chip {
	if compatible == max77686.Compatible {
		if addr == 0 {
			addr = max77686.AddressDefault
		}
		if regCount == 0 {
			regCount = max77686.RegCount
		}
		return New(addr, regCount, max77686Defaults)
	}
	if regCount == 0 {
		regCount = 0x100
	}
	return New(addr, regCount, nil)
}
