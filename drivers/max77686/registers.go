package max77686

// Chip identity.
const (
	Name       = "max77686"
	Compatible = "maxim,max77686"

	AddressDefault uint16 = 0x09 // 0x12 >> 1
	RegCount              = 0x7F
)

// Output counts.
const (
	LDOCount  = 26
	BuckCount = 9
)

// Register map (subset used by the regulator outputs).
const (
	regLDO1Ctrl1 uint8 = 0x40 // LDOn control at regLDO1Ctrl1 + n - 1
)

// BUCKn control register; the output voltage register follows it.
// Index 0 is unused.
var buckCtrl = [BuckCount + 1]uint8{0xFF, 0x10, 0x12, 0x1C, 0x26, 0x30, 0x32, 0x34, 0x36, 0x38}

// Field layout.
const (
	ldoVoltMask  uint8 = 0x3F
	ldoModeShift uint8 = 6

	buckVoltMask   uint8 = 0x3F
	buckModeShift1 uint8 = 0 // BUCK1, BUCK5..9
	buckModeShift2 uint8 = 4 // BUCK2..4

	modeMask uint8 = 0x03
)

// Voltage encoding (µV).
const (
	LDOMinUV    = 800_000
	LDOStepLow  = 25_000 // LDO 1,2,6,7,8,15
	LDOStepHigh = 50_000

	BuckMinUV = 750_000
	BuckStep  = 50_000

	ldoVoltMaxRaw  = 0x3F
	buckVoltMaxRaw = 0x3F
)

// Raw mode field values. LPM and STANDBY share a code on LDOs; which one
// applies depends on the output number.
const (
	ldoModeOff        uint8 = 0x0
	ldoModeLPM        uint8 = 0x1
	ldoModeStandby    uint8 = 0x1
	ldoModeStandbyLPM uint8 = 0x2
	ldoModeOn         uint8 = 0x3

	buckModeOff     uint8 = 0x0
	buckModeStandby uint8 = 0x1
	buckModeLPM     uint8 = 0x2
	buckModeOn      uint8 = 0x3
)
