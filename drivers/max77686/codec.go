package max77686

import (
	"pmic-go/errcode"
	"pmic-go/types"
	"pmic-go/x/mathx"
)

var (
	// Sentinel errors (TinyGo-safe; no fmt).
	ErrLDONumber       = &errcode.E{C: errcode.OutOfRange, Op: "max77686", Msg: "ldo number must be 1..26"}
	ErrBuckNumber      = &errcode.E{C: errcode.OutOfRange, Op: "max77686", Msg: "buck number must be 1..9"}
	ErrVoltageRange    = &errcode.E{C: errcode.OutOfRange, Op: "max77686", Msg: "voltage not encodable for this output"}
	ErrVoltageRaw      = &errcode.E{C: errcode.InvalidRaw, Op: "max77686", Msg: "voltage code above output maximum"}
	ErrModeUnsupported = &errcode.E{C: errcode.UnsupportedMode, Op: "max77686", Msg: "mode not supported on this output"}
	ErrModeRaw         = &errcode.E{C: errcode.InvalidRaw, Op: "max77686", Msg: "mode code has no meaning on this output"}

	// BUCK2..4 run through the DVS voltage scaler, which is not modelled.
	ErrVoltageScaler = &errcode.E{C: errcode.UnsupportedFeature, Op: "max77686", Msg: "buck2-4 voltage scaler not implemented"}
)

// LDO is the codec for the 26 linear regulators.
type LDO struct{}

// Buck is the codec for the 9 step-down converters.
type Buck struct{}

// ---- LDO ----

func (LDO) Type() types.OutputType { return types.TypeLDO }
func (LDO) Count() int             { return LDOCount }

func (LDO) Valid(n int) error {
	if n < 1 || n > LDOCount {
		return ErrLDONumber
	}
	return nil
}

// LDOStep returns the voltage step of LDOn in µV.
func LDOStep(n int) int {
	switch n {
	case 1, 2, 6, 7, 8, 15:
		return LDOStepLow
	default:
		return LDOStepHigh
	}
}

// VoltageToRaw encodes uV for LDOn. Values between steps round down.
func (c LDO) VoltageToRaw(n, uV int) (uint8, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	step := LDOStep(n)
	if !mathx.Between(uV, LDOMinUV, LDOMinUV+ldoVoltMaxRaw*step) {
		return 0, ErrVoltageRange
	}
	return uint8((uV - LDOMinUV) / step), nil
}

func (c LDO) RawToVoltage(n int, raw uint8) (int, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	if raw > ldoVoltMaxRaw {
		return 0, ErrVoltageRaw
	}
	return int(raw)*LDOStep(n) + LDOMinUV, nil
}

func (c LDO) ModeToRaw(n int, id types.ModeID) (uint8, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	return modeToRaw(ldoModeTable(n), id)
}

func (c LDO) RawToMode(n int, raw uint8) (types.ModeID, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	return rawToMode(ldoModeTable(n), raw)
}

func (c LDO) Modes(n int) ([]types.ModeDescriptor, error) {
	if err := c.Valid(n); err != nil {
		return nil, err
	}
	return cloneModes(ldoModeTable(n)), nil
}

// VoltageField and ModeField share the LDOn CTRL1 register.
func (c LDO) VoltageField(n int) (types.Field, error) {
	if err := c.Valid(n); err != nil {
		return types.Field{}, err
	}
	return types.Field{Reg: regLDO1Ctrl1 + uint8(n-1), Mask: ldoVoltMask}, nil
}

func (c LDO) ModeField(n int) (types.Field, error) {
	if err := c.Valid(n); err != nil {
		return types.Field{}, err
	}
	return types.Field{Reg: regLDO1Ctrl1 + uint8(n-1), Mask: modeMask, Shift: ldoModeShift}, nil
}

// ---- BUCK ----

func (Buck) Type() types.OutputType { return types.TypeBUCK }
func (Buck) Count() int             { return BuckCount }

func (Buck) Valid(n int) error {
	if n < 1 || n > BuckCount {
		return ErrBuckNumber
	}
	return nil
}

func usesScaler(n int) bool { return n >= 2 && n <= 4 }

func (c Buck) VoltageToRaw(n, uV int) (uint8, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	if usesScaler(n) {
		return 0, ErrVoltageScaler
	}
	if !mathx.Between(uV, BuckMinUV, BuckMinUV+buckVoltMaxRaw*BuckStep) {
		return 0, ErrVoltageRange
	}
	return uint8((uV - BuckMinUV) / BuckStep), nil
}

func (c Buck) RawToVoltage(n int, raw uint8) (int, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	if usesScaler(n) {
		return 0, ErrVoltageScaler
	}
	if raw > buckVoltMaxRaw {
		return 0, ErrVoltageRaw
	}
	return int(raw)*BuckStep + BuckMinUV, nil
}

func (c Buck) ModeToRaw(n int, id types.ModeID) (uint8, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	return modeToRaw(buckModeTable(n), id)
}

func (c Buck) RawToMode(n int, raw uint8) (types.ModeID, error) {
	if err := c.Valid(n); err != nil {
		return 0, err
	}
	return rawToMode(buckModeTable(n), raw)
}

func (c Buck) Modes(n int) ([]types.ModeDescriptor, error) {
	if err := c.Valid(n); err != nil {
		return nil, err
	}
	return cloneModes(buckModeTable(n)), nil
}

// VoltageField lives in the register after BUCKn control.
func (c Buck) VoltageField(n int) (types.Field, error) {
	if err := c.Valid(n); err != nil {
		return types.Field{}, err
	}
	if usesScaler(n) {
		return types.Field{}, ErrVoltageScaler
	}
	return types.Field{Reg: buckCtrl[n] + 1, Mask: buckVoltMask}, nil
}

func (c Buck) ModeField(n int) (types.Field, error) {
	if err := c.Valid(n); err != nil {
		return types.Field{}, err
	}
	shift := buckModeShift1
	if usesScaler(n) {
		shift = buckModeShift2
	}
	return types.Field{Reg: buckCtrl[n], Mask: modeMask, Shift: shift}, nil
}
