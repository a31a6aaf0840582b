// Package regulator implements the per-output operation contract: voltage,
// mode, enable and current control for register-backed and GPIO-switched
// outputs.
package regulator

import (
	"pmic-go/errcode"
	"pmic-go/types"
)

// Ops is the capability set every regulator output provides.
type Ops interface {
	Descriptor() types.Descriptor
	Modes() ([]types.ModeDescriptor, error)

	GetValue() (int, error)
	SetValue(uV int, force bool) error

	GetMode() (types.ModeID, error)
	SetMode(id types.ModeID) error

	GetEnable() (bool, error)
	SetEnable(on bool) error

	GetCurrent() (int, error)
	SetCurrent(uA int) error
}

// Codec converts between physical values and register fields for one
// output type of one chip family.
type Codec interface {
	Type() types.OutputType
	Count() int
	Valid(n int) error

	VoltageToRaw(n, uV int) (uint8, error)
	RawToVoltage(n int, raw uint8) (int, error)
	ModeToRaw(n int, id types.ModeID) (uint8, error)
	RawToMode(n int, raw uint8) (types.ModeID, error)
	Modes(n int) ([]types.ModeDescriptor, error)

	VoltageField(n int) (types.Field, error)
	ModeField(n int) (types.Field, error)
}

// RegisterIO is the slice of the chip gateway an output needs.
type RegisterIO interface {
	ReadField(f types.Field) (uint8, error)
	Update(f types.Field, raw uint8) error
}

var (
	ErrNoCurrentControl = &errcode.E{C: errcode.UnsupportedFeature, Op: "regulator", Msg: "no current limit control"}
	ErrFixedValue       = &errcode.E{C: errcode.UnsupportedFeature, Op: "regulator", Msg: "fixed output voltage cannot change"}
	ErrFixedMode        = &errcode.E{C: errcode.UnsupportedFeature, Op: "regulator", Msg: "fixed output has no modes"}
	ErrFixedConstraints = &errcode.E{C: errcode.InvalidRaw, Op: "regulator", Msg: "fixed output needs min_uV == max_uV"}
)

func outOfConstraint(op string) error {
	return errcode.New(errcode.OutOfConstraint, op, "outside configured limits")
}

// checkUA applies the configured current window. Shared by both output kinds.
func checkUA(d types.Descriptor, op string, uA int) error {
	if !d.AllowsUA(uA) {
		return outOfConstraint(op)
	}
	return nil
}
