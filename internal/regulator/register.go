package regulator

import (
	"pmic-go/types"
)

// Register is an output whose state lives in its parent chip's registers.
// It has no enable bit: enable maps onto the ON and OFF modes.
type Register struct {
	codec Codec
	desc  types.Descriptor
	io    RegisterIO
}

// NewRegister validates the output number against the codec.
func NewRegister(c Codec, d types.Descriptor, io RegisterIO) (*Register, error) {
	if err := c.Valid(d.Number); err != nil {
		return nil, err
	}
	return &Register{codec: c, desc: d, io: io}, nil
}

var _ Ops = (*Register)(nil)

func (r *Register) Descriptor() types.Descriptor { return r.desc }

func (r *Register) Modes() ([]types.ModeDescriptor, error) { return r.codec.Modes(r.desc.Number) }

func (r *Register) GetValue() (int, error) {
	f, err := r.codec.VoltageField(r.desc.Number)
	if err != nil {
		return 0, err
	}
	raw, err := r.io.ReadField(f)
	if err != nil {
		return 0, err
	}
	return r.codec.RawToVoltage(r.desc.Number, raw)
}

// SetValue checks support, then limits (unless forced), then encoding, and
// only then touches the chip.
func (r *Register) SetValue(uV int, force bool) error {
	f, err := r.codec.VoltageField(r.desc.Number)
	if err != nil {
		return err
	}
	if !force && !r.desc.AllowsUV(uV) {
		return outOfConstraint("set_value")
	}
	raw, err := r.codec.VoltageToRaw(r.desc.Number, uV)
	if err != nil {
		return err
	}
	return r.io.Update(f, raw)
}

func (r *Register) GetMode() (types.ModeID, error) {
	f, err := r.codec.ModeField(r.desc.Number)
	if err != nil {
		return 0, err
	}
	raw, err := r.io.ReadField(f)
	if err != nil {
		return 0, err
	}
	return r.codec.RawToMode(r.desc.Number, raw)
}

func (r *Register) SetMode(id types.ModeID) error {
	raw, err := r.codec.ModeToRaw(r.desc.Number, id)
	if err != nil {
		return err
	}
	f, err := r.codec.ModeField(r.desc.Number)
	if err != nil {
		return err
	}
	return r.io.Update(f, raw)
}

func (r *Register) GetEnable() (bool, error) {
	m, err := r.GetMode()
	if err != nil {
		return false, err
	}
	return m != types.ModeOff, nil
}

func (r *Register) SetEnable(on bool) error {
	if on {
		return r.SetMode(types.ModeOn)
	}
	return r.SetMode(types.ModeOff)
}

func (r *Register) GetCurrent() (int, error) { return 0, ErrNoCurrentControl }

func (r *Register) SetCurrent(uA int) error {
	if err := checkUA(r.desc, "set_current", uA); err != nil {
		return err
	}
	return ErrNoCurrentControl
}
