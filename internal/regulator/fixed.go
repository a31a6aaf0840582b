package regulator

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"pmic-go/errcode"
	"pmic-go/types"
)

// Fixed is a single-voltage output switched by a GPIO line.
type Fixed struct {
	desc       types.Descriptor
	pin        gpio.PinIO
	activeHigh bool
	delay      time.Duration
	sleep      func(time.Duration)
}

// NewFixed binds cfg to its enable line. The line is not driven until
// SetEnable.
func NewFixed(cfg types.FixedConfig, pin gpio.PinIO) (*Fixed, error) {
	if pin == nil {
		return nil, errcode.New(errcode.NotFound, "regulator.fixed", "enable gpio not found")
	}
	return &Fixed{
		desc:       cfg.Descriptor(),
		pin:        pin,
		activeHigh: cfg.EnableActiveHigh,
		delay:      time.Duration(cfg.StartupDelayUS) * time.Microsecond,
		sleep:      time.Sleep,
	}, nil
}

var _ Ops = (*Fixed)(nil)

func (f *Fixed) Descriptor() types.Descriptor { return f.desc }

func (f *Fixed) Modes() ([]types.ModeDescriptor, error) { return nil, ErrFixedMode }

// GetValue reports the single configured voltage.
func (f *Fixed) GetValue() (int, error) {
	if f.desc.MinUV == types.Unset || f.desc.MinUV != f.desc.MaxUV {
		return 0, ErrFixedConstraints
	}
	return f.desc.MinUV, nil
}

func (f *Fixed) SetValue(uV int, force bool) error { return ErrFixedValue }

func (f *Fixed) GetMode() (types.ModeID, error) { return 0, ErrFixedMode }
func (f *Fixed) SetMode(id types.ModeID) error  { return ErrFixedMode }

func (f *Fixed) level(on bool) gpio.Level {
	if f.activeHigh {
		return gpio.Level(on)
	}
	return gpio.Level(!on)
}

func (f *Fixed) GetEnable() (bool, error) {
	return f.pin.Read() == f.level(true), nil
}

// SetEnable drives the line and, when switching on, waits out the
// configured startup delay.
func (f *Fixed) SetEnable(on bool) error {
	if err := f.pin.Out(f.level(on)); err != nil {
		return errcode.Wrap(errcode.IOError, "regulator.fixed", err)
	}
	if on && f.delay > 0 {
		f.sleep(f.delay)
	}
	return nil
}

func (f *Fixed) GetCurrent() (int, error) { return 0, ErrNoCurrentControl }

func (f *Fixed) SetCurrent(uA int) error {
	if err := checkUA(f.desc, "set_current", uA); err != nil {
		return err
	}
	return ErrNoCurrentControl
}
