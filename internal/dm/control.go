package dm

import (
	"pmic-go/bus"
	"pmic-go/types"
)

// Event topics: regulator/<name>/{value,mode,enable}, all retained.
const (
	TopicRegulator = "regulator"
	TopicValue     = "value"
	TopicMode      = "mode"
	TopicEnable    = "enable"
)

func (r *Registry) publish(name, what string, payload any) {
	if r.events == nil {
		return
	}
	r.events.Publish(r.events.NewMessage(bus.T(TopicRegulator, name, what), payload, true))
}

// ---------------- regulator operations ----------------

func (r *Registry) GetValue(h Handle) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "get_value")
	if err != nil {
		return 0, err
	}
	return d.ops.GetValue()
}

// SetValue programs uV. Limits are enforced unless force is set; the
// chip's encoding limits always are.
func (r *Registry) SetValue(h Handle, uV int, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "set_value")
	if err != nil {
		return err
	}
	if err := d.ops.SetValue(uV, force); err != nil {
		r.log.V(1).Info("set value rejected", "regulator", d.name, "uV", uV, "force", force, "err", err.Error())
		return err
	}
	r.log.Info("set value", "regulator", d.name, "uV", uV, "force", force)
	if r.events != nil {
		// Publish what the chip now holds; encoding may have rounded down.
		if got, err := d.ops.GetValue(); err == nil {
			r.publish(d.name, TopicValue, types.RegulatorValue{MicroV: got})
		}
	}
	return nil
}

func (r *Registry) GetMode(h Handle) (types.ModeID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "get_mode")
	if err != nil {
		return 0, err
	}
	return d.ops.GetMode()
}

func (r *Registry) SetMode(h Handle, id types.ModeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "set_mode")
	if err != nil {
		return err
	}
	if err := d.ops.SetMode(id); err != nil {
		return err
	}
	modes, _ := d.ops.Modes()
	name := types.ModeName(modes, id)
	r.log.Info("set mode", "regulator", d.name, "mode", name)
	r.publish(d.name, TopicMode, types.RegulatorMode{Mode: id, Name: name})
	return nil
}

func (r *Registry) GetEnable(h Handle) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "get_enable")
	if err != nil {
		return false, err
	}
	return d.ops.GetEnable()
}

func (r *Registry) SetEnable(h Handle, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "set_enable")
	if err != nil {
		return err
	}
	if err := d.ops.SetEnable(on); err != nil {
		return err
	}
	r.log.Info("set enable", "regulator", d.name, "on", on)
	r.publish(d.name, TopicEnable, types.RegulatorEnable{On: on})
	return nil
}

func (r *Registry) GetCurrent(h Handle) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "get_current")
	if err != nil {
		return 0, err
	}
	return d.ops.GetCurrent()
}

func (r *Registry) SetCurrent(h Handle, uA int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "set_current")
	if err != nil {
		return err
	}
	return d.ops.SetCurrent(uA)
}

// ApplyBootOn enables every probed output marked boot-on or always-on, in
// registration order, and returns the first failure.
func (r *Registry) ApplyBootOn() error {
	for _, h := range r.List(types.CategoryRegulator) {
		r.mu.Lock()
		d := r.devs[h]
		skip := d.state != types.StateProbed || !(d.desc.BootOn || d.desc.AlwaysOn)
		r.mu.Unlock()
		if skip {
			continue
		}
		if err := r.SetEnable(h, true); err != nil {
			return err
		}
	}
	return nil
}

// ---------------- PMIC operations ----------------

// RawRead reads one register.
func (r *Registry) RawRead(h Handle, off int) (byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryPMIC, "raw_read")
	if err != nil {
		return 0, err
	}
	var b [1]byte
	if err := d.chip.gw.Read(off, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// RawWrite writes one register.
func (r *Registry) RawWrite(h Handle, off int, v byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryPMIC, "raw_write")
	if err != nil {
		return err
	}
	r.log.V(1).Info("raw write", "pmic", d.name, "off", off, "val", v)
	return d.chip.gw.Write(off, []byte{v})
}

// ReadValue reads one value of the chip's configured width and byte order.
func (r *Registry) ReadValue(h Handle, off int) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryPMIC, "read_value")
	if err != nil {
		return 0, err
	}
	return d.chip.gw.ReadValue(off)
}

// WriteValue is the write side of ReadValue.
func (r *Registry) WriteValue(h Handle, off int, v uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryPMIC, "write_value")
	if err != nil {
		return err
	}
	return d.chip.gw.WriteValue(off, v)
}

// Dump reads the whole register map.
func (r *Registry) Dump(h Handle) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryPMIC, "dump")
	if err != nil {
		return nil, err
	}
	return d.chip.gw.Dump()
}
