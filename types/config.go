package types

// Board configuration. Field tags are JSON; YAML files go through the
// JSON tags as well.

type BoardConfig struct {
	Chips []ChipConfig  `json:"chips"`
	Fixed []FixedConfig `json:"fixed,omitempty"`
}

// ChipConfig describes one PMIC instance and the outputs the board uses.
type ChipConfig struct {
	Name       string `json:"name"`
	Compatible string `json:"compatible"` // e.g. "maxim,max77686"
	Interface  string `json:"interface"`  // "i2c" | "spi"
	Bus        string `json:"bus"`        // e.g. "i2c0"
	Addr       uint16 `json:"addr,omitempty"`
	CS         uint8  `json:"cs,omitempty"`
	RegCount   int    `json:"reg_count,omitempty"` // 0 => driver default
	ByteOrder  string `json:"byte_order,omitempty"`
	TxBytes    int    `json:"tx_bytes,omitempty"` // register value width, 0 => 1

	Outputs []OutputConfig `json:"outputs,omitempty"`
}

// OutputConfig is one constraint record. Nil pointers are "not configured".
type OutputConfig struct {
	Type     string `json:"type"` // "ldo" | "buck" | "dvs"
	Number   int    `json:"number"`
	Name     string `json:"name,omitempty"`
	MinUV    *int   `json:"min_uV,omitempty"`
	MaxUV    *int   `json:"max_uV,omitempty"`
	MinUA    *int   `json:"min_uA,omitempty"`
	MaxUA    *int   `json:"max_uA,omitempty"`
	AlwaysOn bool   `json:"always_on,omitempty"`
	BootOn   bool   `json:"boot_on,omitempty"`
}

// FixedConfig is a GPIO-switched regulator with a single voltage.
type FixedConfig struct {
	Name             string `json:"name"`
	GPIO             string `json:"gpio"` // line name
	MinUV            *int   `json:"min_uV,omitempty"`
	MaxUV            *int   `json:"max_uV,omitempty"`
	EnableActiveHigh bool   `json:"enable_active_high,omitempty"`
	OpenDrain        bool   `json:"gpio_open_drain,omitempty"`
	StartupDelayUS   int    `json:"startup_delay_us,omitempty"`
	AlwaysOn         bool   `json:"always_on,omitempty"`
	BootOn           bool   `json:"boot_on,omitempty"`
}

// IntOr returns *p or def when p is nil.
func IntOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// Int returns a pointer to v, for building configs in code.
func Int(v int) *int { return &v }

// Descriptor converts a record into its descriptor. The type must already
// be validated by the caller.
func (o OutputConfig) Descriptor(t OutputType) Descriptor {
	name := o.Name
	if name == "" {
		name = "-"
	}
	return Descriptor{
		Type:     t,
		Number:   o.Number,
		MinUV:    IntOr(o.MinUV, Unset),
		MaxUV:    IntOr(o.MaxUV, Unset),
		MinUA:    IntOr(o.MinUA, Unset),
		MaxUA:    IntOr(o.MaxUA, Unset),
		AlwaysOn: o.AlwaysOn,
		BootOn:   o.BootOn,
		Name:     name,
	}
}

// Descriptor of a fixed regulator. Number is always 0.
func (f FixedConfig) Descriptor() Descriptor {
	return Descriptor{
		Type:     TypeFixed,
		MinUV:    IntOr(f.MinUV, Unset),
		MaxUV:    IntOr(f.MaxUV, Unset),
		MinUA:    Unset,
		MaxUA:    Unset,
		AlwaysOn: f.AlwaysOn,
		BootOn:   f.BootOn,
		Name:     f.Name,
	}
}
