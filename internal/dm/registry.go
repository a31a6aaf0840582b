// Package dm is the device registry: an arena of PMIC and regulator
// devices addressed by handle, with category-checked dispatch of the
// generic operations.
package dm

import (
	"sync"

	"github.com/go-logr/logr"

	"pmic-go/bus"
	"pmic-go/errcode"
	"pmic-go/internal/catalog"
	"pmic-go/internal/gateway"
	"pmic-go/internal/regulator"
	"pmic-go/internal/transport"
	"pmic-go/types"
	"pmic-go/x/conv"
)

// Handle indexes the registry arena. Handles are never reused.
type Handle int

// NoHandle is the parent of top-level devices.
const NoHandle Handle = -1

// Kind is the concrete variant behind a handle.
type Kind uint8

const (
	KindPMIC Kind = iota + 1
	KindLDO
	KindBUCK
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindPMIC:
		return "PMIC"
	case KindLDO:
		return "LDO"
	case KindBUCK:
		return "BUCK"
	case KindFixed:
		return "FIXED"
	default:
		return "?"
	}
}

// Category is the uclass of a kind.
func (k Kind) Category() types.Category {
	if k == KindPMIC {
		return types.CategoryPMIC
	}
	return types.CategoryRegulator
}

func kindOf(t types.OutputType) Kind {
	switch t {
	case types.TypeLDO:
		return KindLDO
	case types.TypeBUCK:
		return KindBUCK
	default:
		return KindFixed
	}
}

// Info is a read-only snapshot of one device.
type Info struct {
	Handle   Handle
	Name     string
	Kind     Kind
	Category types.Category
	State    types.State
	Parent   Handle
	Driver   string

	// PMIC only.
	Interface types.Interface
	Bus       string
	Addr      uint16
	CS        uint8
	RegCount  int
}

type chip struct {
	cfg   types.ChipConfig
	iface types.Interface
	order types.ByteOrder
	drv   Driver
	cat   *catalog.Catalog
	gw    *gateway.Gateway
}

type device struct {
	name     string
	kind     Kind
	state    types.State
	parent   Handle
	children []Handle

	chip *chip // KindPMIC

	desc  types.Descriptor   // regulators
	fixed *types.FixedConfig // KindFixed
	ops   regulator.Ops      // set once probed
}

// Registry owns every bound device. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	devs    []*device
	buses   transport.Factory
	locks   *gateway.Locks
	log     logr.Logger
	events  *bus.Bus
	metrics *gateway.Metrics
}

type Option func(*Registry)

func WithLogger(l logr.Logger) Option       { return func(r *Registry) { r.log = l } }
func WithEvents(b *bus.Bus) Option          { return func(r *Registry) { r.events = b } }
func WithMetrics(m *gateway.Metrics) Option { return func(r *Registry) { r.metrics = m } }
func WithLocks(l *gateway.Locks) Option     { return func(r *Registry) { r.locks = l } }

// New builds an empty registry resolving buses through f.
func New(f transport.Factory, opts ...Option) *Registry {
	r := &Registry{buses: f, locks: gateway.NewLocks(), log: logr.Discard()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func invalid(op, msg string) error { return errcode.New(errcode.InvalidParams, op, msg) }

// ---------------- bind ----------------

// Bind attaches a chip and its configured outputs. Nothing touches the bus
// until Probe.
func (r *Registry) Bind(cfg types.ChipConfig) (Handle, error) {
	drv, ok := LookupDriver(cfg.Compatible)
	if !ok {
		return NoHandle, errcode.New(errcode.NotFound, "bind", "no driver for "+cfg.Compatible)
	}
	iface, ok := types.ParseInterface(cfg.Interface)
	if !ok {
		return NoHandle, invalid("bind", "interface "+cfg.Interface)
	}
	order, ok := types.ParseByteOrder(cfg.ByteOrder)
	if !ok {
		return NoHandle, invalid("bind", "byte_order "+cfg.ByteOrder)
	}
	if cfg.Name == "" {
		cfg.Name = drv.Name
	}
	if cfg.Addr == 0 && iface == types.IfaceI2C {
		cfg.Addr = drv.Address
	}
	if cfg.RegCount == 0 {
		cfg.RegCount = drv.RegCount
	}
	if cfg.TxBytes < 0 || cfg.TxBytes > gateway.MaxValueBytes {
		return NoHandle, invalid("bind", "tx_bytes must be 1..3")
	}
	cat, err := catalog.New(cfg.Name, cfg.Outputs, drv.Codecs)
	if err != nil {
		return NoHandle, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.lookup(cfg.Name); taken {
		return NoHandle, invalid("bind", "duplicate device name "+cfg.Name)
	}
	h := r.add(&device{
		name:   cfg.Name,
		kind:   KindPMIC,
		state:  types.StateBound,
		parent: NoHandle,
		chip:   &chip{cfg: cfg, iface: iface, order: order, drv: drv, cat: cat},
	})
	for _, d := range cat.All() {
		name := d.Name
		if name == "-" {
			var b [20]byte
			name = cfg.Name + "." + d.Type.String() + string(conv.Itoa(b[:], int64(d.Number)))
		}
		ch := r.add(&device{
			name:   name,
			kind:   kindOf(d.Type),
			state:  types.StateBound,
			parent: h,
			desc:   d,
		})
		r.devs[h].children = append(r.devs[h].children, ch)
	}
	r.log.V(1).Info("bound pmic", "name", cfg.Name, "driver", drv.Name, "outputs", cat.Len())
	return h, nil
}

// BindFixed attaches a GPIO-switched regulator.
func (r *Registry) BindFixed(cfg types.FixedConfig) (Handle, error) {
	if cfg.Name == "" {
		return NoHandle, invalid("bind_fixed", "name required")
	}
	d := cfg.Descriptor()
	if d.MinUV != types.Unset && d.MaxUV != types.Unset && d.MinUV > d.MaxUV {
		return NoHandle, invalid("bind_fixed", cfg.Name+": min_uV > max_uV")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.lookup(cfg.Name); taken {
		return NoHandle, invalid("bind_fixed", "duplicate device name "+cfg.Name)
	}
	c := cfg
	h := r.add(&device{
		name:   cfg.Name,
		kind:   KindFixed,
		state:  types.StateBound,
		parent: NoHandle,
		desc:   d,
		fixed:  &c,
	})
	r.log.V(1).Info("bound fixed regulator", "name", cfg.Name, "gpio", cfg.GPIO)
	return h, nil
}

// BindBoard binds every chip and fixed regulator of a board.
func (r *Registry) BindBoard(b types.BoardConfig) error {
	for _, c := range b.Chips {
		if _, err := r.Bind(c); err != nil {
			return err
		}
	}
	for _, f := range b.Fixed {
		if _, err := r.BindFixed(f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) add(d *device) Handle {
	r.devs = append(r.devs, d)
	return Handle(len(r.devs) - 1)
}

// ---------------- probe ----------------

// Probe makes a device operational. An output probes its parent first.
func (r *Registry) Probe(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.probe(h)
}

// ProbeAll probes every device in registration order and stops at the
// first failure.
func (r *Registry) ProbeAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h := range r.devs {
		if err := r.probe(Handle(h)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) probe(h Handle) error {
	d, err := r.get(h)
	if err != nil {
		return err
	}
	if d.state == types.StateProbed {
		return nil
	}
	switch {
	case d.chip != nil:
		err = r.probeChip(d)
	case d.fixed != nil:
		err = r.probeFixed(d)
	default:
		err = r.probeOutput(d)
	}
	if err != nil {
		r.log.Error(err, "probe failed", "device", d.name)
		return err
	}
	d.state = types.StateProbed
	r.log.V(1).Info("probed", "device", d.name, "kind", d.kind.String())
	return nil
}

func (r *Registry) probeChip(d *device) error {
	c := d.chip
	var tr gateway.Transport
	switch c.iface {
	case types.IfaceI2C:
		b, ok := r.buses.I2C(c.cfg.Bus)
		if !ok {
			return errcode.New(errcode.NotFound, "probe", "i2c bus "+c.cfg.Bus)
		}
		tr = gateway.NewI2C(b, c.cfg.Addr)
	case types.IfaceSPI:
		b, ok := r.buses.SPI(c.cfg.Bus, c.cfg.CS)
		if !ok {
			return errcode.New(errcode.NotFound, "probe", "spi bus "+c.cfg.Bus)
		}
		tr = gateway.NewSPI(b)
	default:
		return errcode.New(errcode.UnsupportedFeature, "probe", d.name+" has no bus interface")
	}
	gw, err := gateway.New(gateway.Config{
		Name:      c.cfg.Name,
		RegCount:  c.cfg.RegCount,
		TxBytes:   c.cfg.TxBytes,
		ByteOrder: c.order,
	}, tr, r.locks.For(c.cfg.Bus), gateway.WithLogger(r.log.WithName("gateway")), gateway.WithMetrics(r.metrics))
	if err != nil {
		return err
	}
	if err := gw.Probe(); err != nil {
		return err
	}
	c.gw = gw
	return nil
}

func (r *Registry) probeOutput(d *device) error {
	if err := r.probe(d.parent); err != nil {
		return err
	}
	c := r.devs[d.parent].chip
	codec, ok := c.cat.Codec(d.desc.Type)
	if !ok {
		return errcode.New(errcode.UnsupportedFeature, "probe", d.name)
	}
	ops, err := regulator.NewRegister(codec, d.desc, c.gw)
	if err != nil {
		return err
	}
	d.ops = ops
	return nil
}

func (r *Registry) probeFixed(d *device) error {
	pin, ok := r.buses.GPIO(d.fixed.GPIO)
	if !ok {
		return errcode.New(errcode.NotFound, "probe", "gpio "+d.fixed.GPIO)
	}
	ops, err := regulator.NewFixed(*d.fixed, pin)
	if err != nil {
		return err
	}
	d.ops = ops
	return nil
}

// ---------------- lookup ----------------

func (r *Registry) get(h Handle) (*device, error) {
	if h < 0 || int(h) >= len(r.devs) {
		return nil, errcode.New(errcode.NotFound, "dm", "no such device handle")
	}
	return r.devs[h], nil
}

func (r *Registry) lookup(name string) (Handle, bool) {
	for i, d := range r.devs {
		if d.name == name {
			return Handle(i), true
		}
	}
	return NoHandle, false
}

// want resolves h, checks its category, then checks it is probed. No
// register is touched on any failure.
func (r *Registry) want(h Handle, cat types.Category, op string) (*device, error) {
	d, err := r.get(h)
	if err != nil {
		return nil, err
	}
	if d.kind.Category() != cat {
		return nil, errcode.New(errcode.WrongCategory, op, d.name+" is a "+d.kind.Category().String())
	}
	if d.state != types.StateProbed {
		return nil, errcode.New(errcode.NotReady, op, d.name+" not probed")
	}
	return d, nil
}

// ---------------- queries ----------------

// List returns the handles of one category in registration order.
func (r *Registry) List(cat types.Category) []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Handle
	for i, d := range r.devs {
		if d.kind.Category() == cat {
			out = append(out, Handle(i))
		}
	}
	return out
}

// Lookup finds a device by name.
func (r *Registry) Lookup(name string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.lookup(name); ok {
		return h, nil
	}
	return NoHandle, errcode.New(errcode.NotFound, "lookup", name)
}

// FindChip finds a PMIC by bus and address (I2C) or chip select (SPI).
func (r *Registry) FindChip(busID string, addrOrCS uint16) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.devs {
		if d.chip == nil || d.chip.cfg.Bus != busID {
			continue
		}
		switch d.chip.iface {
		case types.IfaceI2C:
			if d.chip.cfg.Addr == addrOrCS {
				return Handle(i), nil
			}
		case types.IfaceSPI:
			if uint16(d.chip.cfg.CS) == addrOrCS {
				return Handle(i), nil
			}
		}
	}
	return NoHandle, errcode.New(errcode.NotFound, "find_chip", busID)
}

// Info snapshots a device. Valid in any state.
func (r *Registry) Info(h Handle) (Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.get(h)
	if err != nil {
		return Info{}, err
	}
	in := Info{
		Handle:   h,
		Name:     d.name,
		Kind:     d.kind,
		Category: d.kind.Category(),
		State:    d.state,
		Parent:   d.parent,
	}
	if c := d.chip; c != nil {
		in.Driver = c.drv.Name
		in.Interface = c.iface
		in.Bus = c.cfg.Bus
		in.Addr = c.cfg.Addr
		in.CS = c.cfg.CS
		in.RegCount = c.cfg.RegCount
		if c.gw != nil {
			in.RegCount = c.gw.RegCount()
		}
	} else if d.parent != NoHandle {
		in.Driver = r.devs[d.parent].chip.drv.Name
	} else {
		in.Driver = "regulator-fixed"
	}
	return in, nil
}

// Children returns the outputs of a PMIC in configuration order.
func (r *Registry) Children(h Handle) ([]Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.get(h)
	if err != nil {
		return nil, err
	}
	if d.kind != KindPMIC {
		return nil, errcode.New(errcode.WrongCategory, "children", d.name+" is a regulator")
	}
	return append([]Handle(nil), d.children...), nil
}

// Descriptor returns the configured constraints of an output.
func (r *Registry) Descriptor(h Handle) (types.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "descriptor")
	if err != nil {
		return types.Descriptor{}, err
	}
	return d.ops.Descriptor(), nil
}

// Modes returns the ordered mode list of an output.
func (r *Registry) Modes(h Handle) ([]types.ModeDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.want(h, types.CategoryRegulator, "modes")
	if err != nil {
		return nil, err
	}
	return d.ops.Modes()
}
