// Package gateway is the register I/O path of one PMIC: bounds checks, bus
// claim/release, value width and byte order, masked read-modify-write.
package gateway

import (
	"sync"

	"github.com/go-logr/logr"

	"pmic-go/errcode"
	"pmic-go/types"
)

// MaxValueBytes is the widest register value a chip may declare.
const MaxValueBytes = 3

// Config is the per-chip I/O shape.
type Config struct {
	Name      string
	RegCount  int
	TxBytes   int // 0 => 1
	ByteOrder types.ByteOrder
}

// Gateway owns register access for one chip. Safe for concurrent use.
type Gateway struct {
	cfg  Config
	tr   Transport
	lock *BusLock
	mu   sync.Mutex // serialises writers on this chip
	log  logr.Logger
	m    *Metrics
}

type Option func(*Gateway)

func WithLogger(l logr.Logger) Option { return func(g *Gateway) { g.log = l } }
func WithMetrics(m *Metrics) Option   { return func(g *Gateway) { g.m = m } }

// New validates cfg and builds a gateway. lock may be nil for a private bus.
// A transport that cannot address the whole map narrows RegCount.
func New(cfg Config, tr Transport, lock *BusLock, opts ...Option) (*Gateway, error) {
	if cfg.TxBytes == 0 {
		cfg.TxBytes = 1
	}
	if cfg.TxBytes < 1 || cfg.TxBytes > MaxValueBytes {
		return nil, errcode.New(errcode.InvalidParams, "gateway.new", "tx_bytes must be 1..3")
	}
	if cfg.RegCount <= 0 || cfg.RegCount > 0x100 {
		return nil, errcode.New(errcode.InvalidParams, "gateway.new", "reg_count must be 1..256")
	}
	if tr == nil {
		return nil, errcode.New(errcode.InvalidParams, "gateway.new", "nil transport")
	}
	if l, ok := tr.(interface{ MaxRegs() int }); ok && cfg.RegCount > l.MaxRegs() {
		cfg.RegCount = l.MaxRegs()
	}
	if lock == nil {
		lock = &BusLock{id: cfg.Name}
	}
	g := &Gateway{cfg: cfg, tr: tr, lock: lock, log: logr.Discard()}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

func (g *Gateway) Name() string      { return g.cfg.Name }
func (g *Gateway) RegCount() int     { return g.cfg.RegCount }
func (g *Gateway) TxBytes() int      { return g.cfg.TxBytes }
func (g *Gateway) BusLock() *BusLock { return g.lock }

func (g *Gateway) check(op string, off, n int) error {
	if off < 0 || n < 0 || off+n > g.cfg.RegCount {
		return errcode.New(errcode.OutOfRange, op, "register window outside chip")
	}
	return nil
}

// tx runs fn with the bus claimed and maps its error.
func (g *Gateway) tx(op string, fn func() error) error {
	err := g.claimed(fn)
	if err != nil {
		err = errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	g.m.observe(g.cfg.Name, op, err)
	return err
}

func (g *Gateway) claimed(fn func() error) error {
	g.lock.claim()
	defer g.lock.release()
	return fn()
}

// Read fills buf from consecutive registers starting at off.
func (g *Gateway) Read(off int, buf []byte) error {
	if err := g.check("read", off, len(buf)); err != nil {
		return err
	}
	err := g.tx("read", func() error { return g.tr.ReadRegs(uint8(off), buf) })
	g.log.V(2).Info("read", "chip", g.cfg.Name, "off", off, "n", len(buf), "err", err)
	return err
}

// Write stores data into consecutive registers starting at off. It never
// lands inside an Update.
func (g *Gateway) Write(off int, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.write(off, data)
}

func (g *Gateway) write(off int, data []byte) error {
	if err := g.check("write", off, len(data)); err != nil {
		return err
	}
	err := g.tx("write", func() error { return g.tr.WriteRegs(uint8(off), data) })
	g.log.V(2).Info("write", "chip", g.cfg.Name, "off", off, "data", data, "err", err)
	return err
}

// ReadValue reads one TxBytes-wide value at off.
func (g *Gateway) ReadValue(off int) (uint32, error) {
	var b [MaxValueBytes]byte
	buf := b[:g.cfg.TxBytes]
	if err := g.Read(off, buf); err != nil {
		return 0, err
	}
	return decode(buf, g.cfg.ByteOrder), nil
}

// WriteValue writes one TxBytes-wide value at off.
func (g *Gateway) WriteValue(off int, v uint32) error {
	var b [MaxValueBytes]byte
	buf := b[:g.cfg.TxBytes]
	encode(buf, v, g.cfg.ByteOrder)
	return g.Write(off, buf)
}

// ReadField returns the raw field value.
func (g *Gateway) ReadField(f types.Field) (uint8, error) {
	var b [1]byte
	if err := g.Read(int(f.Reg), b[:]); err != nil {
		return 0, err
	}
	return f.Get(b[0]), nil
}

// Update replaces field f with raw, leaving other bits of the register alone.
func (g *Gateway) Update(f types.Field, raw uint8) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var b [1]byte
	if err := g.Read(int(f.Reg), b[:]); err != nil {
		return err
	}
	return g.write(int(f.Reg), []byte{f.Put(b[0], raw)})
}

// Probe checks that the chip answers on its bus.
func (g *Gateway) Probe() error {
	return g.tx("probe", g.tr.Probe)
}

// Dump reads the whole register map in one burst.
func (g *Gateway) Dump() ([]byte, error) {
	buf := make([]byte, g.cfg.RegCount)
	if err := g.Read(0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func decode(b []byte, order types.ByteOrder) uint32 {
	var v uint32
	if order == types.ByteOrderBig {
		for _, x := range b {
			v = v<<8 | uint32(x)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}

func encode(b []byte, v uint32, order types.ByteOrder) {
	n := len(b)
	for i := 0; i < n; i++ {
		x := byte(v >> (8 * i))
		if order == types.ByteOrderBig {
			b[n-1-i] = x
		} else {
			b[i] = x
		}
	}
}
