// Package sandbox emulates a PMIC register file behind I2C and SPI so the
// whole power stack can run without hardware.
package sandbox

import (
	"encoding/binary"
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

var (
	ErrRange   = errors.New("request_exceeds_register_range")
	ErrNoAck   = errors.New("no_ack")
	ErrFault   = errors.New("injected_fault")
	ErrFrame   = errors.New("bad_spi_frame")
	ErrNoBytes = errors.New("single_byte_transfer_unsupported")
)

// Chip is an emulated register file. The first byte of every write sets
// the register pointer; remaining bytes are stored from there on, and a
// read returns bytes from the pointer.
type Chip struct {
	mu    sync.Mutex
	addr  uint16
	ptr   uint8
	regs  []byte
	fail  error
	txs   int
	wrote int
}

// New returns a chip answering at addr with regCount zeroed registers,
// then applies defaults.
func New(addr uint16, regCount int, defaults map[uint8]byte) *Chip {
	c := &Chip{addr: addr, regs: make([]byte, regCount)}
	for r, v := range defaults {
		if int(r) < regCount {
			c.regs[r] = v
		}
	}
	return c
}

var _ drivers.I2C = (*Chip)(nil)

// Addr is the I2C address the chip answers on.
func (c *Chip) Addr() uint16 { return c.addr }

// Tx implements drivers.I2C.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs++
	if addr != c.addr {
		return ErrNoAck
	}
	if c.fail != nil {
		return c.fail
	}
	if len(w) == 0 && len(r) == 0 {
		return nil // probe
	}
	if len(w) > 0 {
		c.ptr = w[0]
		data := w[1:]
		if len(data) > 0 {
			if int(c.ptr)+len(data) > len(c.regs) {
				return ErrRange
			}
			copy(c.regs[c.ptr:], data)
			c.wrote++
		}
	}
	if len(r) > 0 {
		if int(c.ptr)+len(r) > len(c.regs) {
			return ErrRange
		}
		copy(r, c.regs[c.ptr:])
	}
	return nil
}

// Fail makes every following transaction return err; nil clears it.
func (c *Chip) Fail(err error) {
	c.mu.Lock()
	c.fail = err
	c.mu.Unlock()
}

// Reg returns one register without a bus transaction.
func (c *Chip) Reg(r uint8) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[r]
}

// SetReg stores one register without a bus transaction.
func (c *Chip) SetReg(r uint8, v byte) {
	c.mu.Lock()
	c.regs[r] = v
	c.mu.Unlock()
}

// Snapshot copies the register file.
func (c *Chip) Snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.regs))
	copy(out, c.regs)
	return out
}

// Transactions counts every Tx call, including rejected ones.
func (c *Chip) Transactions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txs
}

// Writes counts transactions that stored data.
func (c *Chip) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wrote
}

// ---------------- SPI ----------------

// SPI exposes a Chip through 32-bit PMIC SPI frames: bit 31 write,
// bits 30..25 register, low 24 bits value. Every frame answers with the
// register value after the frame was applied.
type SPI struct{ *Chip }

var _ drivers.SPI = SPI{}

func (s SPI) Tx(w, r []byte) error {
	if len(w) != 4 || (r != nil && len(r) != 4) {
		return ErrFrame
	}
	frame := binary.BigEndian.Uint32(w)
	reg := uint8(frame >> 25 & 0x3F)
	c := s.Chip
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs++
	if c.fail != nil {
		return c.fail
	}
	if int(reg) >= len(c.regs) {
		return ErrRange
	}
	if frame>>31 == 1 {
		c.regs[reg] = byte(frame)
		c.wrote++
	}
	if r != nil {
		binary.BigEndian.PutUint32(r, uint32(c.regs[reg]))
	}
	return nil
}

// Transfer is not used by the PMIC protocol.
func (s SPI) Transfer(b byte) (byte, error) { return 0, ErrNoBytes }
