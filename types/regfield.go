package types

// Field locates a right-aligned bit field inside one 8-bit register.
type Field struct {
	Reg   uint8
	Mask  uint8 // right-aligned mask, e.g. 0x3F
	Shift uint8
}

// Get extracts the field from a register value.
func (f Field) Get(v uint8) uint8 { return (v >> f.Shift) & f.Mask }

// Put returns v with the field replaced by raw. Bits outside the field are kept.
func (f Field) Put(v, raw uint8) uint8 {
	return v&^(f.Mask<<f.Shift) | (raw&f.Mask)<<f.Shift
}
