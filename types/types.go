package types

// ---- Device categories ----

// Category is the uclass a device handle belongs to.
type Category uint8

const (
	CategoryPMIC Category = iota + 1
	CategoryRegulator
)

func (c Category) String() string {
	switch c {
	case CategoryPMIC:
		return "pmic"
	case CategoryRegulator:
		return "regulator"
	default:
		return "unknown"
	}
}

// State is the lifecycle of one device handle.
type State uint8

const (
	StateUnbound State = iota
	StateBound
	StateProbed
)

func (s State) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateProbed:
		return "probed"
	default:
		return "unbound"
	}
}

// ---- Bus interface of a chip ----

type Interface uint8

const (
	IfaceNone Interface = iota
	IfaceI2C
	IfaceSPI
)

func (i Interface) String() string {
	switch i {
	case IfaceI2C:
		return "I2C"
	case IfaceSPI:
		return "SPI"
	default:
		return "--"
	}
}

// ParseInterface accepts "i2c", "spi" or "" (none).
func ParseInterface(s string) (Interface, bool) {
	switch s {
	case "i2c", "I2C":
		return IfaceI2C, true
	case "spi", "SPI":
		return IfaceSPI, true
	case "", "none":
		return IfaceNone, true
	default:
		return IfaceNone, false
	}
}

// ByteOrder of multi-byte register values.
type ByteOrder uint8

const (
	ByteOrderLittle ByteOrder = iota
	ByteOrderBig
)

func ParseByteOrder(s string) (ByteOrder, bool) {
	switch s {
	case "", "little":
		return ByteOrderLittle, true
	case "big":
		return ByteOrderBig, true
	default:
		return ByteOrderLittle, false
	}
}
