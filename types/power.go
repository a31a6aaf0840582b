package types

import "strings"

// Unset marks an optional constraint that configuration did not supply.
const Unset = -1

// ------------------------
// Regulator outputs
// ------------------------

// OutputType is the electrical kind of a regulator output.
type OutputType uint8

const (
	TypeLDO OutputType = iota + 1
	TypeBUCK
	TypeFixed
	TypeDVS
)

func (t OutputType) String() string {
	switch t {
	case TypeLDO:
		return "LDO"
	case TypeBUCK:
		return "BUCK"
	case TypeFixed:
		return "FIXED"
	case TypeDVS:
		return "DVS"
	default:
		return "?"
	}
}

// ParseOutputType is case-insensitive.
func ParseOutputType(s string) (OutputType, bool) {
	switch strings.ToUpper(s) {
	case "LDO":
		return TypeLDO, true
	case "BUCK":
		return TypeBUCK, true
	case "FIXED":
		return TypeFixed, true
	case "DVS":
		return TypeDVS, true
	default:
		return 0, false
	}
}

// Descriptor holds the configured constraints of one output. Integer-only;
// Unset means "not configured", which is distinct from zero.
type Descriptor struct {
	Type     OutputType `json:"type"`
	Number   int        `json:"number"`
	MinUV    int        `json:"min_uV"`
	MaxUV    int        `json:"max_uV"`
	MinUA    int        `json:"min_uA"`
	MaxUA    int        `json:"max_uA"`
	AlwaysOn bool       `json:"always_on"`
	BootOn   bool       `json:"boot_on"`
	Name     string     `json:"name"`
}

// AllowsUV reports whether uV lies inside the configured voltage window.
// Unset bounds do not constrain.
func (d Descriptor) AllowsUV(uV int) bool {
	if d.MinUV != Unset && uV < d.MinUV {
		return false
	}
	if d.MaxUV != Unset && uV > d.MaxUV {
		return false
	}
	return true
}

// AllowsUA is AllowsUV for current.
func (d Descriptor) AllowsUA(uA int) bool {
	if d.MinUA != Unset && uA < d.MinUA {
		return false
	}
	if d.MaxUA != Unset && uA > d.MaxUA {
		return false
	}
	return true
}

// ------------------------
// Operating modes
// ------------------------

// ModeID is a driver-assigned operating mode. Always >= 0.
type ModeID int

// Mode ids shared by the register-backed outputs.
const (
	ModeOff ModeID = iota
	ModeStandby
	ModeLPM
	ModeStandbyLPM
	ModeOn
)

// ModeDescriptor pairs a mode id with its raw field value and display name.
type ModeDescriptor struct {
	ID   ModeID `json:"id"`
	Raw  uint8  `json:"raw"`
	Name string `json:"name"`
}

// ModeName returns the name of id within list, or "" if absent.
func ModeName(list []ModeDescriptor, id ModeID) string {
	for _, m := range list {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

// HasMode reports whether id appears in list.
func HasMode(list []ModeDescriptor, id ModeID) bool {
	for _, m := range list {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Retained values published on the event bus: regulator/<name>/<what>.
type RegulatorValue struct {
	MicroV int `json:"uV"`

	// Force skips the configured limits when used as a control request.
	Force bool `json:"force,omitempty"`
}

type RegulatorMode struct {
	Mode ModeID `json:"mode"`
	Name string `json:"name"`
}

type RegulatorEnable struct {
	On bool `json:"on"`
}

// RegulatorState is the polled snapshot at power/<name>/state. MicroV
// and Mode are -1 when the output cannot report them.
type RegulatorState struct {
	MicroV int    `json:"uV"`
	Mode   ModeID `json:"mode"`
	On     bool   `json:"on"`
}

// ControlReply answers a power/<name>/control/<verb> request.
type ControlReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PowerConfig is the typed form of the config/power payload. Interval is
// in seconds; zero stops polling.
type PowerConfig struct {
	Interval float64 `json:"interval"`
}
