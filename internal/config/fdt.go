package config

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/platinasystems/fdt"

	"pmic-go/errcode"
	"pmic-go/types"
)

// Device tree bindings understood by FromTree. A PMIC is any node with a
// "regulators" or "voltage-regulators" child; its bus is its parent node,
// named through /aliases when an alias points at it.
const (
	propCompatible   = "compatible"
	propReg          = "reg"
	propRegCompat    = "regulator-compatible"
	propRegName      = "regulator-name"
	propMinUV        = "regulator-min-microvolt"
	propMaxUV        = "regulator-max-microvolt"
	propMinUA        = "regulator-min-microamp"
	propMaxUA        = "regulator-max-microamp"
	propAlwaysOn     = "regulator-always-on"
	propBootOn       = "regulator-boot-on"
	propGPIOName     = "gpio-line-name"
	propActiveHigh   = "enable-active-high"
	propOpenDrain    = "gpio-open-drain"
	propStartupDelay = "startup-delay-us"

	compatFixed = "regulator-fixed"
)

// FromBlob parses a flattened device tree.
func FromBlob(b []byte) (cfg types.BoardConfig, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errcode.New(errcode.InvalidParams, "config", fmt.Sprintf("malformed device tree: %v", r))
		}
	}()
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	t.Parse(b)
	return FromTree(t)
}

// FromTree extracts every PMIC and fixed regulator from t.
func FromTree(t *fdt.Tree) (types.BoardConfig, error) {
	if t == nil || t.RootNode == nil {
		return types.BoardConfig{}, errcode.New(errcode.InvalidParams, "config", "empty device tree")
	}
	w := walker{aliases: map[string]string{}}
	if a := t.RootNode.Children["aliases"]; a != nil {
		for alias, path := range a.Properties {
			p := cstring(path)
			w.aliases[p[strings.LastIndex(p, "/")+1:]] = alias
		}
	}
	if err := w.walk(t.RootNode, nil); err != nil {
		return types.BoardConfig{}, err
	}
	if len(w.board.Chips) == 0 && len(w.board.Fixed) == 0 {
		return types.BoardConfig{}, errcode.New(errcode.NotFound, "config", "device tree has no regulators")
	}
	return w.board, nil
}

type walker struct {
	aliases map[string]string // node name -> alias
	board   types.BoardConfig
}

func (w *walker) walk(n, parent *fdt.Node) error {
	if hasString(n, propCompatible, compatFixed) {
		f, err := fixedFromNode(n)
		if err != nil {
			return err
		}
		w.board.Fixed = append(w.board.Fixed, f)
		return nil
	}
	if regs := regulatorsNode(n); regs != nil && parent != nil {
		c, err := w.chipFromNode(n, parent, regs)
		if err != nil {
			return err
		}
		w.board.Chips = append(w.board.Chips, c)
		return nil
	}
	for _, name := range sortedChildren(n) {
		if err := w.walk(n.Children[name], n); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) chipFromNode(n, parent, regs *fdt.Node) (types.ChipConfig, error) {
	c := types.ChipConfig{
		Name:       n.Name,
		Compatible: firstString(n, propCompatible),
		Interface:  "i2c",
		Bus:        parent.Name,
	}
	if alias, ok := w.aliases[parent.Name]; ok {
		c.Bus = alias
	}
	if strings.HasPrefix(parent.Name, "spi") {
		c.Interface = "spi"
	}
	if reg, ok := u32(n, propReg); ok {
		if c.Interface == "spi" {
			c.CS = uint8(reg)
		} else {
			c.Addr = uint16(reg)
		}
	}
	for _, name := range sortedChildren(regs) {
		o, err := outputFromNode(regs.Children[name])
		if err != nil {
			return types.ChipConfig{}, err
		}
		c.Outputs = append(c.Outputs, o)
	}
	return c, nil
}

// outputFromNode reads one regulator child. Its type and number come
// from regulator-compatible ("LDO3", "buck1"), else from the node name.
func outputFromNode(n *fdt.Node) (types.OutputConfig, error) {
	id := firstString(n, propRegCompat)
	if id == "" {
		id = n.Name
		if i := strings.IndexByte(id, '@'); i >= 0 {
			id = id[:i]
		}
	}
	i := strings.IndexAny(id, "0123456789")
	if i <= 0 {
		return types.OutputConfig{}, errcode.New(errcode.InvalidParams, "config", "cannot tell output type of node "+n.Name)
	}
	var num int
	if _, err := fmt.Sscanf(id[i:], "%d", &num); err != nil {
		return types.OutputConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "output number of " + n.Name, Err: err}
	}
	o := types.OutputConfig{
		Type:     strings.ToLower(id[:i]),
		Number:   num,
		Name:     firstString(n, propRegName),
		MinUV:    intProp(n, propMinUV),
		MaxUV:    intProp(n, propMaxUV),
		MinUA:    intProp(n, propMinUA),
		MaxUA:    intProp(n, propMaxUA),
		AlwaysOn: has(n, propAlwaysOn),
		BootOn:   has(n, propBootOn),
	}
	return o, nil
}

func fixedFromNode(n *fdt.Node) (types.FixedConfig, error) {
	f := types.FixedConfig{
		Name:             firstString(n, propRegName),
		GPIO:             firstString(n, propGPIOName),
		MinUV:            intProp(n, propMinUV),
		MaxUV:            intProp(n, propMaxUV),
		EnableActiveHigh: has(n, propActiveHigh),
		OpenDrain:        has(n, propOpenDrain),
		AlwaysOn:         has(n, propAlwaysOn),
		BootOn:           has(n, propBootOn),
	}
	if f.Name == "" {
		f.Name = n.Name
	}
	if f.GPIO == "" {
		return types.FixedConfig{}, errcode.New(errcode.InvalidParams, "config", n.Name+": fixed regulator without "+propGPIOName)
	}
	if d, ok := u32(n, propStartupDelay); ok {
		f.StartupDelayUS = int(d)
	}
	return f, nil
}

// ---------------- property helpers ----------------

func regulatorsNode(n *fdt.Node) *fdt.Node {
	if r := n.Children["regulators"]; r != nil {
		return r
	}
	return n.Children["voltage-regulators"]
}

func sortedChildren(n *fdt.Node) []string {
	names := make([]string, 0, len(n.Children))
	for k := range n.Children {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func has(n *fdt.Node, prop string) bool {
	_, ok := n.Properties[prop]
	return ok
}

// cstring trims the NUL terminator of a string property.
func cstring(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// firstString is the first entry of a string-list property.
func firstString(n *fdt.Node, prop string) string {
	v, ok := n.Properties[prop]
	if !ok {
		return ""
	}
	s, _, _ := strings.Cut(string(v), "\x00")
	return s
}

func hasString(n *fdt.Node, prop, want string) bool {
	v, ok := n.Properties[prop]
	if !ok {
		return false
	}
	for _, s := range strings.Split(cstring(v), "\x00") {
		if s == want {
			return true
		}
	}
	return false
}

// u32 decodes the first big-endian cell of prop.
func u32(n *fdt.Node, prop string) (uint32, bool) {
	v, ok := n.Properties[prop]
	if !ok || len(v) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(v), true
}

func intProp(n *fdt.Node, prop string) *int {
	v, ok := u32(n, prop)
	if !ok {
		return nil
	}
	return types.Int(int(v))
}
