// Package catalog holds the configured outputs of one chip: their value
// descriptors and, through the chip codecs, their mode tables.
package catalog

import (
	"pmic-go/errcode"
	"pmic-go/internal/regulator"
	"pmic-go/types"
	"pmic-go/x/conv"
)

type key struct {
	t types.OutputType
	n int
}

// Catalog is immutable once built.
type Catalog struct {
	chip   string
	codecs map[types.OutputType]regulator.Codec
	order  []key
	descs  map[key]types.Descriptor
}

// New validates outputs against codecs and indexes them. Configuration
// order is preserved.
func New(chip string, outputs []types.OutputConfig, codecs map[types.OutputType]regulator.Codec) (*Catalog, error) {
	c := &Catalog{
		chip:   chip,
		codecs: codecs,
		descs:  make(map[key]types.Descriptor, len(outputs)),
	}
	for _, o := range outputs {
		t, ok := types.ParseOutputType(o.Type)
		if !ok {
			return nil, errcode.New(errcode.InvalidParams, "catalog", "unknown output type "+o.Type)
		}
		codec, ok := codecs[t]
		if !ok {
			return nil, errcode.New(errcode.UnsupportedFeature, "catalog", chip+" has no "+t.String()+" outputs")
		}
		if err := codec.Valid(o.Number); err != nil {
			return nil, err
		}
		d := o.Descriptor(t)
		if d.MinUV != types.Unset && d.MaxUV != types.Unset && d.MinUV > d.MaxUV {
			return nil, errcode.New(errcode.InvalidParams, "catalog", d.Name+": min_uV > max_uV")
		}
		if d.MinUA != types.Unset && d.MaxUA != types.Unset && d.MinUA > d.MaxUA {
			return nil, errcode.New(errcode.InvalidParams, "catalog", d.Name+": min_uA > max_uA")
		}
		k := key{t, o.Number}
		if _, dup := c.descs[k]; dup {
			return nil, errcode.New(errcode.InvalidParams, "catalog", "duplicate output "+label(t, o.Number))
		}
		c.descs[k] = d
		c.order = append(c.order, k)
	}
	return c, nil
}

// Value returns the descriptor of output (t, n), or NotFound when the
// board did not configure it.
func (c *Catalog) Value(t types.OutputType, n int) (types.Descriptor, error) {
	d, ok := c.descs[key{t, n}]
	if !ok {
		return types.Descriptor{}, errcode.New(errcode.NotFound, "catalog", c.chip+" "+label(t, n)+" not configured")
	}
	return d, nil
}

// Modes returns the ordered mode table of a configured output.
func (c *Catalog) Modes(t types.OutputType, n int) ([]types.ModeDescriptor, error) {
	if _, err := c.Value(t, n); err != nil {
		return nil, err
	}
	return c.codecs[t].Modes(n)
}

// Codec returns the codec for outputs of type t.
func (c *Catalog) Codec(t types.OutputType) (regulator.Codec, bool) {
	codec, ok := c.codecs[t]
	return codec, ok
}

// All returns every configured descriptor in configuration order.
func (c *Catalog) All() []types.Descriptor {
	out := make([]types.Descriptor, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.descs[k])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

func label(t types.OutputType, n int) string {
	var b [20]byte
	return t.String() + string(conv.Itoa(b[:], int64(n)))
}
