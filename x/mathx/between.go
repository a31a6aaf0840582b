// Package mathx holds small generic numeric helpers.
package mathx

import "golang.org/x/exp/constraints"

// Between reports lo <= v <= hi. The bounds must already be ordered.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
