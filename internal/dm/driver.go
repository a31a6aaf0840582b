package dm

import (
	"fmt"
	"sync"

	"pmic-go/drivers/max77686"
	"pmic-go/internal/regulator"
	"pmic-go/types"
)

// Driver describes one PMIC family: identity, bus defaults and the codec
// for each output type it has.
type Driver struct {
	Name       string
	Compatible string
	Address    uint16
	RegCount   int
	Codecs     map[types.OutputType]regulator.Codec
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{}
)

// RegisterDriver makes a chip family bindable by its compatible string.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, exists := drivers[d.Compatible]; exists {
		panic(fmt.Sprintf("pmic driver already registered for %q", d.Compatible))
	}
	drivers[d.Compatible] = d
}

func LookupDriver(compatible string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[compatible]
	return d, ok
}

func init() {
	RegisterDriver(Driver{
		Name:       max77686.Name,
		Compatible: max77686.Compatible,
		Address:    max77686.AddressDefault,
		RegCount:   max77686.RegCount,
		Codecs: map[types.OutputType]regulator.Codec{
			types.TypeLDO:  max77686.LDO{},
			types.TypeBUCK: max77686.Buck{},
		},
	})
}
