package max77686

import (
	"slices"

	"pmic-go/types"
)

// LDO 1,3,4,5,9,13,17..26: raw 1 is LPM.
var ldoModesStandby1 = []types.ModeDescriptor{
	{ID: types.ModeOff, Raw: ldoModeOff, Name: "OFF"},
	{ID: types.ModeLPM, Raw: ldoModeLPM, Name: "LPM"},
	{ID: types.ModeStandbyLPM, Raw: ldoModeStandbyLPM, Name: "ON/LPM"},
	{ID: types.ModeOn, Raw: ldoModeOn, Name: "ON"},
}

// LDO 2,6,7,8,10,11,12,14,15,16: raw 1 is STANDBY.
var ldoModesStandby2 = []types.ModeDescriptor{
	{ID: types.ModeOff, Raw: ldoModeOff, Name: "OFF"},
	{ID: types.ModeStandby, Raw: ldoModeStandby, Name: "ON/OFF"},
	{ID: types.ModeStandbyLPM, Raw: ldoModeStandbyLPM, Name: "ON/LPM"},
	{ID: types.ModeOn, Raw: ldoModeOn, Name: "ON"},
}

// BUCK 1.
var buckModesStandby = []types.ModeDescriptor{
	{ID: types.ModeOff, Raw: buckModeOff, Name: "OFF"},
	{ID: types.ModeStandby, Raw: buckModeStandby, Name: "ON/OFF"},
	{ID: types.ModeOn, Raw: buckModeOn, Name: "ON"},
}

// BUCK 2,3,4.
var buckModesLPM = []types.ModeDescriptor{
	{ID: types.ModeOff, Raw: buckModeOff, Name: "OFF"},
	{ID: types.ModeStandby, Raw: buckModeStandby, Name: "ON/OFF"},
	{ID: types.ModeLPM, Raw: buckModeLPM, Name: "LPM"},
	{ID: types.ModeOn, Raw: buckModeOn, Name: "ON"},
}

// BUCK 5..9.
var buckModesOnOff = []types.ModeDescriptor{
	{ID: types.ModeOff, Raw: buckModeOff, Name: "OFF"},
	{ID: types.ModeOn, Raw: buckModeOn, Name: "ON"},
}

func ldoHasStandby(n int) bool {
	switch n {
	case 2, 6, 7, 8, 10, 11, 12, 14, 15, 16:
		return true
	default:
		return false
	}
}

func ldoModeTable(n int) []types.ModeDescriptor {
	if ldoHasStandby(n) {
		return ldoModesStandby2
	}
	return ldoModesStandby1
}

func buckModeTable(n int) []types.ModeDescriptor {
	switch n {
	case 1:
		return buckModesStandby
	case 2, 3, 4:
		return buckModesLPM
	default:
		return buckModesOnOff
	}
}

func modeToRaw(table []types.ModeDescriptor, id types.ModeID) (uint8, error) {
	for _, m := range table {
		if m.ID == id {
			return m.Raw, nil
		}
	}
	return 0, ErrModeUnsupported
}

func rawToMode(table []types.ModeDescriptor, raw uint8) (types.ModeID, error) {
	if raw > modeMask {
		return 0, ErrModeRaw
	}
	for _, m := range table {
		if m.Raw == raw {
			return m.ID, nil
		}
	}
	return 0, ErrModeRaw
}

// Tables are shared; callers get a copy.
func cloneModes(table []types.ModeDescriptor) []types.ModeDescriptor {
	return slices.Clone(table)
}
