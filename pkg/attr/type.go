package attr

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Type is the physical quantity an attribute value describes.
type Type string

const (
	TypeString      Type = "string"
	TypeResistance  Type = "resistance"
	TypeCapacitance Type = "capacitance"
	TypeInductance  Type = "inductance"
	TypeVoltage     Type = "voltage"
	TypeCurrent     Type = "current"
	TypeFrequency   Type = "frequency"
)

// Unit is a unit of measurement such as kiloohm.
type Unit struct {
	Name   string // e.g. "kiloohm"
	Symbol string // e.g. "kΩ"
}

var unitsByType = map[Type][]Unit{
	TypeString: nil,
	TypeResistance: {
		{"microohm", "µΩ"}, {"milliohm", "mΩ"}, {"ohm", "Ω"},
		{"kiloohm", "kΩ"}, {"megaohm", "MΩ"},
	},
	TypeCapacitance: {
		{"picofarad", "pF"}, {"nanofarad", "nF"}, {"microfarad", "µF"},
		{"millifarad", "mF"}, {"farad", "F"},
	},
	TypeInductance: {
		{"nanohenry", "nH"}, {"microhenry", "µH"}, {"millihenry", "mH"}, {"henry", "H"},
	},
	TypeVoltage: {
		{"microvolt", "µV"}, {"millivolt", "mV"}, {"volt", "V"},
		{"kilovolt", "kV"}, {"megavolt", "MV"},
	},
	TypeCurrent: {
		{"picoampere", "pA"}, {"nanoampere", "nA"}, {"microampere", "µA"},
		{"milliampere", "mA"}, {"ampere", "A"}, {"kiloampere", "kA"}, {"megaampere", "MA"},
	},
	TypeFrequency: {
		{"microhertz", "µHz"}, {"millihertz", "mHz"}, {"hertz", "Hz"},
		{"kilohertz", "kHz"}, {"megahertz", "MHz"}, {"gigahertz", "GHz"},
	},
}

// Types returns all known attribute types.
func Types() []Type {
	return []Type{TypeString, TypeResistance, TypeCapacitance, TypeInductance,
		TypeVoltage, TypeCurrent, TypeFrequency}
}

// ParseType resolves a persisted type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	if _, ok := unitsByType[t]; !ok {
		return "", fault.Runtimef("unknown attribute type %q", s)
	}
	return t, nil
}

// Units returns the units available for t.
func (t Type) Units() []Unit {
	return unitsByType[t]
}

// Unit looks up a unit of t by name.
func (t Type) Unit(name string) (Unit, bool) {
	for _, u := range unitsByType[t] {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// IsUnitAvailable reports whether name is a valid unit for t. Types without
// units only accept the empty unit; types with units require one.
func (t Type) IsUnitAvailable(name string) bool {
	if name == "" {
		return len(unitsByType[t]) == 0
	}
	_, ok := t.Unit(name)
	return ok
}

// IsValueValid reports whether value is acceptable for t. Quantities must be
// numeric or empty.
func (t Type) IsValueValid(value string) bool {
	if t == TypeString || value == "" {
		return true
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// Printable formats value with the unit's symbol appended.
func (t Type) Printable(value, unit string) string {
	if value == "" || unit == "" {
		return value
	}
	if u, ok := t.Unit(unit); ok {
		return value + u.Symbol
	}
	return value
}
