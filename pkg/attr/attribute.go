// Package attr implements typed key/value attributes, ordered attribute lists
// and {{NS::KEY}} placeholder substitution.
package attr

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Attribute is a single typed key/value pair, e.g. RESISTANCE = 10 kiloohm.
type Attribute struct {
	Key   string
	Type  Type
	Value string
	Unit  string
}

// New returns a validated attribute.
func New(key string, typ Type, value, unit string) (Attribute, error) {
	a := Attribute{Key: key, Type: typ, Value: value, Unit: unit}
	if err := a.Validate(); err != nil {
		return Attribute{}, err
	}
	return a, nil
}

// String returns a validated string attribute.
func String(key, value string) (Attribute, error) {
	return New(key, TypeString, value, "")
}

// Validate checks the key, the unit and the value against the type.
// An empty key is a user error; an inconsistent type/unit/value combination
// is a programming error.
func (a Attribute) Validate() error {
	if strings.TrimSpace(a.Key) == "" {
		return fault.Runtimef("the attribute key must not be empty")
	}
	if _, ok := unitsByType[a.Type]; !ok {
		return fault.Logicf("attr.Attribute", "unknown type %q", a.Type)
	}
	if !a.Type.IsUnitAvailable(a.Unit) || !a.Type.IsValueValid(a.Value) {
		unit := a.Unit
		if unit == "" {
			unit = "-"
		}
		return fault.Logicf("attr.Attribute", "%s,%s,%s", a.Type, a.Value, unit)
	}
	return nil
}

// Display returns the value, with the unit symbol when showUnit is set.
func (a Attribute) Display(showUnit bool) string {
	if !showUnit {
		return a.Value
	}
	return a.Type.Printable(a.Value, a.Unit)
}
