// Package library holds the read-only library definition model: component
// types with their signals and symbol variants. Components are immutable once
// built and are shared by every component instance referencing them.
package library

import (
	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
)

// DefaultLocale is the locale used when none of the requested ones exist.
const DefaultLocale = "en_US"

// Signal is a named electrical terminal declared by a component type.
type Signal struct {
	uuid          uuid.UUID
	name          string
	required      bool
	forcedNetName string
}

func (s *Signal) UUID() uuid.UUID { return s.uuid }
func (s *Signal) Name() string    { return s.name }

// IsRequired reports whether the signal must be connected to a net.
func (s *Signal) IsRequired() bool { return s.required }

// IsNetSignalNameForced reports whether the bound net must carry a specific
// name.
func (s *Signal) IsNetSignalNameForced() bool { return s.forcedNetName != "" }

// ForcedNetName returns the forced net name template, e.g. "{{NAME}}_VCC".
func (s *Signal) ForcedNetName() string { return s.forcedNetName }

// PinSignal maps a symbol pin to a component signal. Signal is uuid.Nil for
// unconnected pins.
type PinSignal struct {
	Pin    uuid.UUID
	Signal uuid.UUID
}

// SymbolVariantItem is one placeable symbol of a symbol variant.
type SymbolVariantItem struct {
	uuid     uuid.UUID
	symbol   uuid.UUID
	suffix   string
	required bool
	pins     []PinSignal
}

func (i *SymbolVariantItem) UUID() uuid.UUID   { return i.uuid }
func (i *SymbolVariantItem) Symbol() uuid.UUID { return i.symbol }
func (i *SymbolVariantItem) Suffix() string    { return i.suffix }
func (i *SymbolVariantItem) IsRequired() bool  { return i.required }

// PinSignalMap returns the pin to signal map in definition order.
func (i *SymbolVariantItem) PinSignalMap() []PinSignal {
	return append([]PinSignal(nil), i.pins...)
}

// SignalOfPin returns the signal a pin is mapped to.
func (i *SymbolVariantItem) SignalOfPin(pin uuid.UUID) (uuid.UUID, bool) {
	for _, p := range i.pins {
		if p.Pin == pin {
			return p.Signal, p.Signal != uuid.Nil
		}
	}
	return uuid.Nil, false
}

// SymbolVariant is an alternative graphical representation of a component.
type SymbolVariant struct {
	uuid  uuid.UUID
	name  string
	norm  string
	items []*SymbolVariantItem
}

func (v *SymbolVariant) UUID() uuid.UUID { return v.uuid }
func (v *SymbolVariant) Name() string    { return v.name }
func (v *SymbolVariant) Norm() string    { return v.norm }

// Items returns the symbol variant items in definition order.
func (v *SymbolVariant) Items() []*SymbolVariantItem {
	return append([]*SymbolVariantItem(nil), v.items...)
}

// Item looks up an item by UUID.
func (v *SymbolVariant) Item(id uuid.UUID) (*SymbolVariantItem, bool) {
	for _, it := range v.items {
		if it.uuid == id {
			return it, true
		}
	}
	return nil, false
}

// Component is a component type, e.g. "Resistor".
type Component struct {
	uuid           uuid.UUID
	name           string
	description    string
	schematicOnly  bool
	attributes     *attr.List
	defaultValues  map[string]string
	prefixes       map[string]string
	signals        []*Signal
	variants       []*SymbolVariant
	defaultVariant uuid.UUID
}

func (c *Component) UUID() uuid.UUID     { return c.uuid }
func (c *Component) Name() string        { return c.name }
func (c *Component) Description() string { return c.description }

// IsSchematicOnly reports whether the component has no package, so it can
// never be placed on a board.
func (c *Component) IsSchematicOnly() bool { return c.schematicOnly }

// Attributes returns a copy of the component's default attributes.
func (c *Component) Attributes() *attr.List { return c.attributes.Clone() }

// Signals returns the signals in definition order.
func (c *Component) Signals() []*Signal {
	return append([]*Signal(nil), c.signals...)
}

// SignalCount returns the number of signals.
func (c *Component) SignalCount() int { return len(c.signals) }

// Signal looks up a signal by UUID.
func (c *Component) Signal(id uuid.UUID) (*Signal, bool) {
	for _, s := range c.signals {
		if s.uuid == id {
			return s, true
		}
	}
	return nil, false
}

// SymbolVariants returns the symbol variants in definition order.
func (c *Component) SymbolVariants() []*SymbolVariant {
	return append([]*SymbolVariant(nil), c.variants...)
}

// SymbolVariant looks up a symbol variant by UUID.
func (c *Component) SymbolVariant(id uuid.UUID) (*SymbolVariant, bool) {
	for _, v := range c.variants {
		if v.uuid == id {
			return v, true
		}
	}
	return nil, false
}

// DefaultSymbolVariant returns the variant used when the caller has no
// preference.
func (c *Component) DefaultSymbolVariant() *SymbolVariant {
	v, _ := c.SymbolVariant(c.defaultVariant)
	return v
}

// SymbolVariantItem looks up an item of a variant.
func (c *Component) SymbolVariantItem(variant, item uuid.UUID) (*SymbolVariantItem, bool) {
	v, ok := c.SymbolVariant(variant)
	if !ok {
		return nil, false
	}
	return v.Item(item)
}

// SignalOfPin resolves the signal connected to a pin of a placed symbol.
func (c *Component) SignalOfPin(variant, item, pin uuid.UUID) (*Signal, bool) {
	it, ok := c.SymbolVariantItem(variant, item)
	if !ok {
		return nil, false
	}
	sig, ok := it.SignalOfPin(pin)
	if !ok {
		return nil, false
	}
	return c.Signal(sig)
}

// DefaultValue returns the default value for the first locale of
// localeOrder that has one, falling back to en_US and then "".
func (c *Component) DefaultValue(localeOrder []string) string {
	for _, locale := range localeOrder {
		if v, ok := c.defaultValues[locale]; ok {
			return v
		}
	}
	return c.defaultValues[DefaultLocale]
}

// Prefix returns the name prefix for the first norm of normOrder that has
// one, falling back to the default ("") norm.
func (c *Component) Prefix(normOrder []string) string {
	for _, norm := range normOrder {
		if p, ok := c.prefixes[norm]; ok {
			return p
		}
	}
	return c.prefixes[""]
}
