package project

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/event"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/undo"
)

// NamespaceComponent is the attribute namespace of component instance
// variables.
const NamespaceComponent = "CMP"

// ComponentInstance is a library component placed into the circuit. It owns
// one ComponentSignalInstance per library signal.
type ComponentInstance struct {
	circuit    *Circuit
	uuid       uuid.UUID
	lib        *library.Component
	variant    *library.SymbolVariant
	name       string
	value      string
	attributes *attr.List
	added      bool

	signals []*ComponentSignalInstance
	symbols map[uuid.UUID]Symbol
	devices []Device

	attributesChanged event.Bus[*ComponentInstance]
	unsubProject      func()

	ercUnplacedRequired *erc.Message
	ercUnplacedOptional *erc.Message
}

// NewComponentInstance creates an instance of lib using the symbol variant
// symbVar. Value and attributes are taken from the library component, the
// value according to the project locale order. All signals are unconnected.
func NewComponentInstance(c *Circuit, lib *library.Component, symbVar uuid.UUID, name string) (*ComponentInstance, error) {
	value := lib.DefaultValue(c.project.settings.LocaleOrder)
	return newComponentInstance(c, uuid.New(), lib, symbVar, name, value, lib.Attributes(), nil)
}

// newComponentInstance builds an instance whose signals are bound according
// to nets, keyed by library signal UUID. Signals missing from nets stay
// unconnected.
func newComponentInstance(c *Circuit, id uuid.UUID, lib *library.Component, symbVar uuid.UUID,
	name, value string, attributes *attr.List, nets map[uuid.UUID]*NetSignal) (cmp *ComponentInstance, err error) {
	if strings.TrimSpace(name) == "" {
		return nil, fault.Runtimef("the name of the component %s must not be empty", id)
	}
	variant, ok := lib.SymbolVariant(symbVar)
	if !ok {
		return nil, fault.Runtimef("the symbol variant %s of the component %s does not exist in the library component %s",
			symbVar, id, lib.UUID())
	}
	cmp = &ComponentInstance{
		circuit:    c,
		uuid:       id,
		lib:        lib,
		variant:    variant,
		name:       name,
		value:      value,
		attributes: attributes.Clone(),
		symbols:    make(map[uuid.UUID]Symbol),
	}

	sg := undo.NewScopeGuard(2 + lib.SignalCount())
	defer sg.Finish(&err, c.logger)
	key := erc.Key{OwnerKind: erc.OwnerComponent, OwnerKey: id.String()}
	key.MsgKey = "UnplacedRequiredSymbols"
	if cmp.ercUnplacedRequired, err = c.erc.Register(key, erc.SchematicError, ""); err != nil {
		return nil, err
	}
	sg.Add(func() error { cmp.ercUnplacedRequired.Unregister(); return nil })
	key.MsgKey = "UnplacedOptionalSymbols"
	if cmp.ercUnplacedOptional, err = c.erc.Register(key, erc.SchematicWarning, ""); err != nil {
		return nil, err
	}
	sg.Add(func() error { cmp.ercUnplacedOptional.Unregister(); return nil })

	for _, signal := range lib.Signals() {
		s, err := newComponentSignalInstance(cmp, signal, nets[signal.UUID()])
		if err != nil {
			return nil, err
		}
		sg.Add(s.destroy)
		cmp.signals = append(cmp.signals, s)
	}

	cmp.unsubProject = c.project.OnAttributesChanged(func(*Project) {
		cmp.attributesChanged.Publish(event.Changed, cmp)
	})
	cmp.updateErcMessages()
	return cmp, nil
}

func (cmp *ComponentInstance) UUID() uuid.UUID                       { return cmp.uuid }
func (cmp *ComponentInstance) Name() string                          { return cmp.name }
func (cmp *ComponentInstance) Circuit() *Circuit                     { return cmp.circuit }
func (cmp *ComponentInstance) LibComponent() *library.Component      { return cmp.lib }
func (cmp *ComponentInstance) SymbolVariant() *library.SymbolVariant { return cmp.variant }
func (cmp *ComponentInstance) IsAddedToCircuit() bool                { return cmp.added }

// Value returns the value, with the component's own variables substituted
// if replace is set.
func (cmp *ComponentInstance) Value(replace bool) string {
	if replace {
		return attr.Substitute(cmp.value, attr.Local(cmp))
	}
	return cmp.value
}

// Attributes returns a copy of the attribute list.
func (cmp *ComponentInstance) Attributes() *attr.List { return cmp.attributes.Clone() }

// SignalInstances returns the signal instances in library signal order.
func (cmp *ComponentInstance) SignalInstances() []*ComponentSignalInstance {
	return append([]*ComponentSignalInstance(nil), cmp.signals...)
}

// SignalInstance returns the instance of the library signal with the given
// UUID.
func (cmp *ComponentInstance) SignalInstance(libSignal uuid.UUID) (*ComponentSignalInstance, bool) {
	for _, s := range cmp.signals {
		if s.signal.UUID() == libSignal {
			return s, true
		}
	}
	return nil, false
}

// Symbols returns the number of placed symbols.
func (cmp *ComponentInstance) Symbols() int { return len(cmp.symbols) }

// Devices returns the number of board placements.
func (cmp *ComponentInstance) Devices() int { return len(cmp.devices) }

// IsUsed reports whether a symbol or device is registered or any signal
// instance is used.
func (cmp *ComponentInstance) IsUsed() bool {
	if len(cmp.symbols) > 0 || len(cmp.devices) > 0 {
		return true
	}
	for _, s := range cmp.signals {
		if s.IsUsed() {
			return true
		}
	}
	return false
}

// OnAttributesChanged registers fn to be called whenever the name, the
// value, the attributes or the project attributes changed.
func (cmp *ComponentInstance) OnAttributesChanged(fn func(*ComponentInstance)) (unsubscribe func()) {
	return cmp.attributesChanged.Subscribe(func(e event.Event[*ComponentInstance]) { fn(e.Payload) })
}

// SetName renames the component. Names must be unique within the circuit.
func (cmp *ComponentInstance) SetName(name string) error {
	if name == cmp.name {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return fault.Runtimef("the new component name must not be empty")
	}
	if cmp.added && cmp.circuit.ComponentInstanceByName(name) != nil {
		return fault.Runtimef("there is already a component with the name %q", name)
	}
	cmp.name = name
	cmp.updateErcMessages()
	cmp.attributesChanged.Publish(event.Changed, cmp)
	return nil
}

// SetValue sets the value text. It may contain variables.
func (cmp *ComponentInstance) SetValue(value string) {
	if value == cmp.value {
		return
	}
	cmp.value = value
	cmp.attributesChanged.Publish(event.Changed, cmp)
}

// SetAttributes replaces the attribute list.
func (cmp *ComponentInstance) SetAttributes(l *attr.List) {
	if cmp.attributes.Equal(l) {
		return
	}
	cmp.attributes = l.Clone()
	cmp.attributesChanged.Publish(event.Changed, cmp)
}

// AttributeValue resolves NAME, VALUE and the component attributes in the
// CMP (or empty) namespace. Other lookups are delegated to the project when
// passToParents is set.
func (cmp *ComponentInstance) AttributeValue(namespace, key string, passToParents bool) (string, bool) {
	if namespace == "" || namespace == NamespaceComponent {
		switch key {
		case "NAME":
			return cmp.name, true
		case "VALUE":
			return cmp.value, true
		}
		if a, ok := cmp.attributes.Get(key); ok {
			return a.Display(true), true
		}
	}
	if namespace != NamespaceComponent && passToParents {
		return cmp.circuit.project.AttributeValue(namespace, key, true)
	}
	return "", false
}

// ReplaceVariables substitutes the variables of text in the scope of the
// component and, when passToParents is set, the project.
func (cmp *ComponentInstance) ReplaceVariables(text string, passToParents bool) string {
	if !passToParents {
		return attr.Substitute(text, attr.Local(cmp))
	}
	return attr.Substitute(text, cmp)
}

func (cmp *ComponentInstance) addToCircuit() (err error) {
	if cmp.added || cmp.IsUsed() {
		return fault.Logicf("project.ComponentInstance.addToCircuit", "component %s", cmp.uuid)
	}
	sg := undo.NewScopeGuard(len(cmp.signals))
	defer sg.Finish(&err, cmp.circuit.logger)
	for _, s := range cmp.signals {
		if err := s.addToCircuit(); err != nil {
			return err
		}
		sg.Add(s.removeFromCircuit)
	}
	cmp.added = true
	cmp.updateErcMessages()
	return nil
}

func (cmp *ComponentInstance) removeFromCircuit() (err error) {
	if !cmp.added {
		return fault.Logicf("project.ComponentInstance.removeFromCircuit", "component %s", cmp.uuid)
	}
	if cmp.IsUsed() {
		return fault.Runtimef("the component %q cannot be removed because it is still in use", cmp.name)
	}
	sg := undo.NewScopeGuard(len(cmp.signals))
	defer sg.Finish(&err, cmp.circuit.logger)
	for _, s := range cmp.signals {
		if err := s.removeFromCircuit(); err != nil {
			return err
		}
		sg.Add(s.addToCircuit)
	}
	cmp.added = false
	cmp.updateErcMessages()
	return nil
}

// RegisterSymbol records a placed symbol. All symbols of a component must
// show distinct items of its symbol variant and lie on the same schematic.
func (cmp *ComponentInstance) RegisterSymbol(sym Symbol) error {
	if !cmp.added || sym.Circuit() != cmp.circuit {
		return fault.Logicf("project.ComponentInstance.RegisterSymbol", "component %s", cmp.uuid)
	}
	item := sym.SymbolVariantItem()
	if _, ok := cmp.variant.Item(item); !ok {
		return fault.Runtimef("invalid symbol item %s for the component %q", item, cmp.name)
	}
	if _, ok := cmp.symbols[item]; ok {
		return fault.Runtimef("the symbol item %s of the component %q is already placed", item, cmp.name)
	}
	for _, other := range cmp.symbols {
		if other.Schematic() != sym.Schematic() {
			return fault.Runtimef("all symbols of the component %q must be placed in the same schematic", cmp.name)
		}
	}
	cmp.symbols[item] = sym
	cmp.updateErcMessages()
	return nil
}

// UnregisterSymbol removes a symbol added by RegisterSymbol.
func (cmp *ComponentInstance) UnregisterSymbol(sym Symbol) error {
	item := sym.SymbolVariantItem()
	if !cmp.added || cmp.symbols[item] != sym {
		return fault.Logicf("project.ComponentInstance.UnregisterSymbol", "component %s, item %s", cmp.uuid, item)
	}
	delete(cmp.symbols, item)
	cmp.updateErcMessages()
	return nil
}

// RegisterDevice records a board placement.
func (cmp *ComponentInstance) RegisterDevice(d Device) error {
	if !cmp.added || d.Circuit() != cmp.circuit || indexOf(cmp.devices, d) >= 0 || cmp.lib.IsSchematicOnly() {
		return fault.Logicf("project.ComponentInstance.RegisterDevice", "component %s", cmp.uuid)
	}
	cmp.devices = append(cmp.devices, d)
	return nil
}

// UnregisterDevice removes a device added by RegisterDevice.
func (cmp *ComponentInstance) UnregisterDevice(d Device) error {
	i := indexOf(cmp.devices, d)
	if !cmp.added || i < 0 {
		return fault.Logicf("project.ComponentInstance.UnregisterDevice", "component %s", cmp.uuid)
	}
	cmp.devices = append(cmp.devices[:i:i], cmp.devices[i+1:]...)
	return nil
}

// UnplacedRequiredSymbols counts the required items of the symbol variant
// without a placed symbol.
func (cmp *ComponentInstance) UnplacedRequiredSymbols() int { return cmp.unplaced(true) }

// UnplacedOptionalSymbols counts the optional items of the symbol variant
// without a placed symbol.
func (cmp *ComponentInstance) UnplacedOptionalSymbols() int { return cmp.unplaced(false) }

func (cmp *ComponentInstance) unplaced(required bool) int {
	n := 0
	for _, item := range cmp.variant.Items() {
		if _, placed := cmp.symbols[item.UUID()]; !placed && item.IsRequired() == required {
			n++
		}
	}
	return n
}

// Destroy releases the signal instances and rule check messages of a
// component that is neither part of the circuit nor used.
func (cmp *ComponentInstance) Destroy() error {
	if cmp.added || cmp.IsUsed() {
		return fault.Logicf("project.ComponentInstance.Destroy", "component %s is still alive", cmp.uuid)
	}
	for _, s := range cmp.signals {
		if err := s.destroy(); err != nil {
			return err
		}
	}
	cmp.signals = nil
	cmp.unsubProject()
	cmp.ercUnplacedRequired.Unregister()
	cmp.ercUnplacedOptional.Unregister()
	return nil
}

func (cmp *ComponentInstance) updateErcMessages() {
	required, optional := cmp.UnplacedRequiredSymbols(), cmp.UnplacedOptionalSymbols()
	cmp.ercUnplacedRequired.SetText(fmt.Sprintf("Unplaced required symbols of component %q: %d", cmp.name, required))
	cmp.ercUnplacedRequired.SetVisible(cmp.added && required > 0)
	cmp.ercUnplacedOptional.SetText(fmt.Sprintf("Unplaced optional symbols of component %q: %d", cmp.name, optional))
	cmp.ercUnplacedOptional.SetVisible(cmp.added && optional > 0)
}
