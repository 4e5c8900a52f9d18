package project

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/undo"
)

// ComponentSignalInstance is the instance of one library signal of a
// component instance. It may be bound to a net signal and is referenced by
// the symbol pins and footprint pads mapped to it.
type ComponentSignalInstance struct {
	circuit   *Circuit
	component *ComponentInstance
	signal    *library.Signal
	netSignal *NetSignal
	added     bool

	pins []SymbolPin
	pads []FootprintPad

	unsubComponent func()
	unsubNetName   func()

	ercUnconnectedRequired *erc.Message
	ercForcedNameConflict  *erc.Message
}

func newComponentSignalInstance(cmp *ComponentInstance, signal *library.Signal, net *NetSignal) (s *ComponentSignalInstance, err error) {
	c := cmp.circuit
	if net != nil && net.circuit != c {
		return nil, fault.Logicf("project.newComponentSignalInstance", "net signal %s belongs to another circuit", net.uuid)
	}
	s = &ComponentSignalInstance{circuit: c, component: cmp, signal: signal}

	sg := undo.NewScopeGuard(2)
	defer sg.Finish(&err, c.logger)
	key := erc.Key{OwnerKind: erc.OwnerComponentSignal, OwnerKey: s.key()}
	key.MsgKey = "UnconnectedRequiredSignal"
	if s.ercUnconnectedRequired, err = c.erc.Register(key, erc.CircuitError, ""); err != nil {
		return nil, err
	}
	sg.Add(func() error { s.ercUnconnectedRequired.Unregister(); return nil })
	key.MsgKey = "ForcedNetSignalNameConflict"
	if s.ercForcedNameConflict, err = c.erc.Register(key, erc.SchematicError, ""); err != nil {
		return nil, err
	}

	s.unsubComponent = cmp.OnAttributesChanged(func(*ComponentInstance) { s.updateErcMessages() })
	s.bindNet(net)
	s.updateErcMessages()
	return s, nil
}

func (s *ComponentSignalInstance) key() string {
	return s.component.uuid.String() + "/" + s.signal.UUID().String()
}

func (s *ComponentSignalInstance) Circuit() *Circuit          { return s.circuit }
func (s *ComponentSignalInstance) LibSignal() *library.Signal { return s.signal }
func (s *ComponentSignalInstance) NetSignal() *NetSignal      { return s.netSignal }
func (s *ComponentSignalInstance) IsAddedToCircuit() bool     { return s.added }

// ComponentInstance returns the owning component instance.
func (s *ComponentSignalInstance) ComponentInstance() *ComponentInstance { return s.component }

// IsUsed reports whether any symbol pin or footprint pad references the
// signal.
func (s *ComponentSignalInstance) IsUsed() bool { return len(s.pins)+len(s.pads) > 0 }

// ArePinsOrPadsUsed reports whether any referencing pin is connected or any
// referencing pad is used.
func (s *ComponentSignalInstance) ArePinsOrPadsUsed() bool {
	for _, pin := range s.pins {
		if pin.IsConnected() {
			return true
		}
	}
	for _, pad := range s.pads {
		if pad.IsUsed() {
			return true
		}
	}
	return false
}

// IsNetSignalNameForced reports whether the library signal forces the name
// of the bound net.
func (s *ComponentSignalInstance) IsNetSignalNameForced() bool {
	return s.signal.IsNetSignalNameForced()
}

// ForcedNetSignalName returns the forced net name with the component's
// variables substituted.
func (s *ComponentSignalInstance) ForcedNetSignalName() string {
	return attr.Substitute(s.signal.ForcedNetName(), attr.Local(s.component))
}

// SetNetSignal binds the signal to net, or unbinds it if net is nil.
func (s *ComponentSignalInstance) SetNetSignal(net *NetSignal) (err error) {
	if net == s.netSignal {
		return nil
	}
	if !s.added || (net != nil && net.circuit != s.circuit) {
		return fault.Logicf("project.ComponentSignalInstance.SetNetSignal", "signal %s", s.key())
	}
	if s.ArePinsOrPadsUsed() {
		return fault.Runtimef("the net signal of the component signal %q (%s) cannot be changed because it is still in use",
			s.signal.Name(), s.component.name)
	}

	sg := undo.NewScopeGuard(2)
	defer sg.Finish(&err, s.circuit.logger)
	if old := s.netSignal; old != nil {
		if err := old.unregisterComponentSignal(s); err != nil {
			return err
		}
		sg.Add(func() error { return old.registerComponentSignal(s) })
	}
	if net != nil {
		if err := net.registerComponentSignal(s); err != nil {
			return err
		}
		sg.Add(func() error { return net.unregisterComponentSignal(s) })
	}
	s.bindNet(net)
	s.updateErcMessages()
	return nil
}

// bindNet switches the net reference and the name change subscription.
func (s *ComponentSignalInstance) bindNet(net *NetSignal) {
	if s.unsubNetName != nil {
		s.unsubNetName()
		s.unsubNetName = nil
	}
	s.netSignal = net
	if net != nil {
		s.unsubNetName = net.OnNameChanged(func(*NetSignal) { s.updateErcMessages() })
	}
}

func (s *ComponentSignalInstance) addToCircuit() error {
	if s.added || s.IsUsed() {
		return fault.Logicf("project.ComponentSignalInstance.addToCircuit", "signal %s", s.key())
	}
	if s.netSignal != nil {
		if err := s.netSignal.registerComponentSignal(s); err != nil {
			return err
		}
	}
	s.added = true
	s.updateErcMessages()
	return nil
}

func (s *ComponentSignalInstance) removeFromCircuit() error {
	if !s.added {
		return fault.Logicf("project.ComponentSignalInstance.removeFromCircuit", "signal %s", s.key())
	}
	if s.IsUsed() {
		return fault.Runtimef("the component %q cannot be removed because it is still in use", s.component.name)
	}
	if s.netSignal != nil {
		if err := s.netSignal.unregisterComponentSignal(s); err != nil {
			return err
		}
	}
	s.added = false
	s.updateErcMessages()
	return nil
}

// RegisterSymbolPin records that pin references the signal.
func (s *ComponentSignalInstance) RegisterSymbolPin(pin SymbolPin) error {
	if !s.added || pin.Circuit() != s.circuit || indexOf(s.pins, pin) >= 0 {
		return fault.Logicf("project.ComponentSignalInstance.RegisterSymbolPin", "signal %s", s.key())
	}
	s.pins = append(s.pins, pin)
	return nil
}

// UnregisterSymbolPin removes a reference added by RegisterSymbolPin.
func (s *ComponentSignalInstance) UnregisterSymbolPin(pin SymbolPin) error {
	i := indexOf(s.pins, pin)
	if !s.added || i < 0 {
		return fault.Logicf("project.ComponentSignalInstance.UnregisterSymbolPin", "signal %s", s.key())
	}
	s.pins = append(s.pins[:i:i], s.pins[i+1:]...)
	return nil
}

// RegisterFootprintPad records that pad references the signal.
func (s *ComponentSignalInstance) RegisterFootprintPad(pad FootprintPad) error {
	if !s.added || pad.Circuit() != s.circuit || indexOf(s.pads, pad) >= 0 {
		return fault.Logicf("project.ComponentSignalInstance.RegisterFootprintPad", "signal %s", s.key())
	}
	s.pads = append(s.pads, pad)
	return nil
}

// UnregisterFootprintPad removes a reference added by RegisterFootprintPad.
func (s *ComponentSignalInstance) UnregisterFootprintPad(pad FootprintPad) error {
	i := indexOf(s.pads, pad)
	if !s.added || i < 0 {
		return fault.Logicf("project.ComponentSignalInstance.UnregisterFootprintPad", "signal %s", s.key())
	}
	s.pads = append(s.pads[:i:i], s.pads[i+1:]...)
	return nil
}

func (s *ComponentSignalInstance) destroy() error {
	if s.added || s.IsUsed() {
		return fault.Logicf("project.ComponentSignalInstance.destroy", "signal %s is still alive", s.key())
	}
	s.bindNet(nil)
	s.unsubComponent()
	s.ercUnconnectedRequired.Unregister()
	s.ercForcedNameConflict.Unregister()
	return nil
}

func (s *ComponentSignalInstance) updateErcMessages() {
	netName := ""
	if s.netSignal != nil {
		netName = s.netSignal.name
	}
	forced := s.ForcedNetSignalName()

	s.ercUnconnectedRequired.SetText(fmt.Sprintf("Unconnected component signal: %q from %q",
		s.signal.Name(), s.component.name))
	s.ercUnconnectedRequired.SetVisible(s.added && s.netSignal == nil && s.signal.IsRequired())

	s.ercForcedNameConflict.SetText(fmt.Sprintf("Signal name conflict: %q != %q (%q from %q)",
		netName, forced, s.signal.Name(), s.component.name))
	s.ercForcedNameConflict.SetVisible(s.added && s.IsNetSignalNameForced() &&
		(s.netSignal == nil || netName != forced))
}

func indexOf[T comparable](items []T, x T) int {
	for i, it := range items {
		if it == x {
			return i
		}
	}
	return -1
}
