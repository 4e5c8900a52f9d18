package project

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/event"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/undo"
)

// NetSignal is a named electrical connection shared by component signal
// instances.
type NetSignal struct {
	circuit  *Circuit
	uuid     uuid.UUID
	name     string
	autoName bool
	netClass *NetClass
	added    bool
	signals  []*ComponentSignalInstance

	nameChanged event.Bus[*NetSignal]

	ercUnused      *erc.Message
	ercLessThanTwo *erc.Message
}

// NewNetSignal creates a net signal that is not yet part of the circuit.
func NewNetSignal(c *Circuit, netClass *NetClass, name string, autoName bool) (*NetSignal, error) {
	return newNetSignal(c, uuid.New(), netClass, name, autoName)
}

func newNetSignal(c *Circuit, id uuid.UUID, netClass *NetClass, name string, autoName bool) (ns *NetSignal, err error) {
	if netClass == nil || netClass.circuit != c {
		return nil, fault.Logicf("project.NewNetSignal", "net signal %s needs a net class of the same circuit", id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fault.Runtimef("the net signal name must not be empty")
	}
	ns = &NetSignal{circuit: c, uuid: id, name: name, autoName: autoName, netClass: netClass}

	sg := undo.NewScopeGuard(2)
	defer sg.Finish(&err, c.logger)
	key := erc.Key{OwnerKind: erc.OwnerNetSignal, OwnerKey: id.String()}
	key.MsgKey = "Unused"
	if ns.ercUnused, err = c.erc.Register(key, erc.CircuitWarning, ""); err != nil {
		return nil, err
	}
	sg.Add(func() error { ns.ercUnused.Unregister(); return nil })
	key.MsgKey = "ConnectedToLessThanTwoPins"
	if ns.ercLessThanTwo, err = c.erc.Register(key, erc.CircuitWarning, ""); err != nil {
		return nil, err
	}
	ns.updateErcMessages()
	return ns, nil
}

func (ns *NetSignal) UUID() uuid.UUID     { return ns.uuid }
func (ns *NetSignal) Name() string        { return ns.name }
func (ns *NetSignal) HasAutoName() bool   { return ns.autoName }
func (ns *NetSignal) NetClass() *NetClass { return ns.netClass }
func (ns *NetSignal) Circuit() *Circuit   { return ns.circuit }

func (ns *NetSignal) IsAddedToCircuit() bool { return ns.added }

// IsUsed reports whether any component signal instance is bound to the net.
func (ns *NetSignal) IsUsed() bool { return len(ns.signals) > 0 }

// ComponentSignals returns the bound component signal instances in binding
// order.
func (ns *NetSignal) ComponentSignals() []*ComponentSignalInstance {
	return append([]*ComponentSignalInstance(nil), ns.signals...)
}

// OnNameChanged registers fn to be called after every rename.
func (ns *NetSignal) OnNameChanged(fn func(*NetSignal)) (unsubscribe func()) {
	return ns.nameChanged.Subscribe(func(e event.Event[*NetSignal]) { fn(e.Payload) })
}

// SetName renames the net signal and notifies subscribers synchronously.
// Names must be unique within the circuit.
func (ns *NetSignal) SetName(name string, isAutoName bool) error {
	if name == ns.name && isAutoName == ns.autoName {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return fault.Runtimef("the new net signal name must not be empty")
	}
	if other := ns.circuit.NetSignalByName(name); ns.added && other != nil && other != ns {
		return fault.Runtimef("there is already a net signal with the name %q", name)
	}
	renamed := name != ns.name
	ns.name = name
	ns.autoName = isAutoName
	ns.updateErcMessages()
	if renamed {
		ns.nameChanged.Publish(event.Changed, ns)
	}
	return nil
}

// SetNetClass moves the net signal to another net class of the same
// circuit.
func (ns *NetSignal) SetNetClass(nc *NetClass) (err error) {
	if nc == ns.netClass {
		return nil
	}
	if nc == nil || nc.circuit != ns.circuit {
		return fault.Logic("project.NetSignal.SetNetClass")
	}
	if ns.added {
		sg := undo.NewScopeGuard(1)
		defer sg.Finish(&err, ns.circuit.logger)
		old := ns.netClass
		if err := old.unregisterNetSignal(ns); err != nil {
			return err
		}
		sg.Add(func() error { return old.registerNetSignal(ns) })
		if err := nc.registerNetSignal(ns); err != nil {
			return err
		}
	}
	ns.netClass = nc
	return nil
}

func (ns *NetSignal) addToCircuit() error {
	if ns.added || ns.IsUsed() {
		return fault.Logic("project.NetSignal.addToCircuit")
	}
	if err := ns.netClass.registerNetSignal(ns); err != nil {
		return err
	}
	ns.added = true
	ns.updateErcMessages()
	return nil
}

func (ns *NetSignal) removeFromCircuit() error {
	if !ns.added {
		return fault.Logic("project.NetSignal.removeFromCircuit")
	}
	if ns.IsUsed() {
		return fault.Runtimef("the net signal %q cannot be removed because it is still in use", ns.name)
	}
	if err := ns.netClass.unregisterNetSignal(ns); err != nil {
		return err
	}
	ns.added = false
	ns.updateErcMessages()
	return nil
}

func (ns *NetSignal) registerComponentSignal(sig *ComponentSignalInstance) error {
	if !ns.added || sig.circuit != ns.circuit || ns.indexOf(sig) >= 0 {
		return fault.Logicf("project.NetSignal.registerComponentSignal", "net signal %s, signal %s", ns.uuid, sig.key())
	}
	ns.signals = append(ns.signals, sig)
	ns.updateErcMessages()
	return nil
}

func (ns *NetSignal) unregisterComponentSignal(sig *ComponentSignalInstance) error {
	i := ns.indexOf(sig)
	if !ns.added || i < 0 {
		return fault.Logicf("project.NetSignal.unregisterComponentSignal", "net signal %s, signal %s", ns.uuid, sig.key())
	}
	ns.signals = append(ns.signals[:i:i], ns.signals[i+1:]...)
	ns.updateErcMessages()
	return nil
}

func (ns *NetSignal) indexOf(sig *ComponentSignalInstance) int {
	for i, s := range ns.signals {
		if s == sig {
			return i
		}
	}
	return -1
}

// Destroy releases the net signal's rule check messages. It must not be
// part of the circuit nor be used.
func (ns *NetSignal) Destroy() error {
	if ns.added || ns.IsUsed() {
		return fault.Logicf("project.NetSignal.Destroy", "net signal %s is still alive", ns.uuid)
	}
	ns.ercUnused.Unregister()
	ns.ercLessThanTwo.Unregister()
	return nil
}

func (ns *NetSignal) updateErcMessages() {
	ns.ercUnused.SetText(fmt.Sprintf("Unused net signal: %q", ns.name))
	ns.ercLessThanTwo.SetText(fmt.Sprintf("Net signal connected to less than two pins: %q", ns.name))
	ns.ercUnused.SetVisible(ns.added && len(ns.signals) == 0)
	ns.ercLessThanTwo.SetVisible(ns.added && len(ns.signals) == 1)
}
