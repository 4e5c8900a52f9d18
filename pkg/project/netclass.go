package project

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// NetClass groups net signals sharing design rules.
type NetClass struct {
	circuit    *Circuit
	uuid       uuid.UUID
	name       string
	added      bool
	netSignals []*NetSignal

	ercUnused *erc.Message
}

// NewNetClass creates a net class that is not yet part of the circuit.
func NewNetClass(c *Circuit, name string) (*NetClass, error) {
	return newNetClass(c, uuid.New(), name)
}

func newNetClass(c *Circuit, id uuid.UUID, name string) (*NetClass, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fault.Runtimef("the net class name must not be empty")
	}
	nc := &NetClass{circuit: c, uuid: id, name: name}
	msg, err := c.erc.Register(erc.Key{
		OwnerKind: erc.OwnerNetClass, OwnerKey: id.String(), MsgKey: "Unused",
	}, erc.CircuitWarning, "")
	if err != nil {
		return nil, err
	}
	nc.ercUnused = msg
	nc.updateErcMessages()
	return nc, nil
}

func (nc *NetClass) UUID() uuid.UUID          { return nc.uuid }
func (nc *NetClass) Name() string             { return nc.name }
func (nc *NetClass) Circuit() *Circuit        { return nc.circuit }
func (nc *NetClass) IsAddedToCircuit() bool   { return nc.added }
func (nc *NetClass) IsUsed() bool             { return len(nc.netSignals) > 0 }
func (nc *NetClass) NetSignals() []*NetSignal { return append([]*NetSignal(nil), nc.netSignals...) }

// SetName renames the net class. Names must be unique within the circuit.
func (nc *NetClass) SetName(name string) error {
	if name == nc.name {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return fault.Runtimef("the new net class name must not be empty")
	}
	if nc.added && nc.circuit.NetClassByName(name) != nil {
		return fault.Runtimef("there is already a net class with the name %q", name)
	}
	nc.name = name
	nc.updateErcMessages()
	return nil
}

func (nc *NetClass) addToCircuit() error {
	if nc.added || nc.IsUsed() {
		return fault.Logic("project.NetClass.addToCircuit")
	}
	nc.added = true
	nc.updateErcMessages()
	return nil
}

func (nc *NetClass) removeFromCircuit() error {
	if !nc.added {
		return fault.Logic("project.NetClass.removeFromCircuit")
	}
	if nc.IsUsed() {
		return fault.Runtimef("the net class %q cannot be removed because it is still in use", nc.name)
	}
	nc.added = false
	nc.updateErcMessages()
	return nil
}

func (nc *NetClass) registerNetSignal(ns *NetSignal) error {
	if !nc.added || ns.circuit != nc.circuit || nc.indexOf(ns) >= 0 {
		return fault.Logicf("project.NetClass.registerNetSignal", "net class %s, net signal %s", nc.uuid, ns.uuid)
	}
	nc.netSignals = append(nc.netSignals, ns)
	nc.updateErcMessages()
	return nil
}

func (nc *NetClass) unregisterNetSignal(ns *NetSignal) error {
	i := nc.indexOf(ns)
	if !nc.added || i < 0 {
		return fault.Logicf("project.NetClass.unregisterNetSignal", "net class %s, net signal %s", nc.uuid, ns.uuid)
	}
	nc.netSignals = append(nc.netSignals[:i:i], nc.netSignals[i+1:]...)
	nc.updateErcMessages()
	return nil
}

func (nc *NetClass) indexOf(ns *NetSignal) int {
	for i, s := range nc.netSignals {
		if s == ns {
			return i
		}
	}
	return -1
}

// Destroy releases the net class's rule check messages. It must not be
// part of the circuit nor be used.
func (nc *NetClass) Destroy() error {
	if nc.added || nc.IsUsed() {
		return fault.Logicf("project.NetClass.Destroy", "net class %s is still alive", nc.uuid)
	}
	nc.ercUnused.Unregister()
	return nil
}

func (nc *NetClass) updateErcMessages() {
	nc.ercUnused.SetText(fmt.Sprintf("Unused net class: %q", nc.name))
	nc.ercUnused.SetVisible(nc.added && !nc.IsUsed())
}
