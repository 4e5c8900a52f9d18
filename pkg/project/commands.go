package project

import (
	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/undo"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/uuidlist"
)

func NewCmdNetClassAdd(c *Circuit, nc *NetClass) *undo.Command {
	return uuidlist.NewInsertCmd(c.netClasses, nc, -1)
}

func NewCmdNetClassRemove(c *Circuit, nc *NetClass) *undo.Command {
	return uuidlist.NewRemoveCmd(c.netClasses, nc)
}

func NewCmdNetSignalAdd(c *Circuit, ns *NetSignal) *undo.Command {
	return uuidlist.NewInsertCmd(c.netSignals, ns, -1)
}

func NewCmdNetSignalRemove(c *Circuit, ns *NetSignal) *undo.Command {
	return uuidlist.NewRemoveCmd(c.netSignals, ns)
}

func NewCmdComponentInstanceAdd(c *Circuit, cmp *ComponentInstance) *undo.Command {
	return uuidlist.NewInsertCmd(c.components, cmp, -1)
}

func NewCmdComponentInstanceRemove(c *Circuit, cmp *ComponentInstance) *undo.Command {
	return uuidlist.NewRemoveCmd(c.components, cmp)
}

// ComponentEdit lists the properties to change. Nil fields are kept.
type ComponentEdit struct {
	Name       *string
	Value      *string
	Attributes *attr.List
}

// NewCmdComponentInstanceEdit returns a command applying edit to cmp.
func NewCmdComponentInstanceEdit(cmp *ComponentInstance, edit ComponentEdit) *undo.Command {
	return undo.New("Edit component", &componentEditAction{cmp: cmp, edit: edit})
}

type componentEditAction struct {
	cmp      *ComponentInstance
	edit     ComponentEdit
	old, new componentState
}

type componentState struct {
	name, value string
	attributes  *attr.List
}

func (a *componentEditAction) Execute() (bool, error) {
	a.old = componentState{a.cmp.name, a.cmp.value, a.cmp.Attributes()}
	a.new = a.old
	if a.edit.Name != nil {
		a.new.name = *a.edit.Name
	}
	if a.edit.Value != nil {
		a.new.value = *a.edit.Value
	}
	if a.edit.Attributes != nil {
		a.new.attributes = a.edit.Attributes.Clone()
	}
	if err := a.apply(a.new); err != nil {
		return false, err
	}
	return a.new.name != a.old.name || a.new.value != a.old.value || !a.new.attributes.Equal(a.old.attributes), nil
}

func (a *componentEditAction) Undo() error { return a.apply(a.old) }
func (a *componentEditAction) Redo() error { return a.apply(a.new) }

// apply sets the name first: it is the only step that can fail.
func (a *componentEditAction) apply(s componentState) error {
	if err := a.cmp.SetName(s.name); err != nil {
		return err
	}
	a.cmp.SetValue(s.value)
	a.cmp.SetAttributes(s.attributes)
	return nil
}

// NetSignalEdit lists the properties to change. Nil fields are kept.
type NetSignalEdit struct {
	Name     *string
	AutoName bool
	NetClass *NetClass
}

// NewCmdNetSignalEdit returns a command applying edit to ns.
func NewCmdNetSignalEdit(ns *NetSignal, edit NetSignalEdit) *undo.Command {
	return undo.New("Edit net signal", &netSignalEditAction{ns: ns, edit: edit})
}

type netSignalEditAction struct {
	ns       *NetSignal
	edit     NetSignalEdit
	old, new netSignalState
}

type netSignalState struct {
	name     string
	autoName bool
	netClass *NetClass
}

func (a *netSignalEditAction) Execute() (bool, error) {
	a.old = netSignalState{a.ns.name, a.ns.autoName, a.ns.netClass}
	a.new = a.old
	if a.edit.Name != nil {
		a.new.name = *a.edit.Name
		a.new.autoName = a.edit.AutoName
	}
	if a.edit.NetClass != nil {
		a.new.netClass = a.edit.NetClass
	}
	if err := a.apply(a.old, a.new); err != nil {
		return false, err
	}
	return a.new != a.old, nil
}

func (a *netSignalEditAction) Undo() error { return a.apply(a.new, a.old) }
func (a *netSignalEditAction) Redo() error { return a.apply(a.old, a.new) }

func (a *netSignalEditAction) apply(from, to netSignalState) (err error) {
	sg := undo.NewScopeGuard(1)
	defer sg.Finish(&err, a.ns.circuit.logger)
	if err := a.ns.SetName(to.name, to.autoName); err != nil {
		return err
	}
	sg.Add(func() error { return a.ns.SetName(from.name, from.autoName) })
	return a.ns.SetNetClass(to.netClass)
}

// NewCmdCompSigInstSetNetSignal returns a command binding sig to net, or
// unbinding it if net is nil.
func NewCmdCompSigInstSetNetSignal(sig *ComponentSignalInstance, net *NetSignal) *undo.Command {
	return undo.New("Change component signal net", &setNetSignalAction{sig: sig, new: net})
}

type setNetSignalAction struct {
	sig      *ComponentSignalInstance
	old, new *NetSignal
}

func (a *setNetSignalAction) Execute() (bool, error) {
	a.old = a.sig.netSignal
	if err := a.sig.SetNetSignal(a.new); err != nil {
		return false, err
	}
	return a.old != a.new, nil
}

func (a *setNetSignalAction) Undo() error { return a.sig.SetNetSignal(a.old) }
func (a *setNetSignalAction) Redo() error { return a.sig.SetNetSignal(a.new) }

// CmdAddComponentToCircuit creates a component instance from the library and
// adds it to the circuit.
type CmdAddComponentToCircuit struct {
	*undo.Command
	component *ComponentInstance
}

// NewCmdAddComponentToCircuit returns a command instantiating the library
// component libComponent with the symbol variant symbVar, or its default
// variant if symbVar is uuid.Nil. The instance gets an automatic name from
// the component prefix and the default value of the project locale.
func NewCmdAddComponentToCircuit(p *Project, libComponent, symbVar uuid.UUID) *CmdAddComponentToCircuit {
	cmd := &CmdAddComponentToCircuit{}
	cmd.Command = undo.NewGroupFunc("Add component", func(g *undo.Group) error {
		c := p.circuit
		g.SetLogger(c.logger)
		lib, err := p.library.Component(libComponent)
		if err != nil {
			return err
		}
		if symbVar == uuid.Nil {
			v := lib.DefaultSymbolVariant()
			if v == nil {
				return fault.Runtimef("the library component %s has no symbol variant", libComponent)
			}
			symbVar = v.UUID()
		}
		name := c.GenerateAutoComponentName(lib.Prefix(p.settings.NormOrder))
		cmp, err := NewComponentInstance(c, lib, symbVar, name)
		if err != nil {
			return err
		}
		if _, err := g.ExecChild(NewCmdComponentInstanceAdd(c, cmp)); err != nil {
			if derr := cmp.Destroy(); derr != nil {
				return derr
			}
			return err
		}
		cmd.component = cmp
		return nil
	})
	return cmd
}

// Component returns the created instance, or nil before a successful
// execute.
func (c *CmdAddComponentToCircuit) Component() *ComponentInstance { return c.component }

// NewCmdRemoveComponentFromCircuit returns a command disconnecting every
// signal of cmp from its net and removing cmp from the circuit.
func NewCmdRemoveComponentFromCircuit(cmp *ComponentInstance) *undo.Command {
	return undo.NewGroupFunc("Remove component", func(g *undo.Group) error {
		c := cmp.circuit
		g.SetLogger(c.logger)
		for _, s := range cmp.signals {
			if s.netSignal == nil {
				continue
			}
			if _, err := g.ExecChild(NewCmdCompSigInstSetNetSignal(s, nil)); err != nil {
				return err
			}
		}
		_, err := g.ExecChild(NewCmdComponentInstanceRemove(c, cmp))
		return err
	})
}

// NewCmdRemoveUnusedNetSignals returns a command removing every net signal
// no component signal is bound to.
func NewCmdRemoveUnusedNetSignals(c *Circuit) *undo.Command {
	return undo.NewGroupFunc("Remove unused net signals", func(g *undo.Group) error {
		g.SetLogger(c.logger)
		for _, ns := range c.NetSignals() {
			if ns.IsUsed() {
				continue
			}
			if _, err := g.ExecChild(NewCmdNetSignalRemove(c, ns)); err != nil {
				return err
			}
		}
		return nil
	})
}
