package project

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/uuidlist"
)

// Circuit is the registry of net classes, net signals and component
// instances. Objects join and leave the circuit only through its Add/Remove
// methods or the equivalent undo commands.
type Circuit struct {
	project *Project
	erc     *erc.Registry
	logger  *zap.Logger

	netClasses *uuidlist.List[*NetClass]
	netSignals *uuidlist.List[*NetSignal]
	components *uuidlist.List[*ComponentInstance]
}

func newCircuit(p *Project, registry *erc.Registry) *Circuit {
	c := &Circuit{
		project: p,
		erc:     registry,
		logger:  p.logger.Named("circuit"),
	}
	c.netClasses = uuidlist.NewWithHooks("net class", uuidlist.Hooks[*NetClass]{
		BeforeInsert: c.beforeAddNetClass,
		BeforeRemove: func(nc *NetClass) error { return nc.removeFromCircuit() },
	})
	c.netSignals = uuidlist.NewWithHooks("net signal", uuidlist.Hooks[*NetSignal]{
		BeforeInsert: c.beforeAddNetSignal,
		BeforeRemove: func(ns *NetSignal) error { return ns.removeFromCircuit() },
	})
	c.components = uuidlist.NewWithHooks("component", uuidlist.Hooks[*ComponentInstance]{
		BeforeInsert: c.beforeAddComponent,
		BeforeRemove: func(cmp *ComponentInstance) error { return cmp.removeFromCircuit() },
	})
	return c
}

func (c *Circuit) Project() *Project  { return c.project }
func (c *Circuit) ERC() *erc.Registry { return c.erc }

// Net classes

func (c *Circuit) beforeAddNetClass(nc *NetClass) error {
	if nc.circuit != c {
		return fault.Logicf("project.Circuit.AddNetClass", "net class %s belongs to another circuit", nc.uuid)
	}
	if other := c.NetClassByName(nc.name); other != nil {
		return fault.Runtimef("there is already a net class with the name %q", nc.name)
	}
	if err := nc.addToCircuit(); err != nil {
		return err
	}
	c.logger.Debug("net class added", zap.Stringer("uuid", nc.uuid), zap.String("name", nc.name))
	return nil
}

// AddNetClass adds nc to the circuit.
func (c *Circuit) AddNetClass(nc *NetClass) error {
	_, err := c.netClasses.Insert(-1, nc)
	return err
}

// RemoveNetClass removes nc. It fails while net signals use it.
func (c *Circuit) RemoveNetClass(nc *NetClass) error {
	i := c.netClasses.IndexOf(nc.uuid)
	if i < 0 {
		return fault.Logicf("project.Circuit.RemoveNetClass", "net class %s not in circuit", nc.uuid)
	}
	_, err := c.netClasses.Remove(i)
	return err
}

// NetClasses returns the net classes in order.
func (c *Circuit) NetClasses() []*NetClass { return c.netClasses.Items() }

// NetClass looks up a net class by UUID.
func (c *Circuit) NetClass(id uuid.UUID) (*NetClass, bool) { return c.netClasses.Get(id) }

// NetClassByName looks up a net class by name, or returns nil.
func (c *Circuit) NetClassByName(name string) *NetClass {
	for _, nc := range c.netClasses.Items() {
		if nc.name == name {
			return nc
		}
	}
	return nil
}

// Net signals

func (c *Circuit) beforeAddNetSignal(ns *NetSignal) error {
	if ns.circuit != c {
		return fault.Logicf("project.Circuit.AddNetSignal", "net signal %s belongs to another circuit", ns.uuid)
	}
	if other := c.NetSignalByName(ns.name); other != nil {
		return fault.Runtimef("there is already a net signal with the name %q", ns.name)
	}
	if err := ns.addToCircuit(); err != nil {
		return err
	}
	c.logger.Debug("net signal added", zap.Stringer("uuid", ns.uuid), zap.String("name", ns.name))
	return nil
}

// AddNetSignal adds ns to the circuit. Its net class must already be part
// of the circuit.
func (c *Circuit) AddNetSignal(ns *NetSignal) error {
	_, err := c.netSignals.Insert(-1, ns)
	return err
}

// RemoveNetSignal removes ns. It fails while component signals use it.
func (c *Circuit) RemoveNetSignal(ns *NetSignal) error {
	i := c.netSignals.IndexOf(ns.uuid)
	if i < 0 {
		return fault.Logicf("project.Circuit.RemoveNetSignal", "net signal %s not in circuit", ns.uuid)
	}
	_, err := c.netSignals.Remove(i)
	return err
}

// NetSignals returns the net signals in order.
func (c *Circuit) NetSignals() []*NetSignal { return c.netSignals.Items() }

// NetSignal looks up a net signal by UUID.
func (c *Circuit) NetSignal(id uuid.UUID) (*NetSignal, bool) { return c.netSignals.Get(id) }

// NetSignalByName looks up a net signal by name, or returns nil.
func (c *Circuit) NetSignalByName(name string) *NetSignal {
	for _, ns := range c.netSignals.Items() {
		if ns.name == name {
			return ns
		}
	}
	return nil
}

// GenerateAutoNetSignalName returns the lowest free name of the form N#<n>.
func (c *Circuit) GenerateAutoNetSignalName() string {
	return c.lowestFreeName("N#", func(name string) bool { return c.NetSignalByName(name) != nil })
}

// Component instances

func (c *Circuit) beforeAddComponent(cmp *ComponentInstance) error {
	if cmp.circuit != c {
		return fault.Logicf("project.Circuit.AddComponentInstance", "component %s belongs to another circuit", cmp.uuid)
	}
	if other := c.ComponentInstanceByName(cmp.name); other != nil {
		return fault.Runtimef("there is already a component with the name %q", cmp.name)
	}
	if err := cmp.addToCircuit(); err != nil {
		return err
	}
	c.logger.Debug("component added", zap.Stringer("uuid", cmp.uuid), zap.String("name", cmp.name))
	return nil
}

// AddComponentInstance adds cmp and all its signal instances to the circuit.
func (c *Circuit) AddComponentInstance(cmp *ComponentInstance) error {
	_, err := c.components.Insert(-1, cmp)
	return err
}

// RemoveComponentInstance removes cmp. It fails while cmp is in use.
func (c *Circuit) RemoveComponentInstance(cmp *ComponentInstance) error {
	i := c.components.IndexOf(cmp.uuid)
	if i < 0 {
		return fault.Logicf("project.Circuit.RemoveComponentInstance", "component %s not in circuit", cmp.uuid)
	}
	_, err := c.components.Remove(i)
	return err
}

// ComponentInstances returns the component instances in order.
func (c *Circuit) ComponentInstances() []*ComponentInstance { return c.components.Items() }

// ComponentInstance looks up a component instance by UUID.
func (c *Circuit) ComponentInstance(id uuid.UUID) (*ComponentInstance, bool) {
	return c.components.Get(id)
}

// ComponentInstanceByName looks up a component instance by name, or
// returns nil.
func (c *Circuit) ComponentInstanceByName(name string) *ComponentInstance {
	for _, cmp := range c.components.Items() {
		if cmp.name == name {
			return cmp
		}
	}
	return nil
}

// GenerateAutoComponentName returns the lowest free name <prefix><n>, n >= 1.
// An empty prefix yields names like "?1".
func (c *Circuit) GenerateAutoComponentName(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = "?"
	}
	return c.lowestFreeName(prefix, func(name string) bool { return c.ComponentInstanceByName(name) != nil })
}

func (c *Circuit) lowestFreeName(prefix string, taken func(string) bool) string {
	for n := 1; ; n++ {
		name := prefix + strconv.Itoa(n)
		if !taken(name) {
			return name
		}
	}
}

// detach drops the project subscriptions of the circuit's components. The
// circuit must not be used afterwards.
func (c *Circuit) detach() {
	for _, cmp := range c.components.Items() {
		cmp.unsubProject()
	}
}
