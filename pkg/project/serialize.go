package project

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/sexp"
)

const (
	circuitRoot = "librepcb_circuit"
	noNet       = "none"
	noUnit      = "none"
)

// WriteCircuit writes the circuit in registration order:
//
//	(librepcb_circuit
//	 (netclass 8b3e... (name "default"))
//	 (netsignal 0c1d... (name "GND") (auto false) (netclass 8b3e...))
//	 (component 5f2a... (lib_component ...) (lib_variant ...) (name "R1") (value "{{RESISTANCE}}")
//	  (attribute "RESISTANCE" (type resistance) (unit kiloohm) (value "10"))
//	  (signal 1d4c... (net 0c1d...))
//	 )
//	)
func (p *Project) WriteCircuit(w io.Writer) error {
	c := p.circuit
	root := sexp.NewList(circuitRoot)
	for _, nc := range c.NetClasses() {
		root.Append(sexp.NewList("netclass", sexp.Symbol(nc.uuid.String()), sexp.Str("name", nc.name)))
	}
	for _, ns := range c.NetSignals() {
		root.Append(sexp.NewList("netsignal", sexp.Symbol(ns.uuid.String()),
			sexp.Str("name", ns.name),
			sexp.Bool("auto", ns.autoName),
			sexp.UUID("netclass", ns.netClass.uuid)))
	}
	for _, cmp := range c.ComponentInstances() {
		root.Append(componentNode(cmp))
	}
	if err := sexp.Write(w, root); err != nil {
		return fmt.Errorf("project: write circuit: %w", err)
	}
	return nil
}

func componentNode(cmp *ComponentInstance) *sexp.List {
	node := sexp.NewList("component", sexp.Symbol(cmp.uuid.String()),
		sexp.UUID("lib_component", cmp.lib.UUID()),
		sexp.UUID("lib_variant", cmp.variant.UUID()),
		sexp.Str("name", cmp.name),
		sexp.Str("value", cmp.value))
	for _, a := range cmp.attributes.Items() {
		unit := a.Unit
		if unit == "" {
			unit = noUnit
		}
		node.Append(sexp.NewList("attribute", sexp.String(a.Key),
			sexp.Sym("type", string(a.Type)),
			sexp.Sym("unit", unit),
			sexp.Str("value", a.Value)))
	}
	for _, s := range cmp.signals {
		net := noNet
		if s.netSignal != nil {
			net = s.netSignal.uuid.String()
		}
		node.Append(sexp.NewList("signal", sexp.Symbol(s.signal.UUID().String()), sexp.Sym("net", net)))
	}
	return node
}

// LoadCircuit replaces the circuit by the one read from r. Loading is all or
// nothing: on error the current circuit, its rule check messages and the
// undo history are left untouched. On success the undo history is cleared
// and ignored rule check messages are carried over.
func (p *Project) LoadCircuit(r io.Reader) (err error) {
	if p.undo.IsCommandActive() {
		return fault.Logicf("project.Project.LoadCircuit", "an undo transaction is open")
	}
	root, err := sexp.ParseOne(r, circuitRoot)
	if err != nil {
		return fault.WrapRuntime(err, "invalid circuit file")
	}

	registry := erc.NewRegistry(p.logger.Named("erc"))
	registry.SetIgnoredKeys(p.erc.IgnoredKeys())
	c := newCircuit(p, registry)
	defer func() {
		if err != nil {
			c.detach()
		}
	}()

	for _, node := range sexp.FindAllNodes(root, "netclass") {
		if err := c.loadNetClass(node); err != nil {
			return err
		}
	}
	for _, node := range sexp.FindAllNodes(root, "netsignal") {
		if err := c.loadNetSignal(node); err != nil {
			return err
		}
	}
	for _, node := range sexp.FindAllNodes(root, "component") {
		if err := c.loadComponent(node); err != nil {
			return err
		}
	}

	if err := p.undo.Clear(); err != nil {
		return err
	}
	old := p.circuit
	p.circuit, p.erc = c, registry
	old.detach()
	p.logger.Info("circuit loaded",
		zap.Int("netclasses", c.netClasses.Len()),
		zap.Int("netsignals", c.netSignals.Len()),
		zap.Int("components", c.components.Len()))
	return nil
}

func (c *Circuit) loadNetClass(node *sexp.List) error {
	id, err := sexp.GetUUID(node, 1)
	if err != nil {
		return fault.WrapRuntime(err, "invalid net class")
	}
	if _, ok := c.NetClass(id); ok {
		return fault.Runtimef("the net class with the UUID %s is defined multiple times", id)
	}
	name, err := sexp.ChildString(node, "name")
	if err != nil {
		return fault.WrapRuntime(err, "invalid net class %s", id)
	}
	nc, err := newNetClass(c, id, name)
	if err != nil {
		return err
	}
	return c.AddNetClass(nc)
}

func (c *Circuit) loadNetSignal(node *sexp.List) error {
	id, err := sexp.GetUUID(node, 1)
	if err != nil {
		return fault.WrapRuntime(err, "invalid net signal")
	}
	if _, ok := c.NetSignal(id); ok {
		return fault.Runtimef("the net signal with the UUID %s is defined multiple times", id)
	}
	name, err := sexp.ChildString(node, "name")
	if err != nil {
		return fault.WrapRuntime(err, "invalid net signal %s", id)
	}
	auto, err := sexp.ChildBool(node, "auto")
	if err != nil {
		return fault.WrapRuntime(err, "invalid net signal %s", id)
	}
	ncID, err := sexp.ChildUUID(node, "netclass")
	if err != nil {
		return fault.WrapRuntime(err, "invalid net signal %s", id)
	}
	nc, ok := c.NetClass(ncID)
	if !ok {
		return fault.Runtimef("the net class %s of the net signal %s does not exist", ncID, id)
	}
	ns, err := newNetSignal(c, id, nc, name, auto)
	if err != nil {
		return err
	}
	return c.AddNetSignal(ns)
}

func (c *Circuit) loadComponent(node *sexp.List) error {
	id, err := sexp.GetUUID(node, 1)
	if err != nil {
		return fault.WrapRuntime(err, "invalid component")
	}
	if _, ok := c.ComponentInstance(id); ok {
		return fault.Runtimef("the component with the UUID %s is defined multiple times", id)
	}
	libID, err := sexp.ChildUUID(node, "lib_component")
	if err != nil {
		return fault.WrapRuntime(err, "invalid component %s", id)
	}
	variantID, err := sexp.ChildUUID(node, "lib_variant")
	if err != nil {
		return fault.WrapRuntime(err, "invalid component %s", id)
	}
	name, err := sexp.ChildString(node, "name")
	if err != nil {
		return fault.WrapRuntime(err, "invalid component %s", id)
	}
	value, err := sexp.ChildString(node, "value")
	if err != nil {
		return fault.WrapRuntime(err, "invalid component %s", id)
	}
	attributes, err := loadAttributes(node)
	if err != nil {
		return fault.WrapRuntime(err, "invalid attributes of the component %s", id)
	}
	lib, err := c.project.library.Component(libID)
	if err != nil {
		return fault.WrapRuntime(err, "the library component %s of the component %s is missing", libID, id)
	}

	nets := make(map[uuid.UUID]*NetSignal)
	seen := make(map[uuid.UUID]bool)
	signalNodes := sexp.FindAllNodes(node, "signal")
	for _, sn := range signalNodes {
		sigID, err := sexp.GetUUID(sn, 1)
		if err != nil {
			return fault.WrapRuntime(err, "invalid signal of the component %s", id)
		}
		if seen[sigID] {
			return fault.Runtimef("the signal with the UUID %s is defined multiple times", sigID)
		}
		seen[sigID] = true
		if _, ok := lib.Signal(sigID); !ok {
			return fault.Runtimef("the signal %s of the component %s does not exist in the library component %s",
				sigID, id, libID)
		}
		netText, err := sexp.ChildString(sn, "net")
		if err != nil {
			return fault.WrapRuntime(err, "invalid signal %s of the component %s", sigID, id)
		}
		if netText == noNet {
			continue
		}
		netID, err := uuid.Parse(netText)
		if err != nil {
			return fault.WrapRuntime(err, "invalid net signal UUID %q of the signal %s", netText, sigID)
		}
		net, ok := c.NetSignal(netID)
		if !ok {
			return fault.Runtimef("invalid net signal UUID %s of the signal %s", netID, sigID)
		}
		nets[sigID] = net
	}
	if len(signalNodes) != lib.SignalCount() {
		return fault.Runtimef("the signal count of the component %s does not match with the signal count of the library component %s",
			id, libID)
	}

	cmp, err := newComponentInstance(c, id, lib, variantID, name, value, attributes, nets)
	if err != nil {
		return err
	}
	if err := c.AddComponentInstance(cmp); err != nil {
		if derr := cmp.Destroy(); derr != nil {
			c.logger.Warn("cannot destroy component", zap.Stringer("uuid", id), zap.Error(derr))
		}
		return err
	}
	return nil
}

func loadAttributes(node *sexp.List) (*attr.List, error) {
	var attrs []attr.Attribute
	for _, an := range sexp.FindAllNodes(node, "attribute") {
		key, err := sexp.GetString(an, 1)
		if err != nil {
			return nil, err
		}
		typeText, err := sexp.ChildString(an, "type")
		if err != nil {
			return nil, err
		}
		typ, err := attr.ParseType(typeText)
		if err != nil {
			return nil, err
		}
		unit, err := sexp.ChildString(an, "unit")
		if err != nil {
			return nil, err
		}
		if unit == noUnit {
			unit = ""
		}
		value, err := sexp.ChildString(an, "value")
		if err != nil {
			return nil, err
		}
		a, err := attr.New(key, typ, value, unit)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attr.NewList(attrs...)
}
