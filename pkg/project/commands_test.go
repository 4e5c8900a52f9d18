package project

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

func ptr[T any](v T) *T { return &v }

func TestCmdAddComponentToCircuit(t *testing.T) {
	p := newTestProject(t)
	stack := p.UndoStack()

	cmd := NewCmdAddComponentToCircuit(p, gateUUID, uuid.Nil)
	_, err := stack.Execute(cmd.Command)
	require.NoError(t, err)
	cmp := cmd.Component()
	require.NotNil(t, cmp)
	assert.Equal(t, "U1", cmp.Name(), "prefix of the default norm")
	assert.Equal(t, "{{NAME}} gate", cmp.Value(false))
	assert.Equal(t, gateVariant, cmp.SymbolVariant().UUID())
	assert.True(t, cmp.IsAddedToCircuit())
	assert.Equal(t, "Add component", stack.UndoText())

	second := NewCmdAddComponentToCircuit(p, gateUUID, gateVariant)
	_, err = stack.Execute(second.Command)
	require.NoError(t, err)
	assert.Equal(t, "U2", second.Component().Name())

	require.NoError(t, stack.Undo())
	require.NoError(t, stack.Undo())
	assert.Empty(t, p.Circuit().ComponentInstances())
	assert.False(t, cmp.IsAddedToCircuit())
	assert.Empty(t, visible(p.ERC()))

	require.NoError(t, stack.Redo())
	assert.Equal(t, []*ComponentInstance{cmp}, p.Circuit().ComponentInstances())
}

func TestCmdAddComponentToCircuitFailures(t *testing.T) {
	p := newTestProject(t)

	_, err := p.UndoStack().Execute(NewCmdAddComponentToCircuit(p, uuid.New(), uuid.Nil).Command)
	assert.True(t, fault.IsRuntime(err), "unknown library component")
	_, err = p.UndoStack().Execute(NewCmdAddComponentToCircuit(p, gateUUID, uuid.New()).Command)
	assert.True(t, fault.IsRuntime(err), "unknown symbol variant")

	assert.False(t, p.UndoStack().CanUndo())
	assert.Equal(t, 0, p.ERC().Len())
}

func TestCmdRemoveComponentFromCircuit(t *testing.T) {
	p := newTestProject(t)
	c := p.Circuit()
	stack := p.UndoStack()
	net := addNet(t, p, "N1")
	cmp := newGate(t, p, "U1")
	_, err := stack.Execute(NewCmdComponentInstanceAdd(c, cmp))
	require.NoError(t, err)
	in := signal(t, cmp, sigIn)
	_, err = stack.Execute(NewCmdCompSigInstSetNetSignal(in, net))
	require.NoError(t, err)

	_, err = stack.Execute(NewCmdRemoveComponentFromCircuit(cmp))
	require.NoError(t, err)
	assert.Empty(t, c.ComponentInstances())
	assert.Nil(t, in.NetSignal(), "signals are disconnected before removal")
	assert.Empty(t, net.ComponentSignals())

	require.NoError(t, stack.Undo())
	assert.Equal(t, []*ComponentInstance{cmp}, c.ComponentInstances())
	assert.Same(t, net, in.NetSignal())
	assert.Equal(t, []*ComponentSignalInstance{in}, net.ComponentSignals())

	require.NoError(t, stack.Undo())
	assert.Nil(t, in.NetSignal())
}

func TestCmdRemoveComponentFromCircuitIsAtomic(t *testing.T) {
	p := newTestProject(t)
	c := p.Circuit()
	net := addNet(t, p, "N1")
	cmp := newGate(t, p, "U1")
	require.NoError(t, c.AddComponentInstance(cmp))
	in := signal(t, cmp, sigIn)
	require.NoError(t, in.SetNetSignal(net))
	require.NoError(t, cmp.RegisterSymbol(&fakeSymbol{circuit: c, schematic: uuid.New(), item: itemAux}))

	_, err := p.UndoStack().Execute(NewCmdRemoveComponentFromCircuit(cmp))
	assert.True(t, fault.IsRuntime(err), "the component has a placed symbol")
	assert.True(t, cmp.IsAddedToCircuit())
	assert.Same(t, net, in.NetSignal(), "the disconnect step was rolled back")
	assert.False(t, p.UndoStack().CanUndo())
}

func TestCmdComponentInstanceEdit(t *testing.T) {
	p := newTestProject(t)
	c := p.Circuit()
	stack := p.UndoStack()
	u1, u2 := newGate(t, p, "U1"), newGate(t, p, "U2")
	require.NoError(t, c.AddComponentInstance(u1))
	require.NoError(t, c.AddComponentInstance(u2))

	_, err := stack.Execute(NewCmdComponentInstanceEdit(u1, ComponentEdit{Name: ptr("U2"), Value: ptr("x")}))
	assert.True(t, fault.IsRuntime(err))
	assert.Equal(t, "U1", u1.Name())
	assert.Equal(t, "{{NAME}} gate", u1.Value(false), "nothing applied")

	modified, err := stack.Execute(NewCmdComponentInstanceEdit(u1, ComponentEdit{
		Name:       ptr("R7"),
		Value:      ptr("10k"),
		Attributes: mustList(t),
	}))
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Equal(t, "R7", u1.Name())
	assert.Equal(t, 0, u1.Attributes().Len())

	require.NoError(t, stack.Undo())
	assert.Equal(t, "U1", u1.Name())
	assert.Equal(t, "{{NAME}} gate", u1.Value(false))
	assert.Equal(t, 1, u1.Attributes().Len())

	modified, err = stack.Execute(NewCmdComponentInstanceEdit(u1, ComponentEdit{Name: ptr("U1")}))
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestCmdNetSignalEdit(t *testing.T) {
	p := newTestProject(t)
	c := p.Circuit()
	stack := p.UndoStack()
	net := addNet(t, p, "N1")
	def := net.NetClass()
	power, err := NewNetClass(c, "power")
	require.NoError(t, err)
	_, err = stack.Execute(NewCmdNetClassAdd(c, power))
	require.NoError(t, err)

	_, err = stack.Execute(NewCmdNetSignalEdit(net, NetSignalEdit{Name: ptr("VCC"), NetClass: power}))
	require.NoError(t, err)
	assert.Equal(t, "VCC", net.Name())
	assert.Same(t, power, net.NetClass())

	require.NoError(t, stack.Undo())
	assert.Equal(t, "N1", net.Name())
	assert.Same(t, def, net.NetClass())

	detached, err := NewNetClass(c, "detached")
	require.NoError(t, err)
	_, err = stack.Execute(NewCmdNetSignalEdit(net, NetSignalEdit{Name: ptr("GND"), NetClass: detached}))
	assert.True(t, fault.IsLogic(err))
	assert.Equal(t, "N1", net.Name(), "the rename was rolled back")
}

func TestCmdRemoveUnusedNetSignals(t *testing.T) {
	p := newTestProject(t)
	c := p.Circuit()
	stack := p.UndoStack()
	used, a, b := addNet(t, p, "USED"), addNet(t, p, "A"), addNet(t, p, "B")
	cmp := newGate(t, p, "U1")
	require.NoError(t, c.AddComponentInstance(cmp))
	require.NoError(t, signal(t, cmp, sigIn).SetNetSignal(used))

	_, err := stack.Execute(NewCmdRemoveUnusedNetSignals(c))
	require.NoError(t, err)
	assert.Equal(t, []*NetSignal{used}, c.NetSignals())

	require.NoError(t, stack.Undo())
	assert.Equal(t, []*NetSignal{used, a, b}, c.NetSignals(), "restored at their former positions")
}

func TestCmdNetClassRemoveUsed(t *testing.T) {
	p := newTestProject(t)
	net := addNet(t, p, "N1")
	_, err := p.UndoStack().Execute(NewCmdNetClassRemove(p.Circuit(), net.NetClass()))
	assert.True(t, fault.IsRuntime(err))
	assert.Len(t, p.Circuit().NetClasses(), 1)

	_, err = p.UndoStack().Execute(NewCmdNetSignalRemove(p.Circuit(), net))
	require.NoError(t, err)
	_, err = p.UndoStack().Execute(NewCmdNetClassRemove(p.Circuit(), net.NetClass()))
	require.NoError(t, err)
	assert.Empty(t, p.Circuit().NetClasses())
}
