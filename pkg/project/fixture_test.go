package project

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
)

const gateYAML = `
uuid: 7a000000-0000-4000-8000-000000000001
name: Gate
prefixes:
  "": U
default_values:
  en_US: "{{NAME}} gate"
attributes:
  - key: VOLTAGE
    type: voltage
    unit: volt
    value: "5"
signals:
  - uuid: 7a000000-0000-4000-8000-0000000000a1
    name: IN
    required: true
  - uuid: 7a000000-0000-4000-8000-0000000000a2
    name: OUT
    forced_net_name: "{{NAME}}_OUT"
variants:
  - uuid: 7a000000-0000-4000-8000-0000000000b1
    name: default
    items:
      - uuid: 7a000000-0000-4000-8000-0000000000c1
        symbol: 7a000000-0000-4000-8000-0000000000d1
        required: true
      - uuid: 7a000000-0000-4000-8000-0000000000c2
        symbol: 7a000000-0000-4000-8000-0000000000d2
`

const frameYAML = `
uuid: 7a000000-0000-4000-8000-000000000002
name: Frame
schematic_only: true
variants:
  - uuid: 7a000000-0000-4000-8000-0000000000b2
    name: default
    items:
      - uuid: 7a000000-0000-4000-8000-0000000000c3
        symbol: 7a000000-0000-4000-8000-0000000000d3
`

var (
	gateUUID     = uuid.MustParse("7a000000-0000-4000-8000-000000000001")
	frameUUID    = uuid.MustParse("7a000000-0000-4000-8000-000000000002")
	sigIn        = uuid.MustParse("7a000000-0000-4000-8000-0000000000a1")
	sigOut       = uuid.MustParse("7a000000-0000-4000-8000-0000000000a2")
	gateVariant  = uuid.MustParse("7a000000-0000-4000-8000-0000000000b1")
	frameVariant = uuid.MustParse("7a000000-0000-4000-8000-0000000000b2")
	itemMain     = uuid.MustParse("7a000000-0000-4000-8000-0000000000c1")
	itemAux      = uuid.MustParse("7a000000-0000-4000-8000-0000000000c2")
)

// helperT is satisfied by both *testing.T and *rapid.T.
type helperT interface {
	require.TestingT
	Helper()
}

func newTestLibrary(t testing.TB) *library.MemoryRepository {
	t.Helper()
	lib := library.NewMemoryRepository()
	for _, src := range []string{gateYAML, frameYAML} {
		c, err := library.DecodeBytes([]byte(src))
		require.NoError(t, err)
		require.NoError(t, lib.Add(c))
	}
	return lib
}

func newTestProject(t testing.TB) *Project {
	t.Helper()
	return New("Demo", newTestLibrary(t), WithLogger(zaptest.NewLogger(t)))
}

func libComponent(t testing.TB, p *Project, id uuid.UUID) *library.Component {
	t.Helper()
	c, err := p.Library().Component(id)
	require.NoError(t, err)
	return c
}

// newGate creates a gate instance named name without adding it.
func newGate(t testing.TB, p *Project, name string) *ComponentInstance {
	t.Helper()
	cmp, err := NewComponentInstance(p.Circuit(), libComponent(t, p, gateUUID), gateVariant, name)
	require.NoError(t, err)
	return cmp
}

// addNet adds a net class (created on first use) and a net signal named
// name to the circuit.
func addNet(t helperT, p *Project, name string) *NetSignal {
	t.Helper()
	c := p.Circuit()
	nc := c.NetClassByName("default")
	if nc == nil {
		var err error
		nc, err = NewNetClass(c, "default")
		require.NoError(t, err)
		require.NoError(t, c.AddNetClass(nc))
	}
	ns, err := NewNetSignal(c, nc, name, false)
	require.NoError(t, err)
	require.NoError(t, c.AddNetSignal(ns))
	return ns
}

func signal(t testing.TB, cmp *ComponentInstance, id uuid.UUID) *ComponentSignalInstance {
	t.Helper()
	s, ok := cmp.SignalInstance(id)
	require.True(t, ok)
	return s
}

// visible returns the message keys of all visible messages.
func visible(r *erc.Registry) []erc.Key {
	var keys []erc.Key
	for _, m := range r.Messages() {
		if m.IsVisible() {
			keys = append(keys, m.Key())
		}
	}
	return keys
}

func componentKey(cmp *ComponentInstance, msg string) erc.Key {
	return erc.Key{OwnerKind: erc.OwnerComponent, OwnerKey: cmp.UUID().String(), MsgKey: msg}
}

func signalKey(s *ComponentSignalInstance, msg string) erc.Key {
	return erc.Key{OwnerKind: erc.OwnerComponentSignal, OwnerKey: s.key(), MsgKey: msg}
}

func message(t testing.TB, r *erc.Registry, key erc.Key) *erc.Message {
	t.Helper()
	m, ok := r.Get(key)
	require.True(t, ok, "message %s", key)
	return m
}

// Placement layer stand-ins.

type fakeSymbol struct {
	circuit   *Circuit
	schematic uuid.UUID
	item      uuid.UUID
}

func (s *fakeSymbol) Circuit() *Circuit            { return s.circuit }
func (s *fakeSymbol) Schematic() uuid.UUID         { return s.schematic }
func (s *fakeSymbol) SymbolVariantItem() uuid.UUID { return s.item }

type fakeDevice struct{ circuit *Circuit }

func (d *fakeDevice) Circuit() *Circuit { return d.circuit }

type fakePin struct {
	circuit   *Circuit
	connected bool
}

func (p *fakePin) Circuit() *Circuit { return p.circuit }
func (p *fakePin) IsConnected() bool { return p.connected }

type fakePad struct {
	circuit *Circuit
	used    bool
}

func (p *fakePad) Circuit() *Circuit { return p.circuit }
func (p *fakePad) IsUsed() bool      { return p.used }
