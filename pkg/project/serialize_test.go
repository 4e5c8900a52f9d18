package project

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

const (
	classID = "9b000000-0000-4000-8000-000000000001"
	gndID   = "9b000000-0000-4000-8000-000000000002"
	u1ID    = "9b000000-0000-4000-8000-000000000004"
)

const circuitTemplate = `(librepcb_circuit
 (netclass ` + classID + ` (name "default"))
 (netsignal ` + gndID + ` (name "GND") (auto false) (netclass ` + classID + `))
 (component ` + u1ID + ` (lib_component 7a000000-0000-4000-8000-000000000001)
  (lib_variant 7a000000-0000-4000-8000-0000000000b1) (name "U1") (value "{{NAME}} gate")
  (attribute "VOLTAGE" (type voltage) (unit volt) (value "5"))
  %s
 )
)
`

const defaultSignals = `(signal 7a000000-0000-4000-8000-0000000000a1 (net ` + gndID + `))
  (signal 7a000000-0000-4000-8000-0000000000a2 (net none))`

func circuitText(signals string) string {
	return fmt.Sprintf(circuitTemplate, signals)
}

func TestLoadCircuit(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.LoadCircuit(strings.NewReader(circuitText(defaultSignals))))
	c := p.Circuit()

	gnd := c.NetSignalByName("GND")
	require.NotNil(t, gnd)
	assert.Equal(t, gndID, gnd.UUID().String())
	assert.Equal(t, "default", gnd.NetClass().Name())

	u1 := c.ComponentInstanceByName("U1")
	require.NotNil(t, u1)
	assert.Equal(t, u1ID, u1.UUID().String())
	assert.True(t, u1.IsAddedToCircuit())
	assert.Equal(t, "U1 gate", u1.Value(true))
	assert.Same(t, gnd, signal(t, u1, sigIn).NetSignal())
	assert.Nil(t, signal(t, u1, sigOut).NetSignal())
	assert.Same(t, c.ERC(), p.ERC())

	assert.ElementsMatch(t, []erc.Key{
		netSignalKey(gnd, "ConnectedToLessThanTwoPins"),
		componentKey(u1, "UnplacedRequiredSymbols"),
		componentKey(u1, "UnplacedOptionalSymbols"),
		signalKey(signal(t, u1, sigOut), "ForcedNetSignalNameConflict"),
	}, visible(p.ERC()))
}

func TestWriteCircuitRoundTrip(t *testing.T) {
	p := newTestProject(t)
	c := p.Circuit()
	gnd := addNet(t, p, "GND")
	vcc := addNet(t, p, "VCC")
	u1, u2 := newGate(t, p, "U1"), newGate(t, p, "U2")
	require.NoError(t, c.AddComponentInstance(u1))
	require.NoError(t, c.AddComponentInstance(u2))
	require.NoError(t, signal(t, u1, sigIn).SetNetSignal(gnd))
	require.NoError(t, signal(t, u2, sigIn).SetNetSignal(gnd))
	require.NoError(t, signal(t, u2, sigOut).SetNetSignal(vcc))
	u2.SetValue(`say "hi"`)

	var first bytes.Buffer
	require.NoError(t, p.WriteCircuit(&first))

	loaded := newTestProject(t)
	require.NoError(t, loaded.LoadCircuit(bytes.NewReader(first.Bytes())))
	var second bytes.Buffer
	require.NoError(t, loaded.WriteCircuit(&second))
	if diff := cmp.Diff(first.String(), second.String()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	names := func(p *Project) []string {
		var out []string
		for _, ci := range p.Circuit().ComponentInstances() {
			out = append(out, ci.Name())
		}
		return out
	}
	assert.Equal(t, []string{"U1", "U2"}, names(loaded), "registration order is serialization order")
	assert.Equal(t, `say "hi"`, loaded.Circuit().ComponentInstanceByName("U2").Value(false))
}

func TestLoadCircuitErrors(t *testing.T) {
	unknownNet := uuid.New().String()
	tests := []struct {
		name    string
		text    string
		mention string
	}{
		{
			name: "duplicate signal",
			text: circuitText(`(signal 7a000000-0000-4000-8000-0000000000a1 (net none))
  (signal 7a000000-0000-4000-8000-0000000000a1 (net none))`),
			mention: sigIn.String(),
		},
		{
			name:    "signal count mismatch",
			text:    circuitText(`(signal 7a000000-0000-4000-8000-0000000000a1 (net none))`),
			mention: u1ID,
		},
		{
			name: "unknown net signal",
			text: circuitText(`(signal 7a000000-0000-4000-8000-0000000000a1 (net ` + unknownNet + `))
  (signal 7a000000-0000-4000-8000-0000000000a2 (net none))`),
			mention: unknownNet,
		},
		{
			name: "unknown library signal",
			text: circuitText(`(signal 7a000000-0000-4000-8000-0000000000a1 (net none))
  (signal 7a000000-0000-4000-8000-0000000000ff (net none))`),
			mention: "7a000000-0000-4000-8000-0000000000ff",
		},
		{
			name:    "missing library component",
			text:    strings.Replace(circuitText(defaultSignals), "7a000000-0000-4000-8000-000000000001", "7a000000-0000-4000-8000-0000000000ee", 1),
			mention: "7a000000-0000-4000-8000-0000000000ee",
		},
		{
			name:    "unknown net class",
			text:    strings.Replace(circuitText(defaultSignals), "(netclass "+classID+"))", "(netclass "+u1ID+"))", 1),
			mention: u1ID,
		},
		{
			name: "duplicate net class",
			text: strings.Replace(circuitText(defaultSignals), `(name "default"))`,
				`(name "default"))`+"\n (netclass "+classID+` (name "other"))`, 1),
			mention: "net class with the UUID " + classID,
		},
		{
			name: "duplicate net signal",
			text: strings.Replace(circuitText(defaultSignals), "(netclass "+classID+"))",
				"(netclass "+classID+"))\n (netsignal "+gndID+` (name "GND2") (auto false) (netclass `+classID+"))", 1),
			mention: "net signal with the UUID " + gndID,
		},
		{
			name: "duplicate component",
			text: strings.Replace(circuitText(defaultSignals), "\n)\n",
				"\n (component "+u1ID+` (lib_component 7a000000-0000-4000-8000-000000000001)
  (lib_variant 7a000000-0000-4000-8000-0000000000b1) (name "U2") (value "")
  `+defaultSignals+"\n )\n)\n", 1),
			mention: "component with the UUID " + u1ID,
		},
		{
			name:    "wrong root",
			text:    "(circuit)",
			mention: "librepcb_circuit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProject(t)
			keep := addNet(t, p, "KEEP")
			circuit, registry := p.Circuit(), p.ERC()
			messages := registry.Len()

			err := p.LoadCircuit(strings.NewReader(tt.text))
			require.Error(t, err)
			assert.True(t, fault.IsRuntime(err), "%v", err)
			assert.Contains(t, err.Error(), tt.mention)

			assert.Same(t, circuit, p.Circuit())
			assert.Same(t, registry, p.ERC())
			assert.Equal(t, messages, registry.Len())
			assert.Equal(t, []*NetSignal{keep}, p.Circuit().NetSignals())
		})
	}
}

func TestLoadCircuitKeepsIgnoredMessages(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.LoadCircuit(strings.NewReader(circuitText(defaultSignals))))
	u1 := p.Circuit().ComponentInstanceByName("U1")
	message(t, p.ERC(), componentKey(u1, "UnplacedOptionalSymbols")).SetIgnored(true)

	require.NoError(t, p.LoadCircuit(strings.NewReader(circuitText(defaultSignals))))
	u1 = p.Circuit().ComponentInstanceByName("U1")
	m := message(t, p.ERC(), componentKey(u1, "UnplacedOptionalSymbols"))
	assert.True(t, m.IsIgnored())
	assert.True(t, m.IsVisible())
	assert.False(t, m.IsActive())
}

func TestLoadCircuitClearsUndoHistory(t *testing.T) {
	p := newTestProject(t)
	nc, err := NewNetClass(p.Circuit(), "default")
	require.NoError(t, err)
	_, err = p.UndoStack().Execute(NewCmdNetClassAdd(p.Circuit(), nc))
	require.NoError(t, err)
	require.True(t, p.UndoStack().CanUndo())

	require.NoError(t, p.LoadCircuit(strings.NewReader(circuitText(defaultSignals))))
	assert.False(t, p.UndoStack().CanUndo())
}
