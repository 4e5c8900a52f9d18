package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gateYAML = `
uuid: 7a000000-0000-4000-8000-000000000001
name: Gate
prefixes:
  "": U
default_values:
  en_US: "{{NAME}} gate"
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

const boardCircuit = `(librepcb_circuit
 (netclass 9b000000-0000-4000-8000-000000000001 (name "default"))
 (netsignal 9b000000-0000-4000-8000-000000000002 (name "GND") (auto false)
  (netclass 9b000000-0000-4000-8000-000000000001))
 (component 9b000000-0000-4000-8000-000000000004
  (lib_component 7a000000-0000-4000-8000-000000000001)
  (lib_variant 7a000000-0000-4000-8000-0000000000b1) (name "U1") (value "{{NAME}} gate")
  (signal 7a000000-0000-4000-8000-0000000000a1 (net 9b000000-0000-4000-8000-000000000002))
  (signal 7a000000-0000-4000-8000-0000000000a2 (net none))
 )
)
`

const ignoreErrors = `(erc
 (ignore
  (item Component "9b000000-0000-4000-8000-000000000004" UnplacedRequiredSymbols)
  (item ComponentSignal "9b000000-0000-4000-8000-000000000004/7a000000-0000-4000-8000-0000000000a2" ForcedNetSignalNameConflict)
 )
)
`

type workspace struct {
	lib     string
	circuit string
	ignore  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("HOME", root)

	ws := workspace{
		lib:     filepath.Join(root, "library"),
		circuit: filepath.Join(root, "board.lp"),
		ignore:  filepath.Join(root, "erc.lp"),
	}
	require.NoError(t, os.MkdirAll(ws.lib, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.lib, "gate.yaml"), []byte(gateYAML), 0o644))
	require.NoError(t, os.WriteFile(ws.circuit, []byte(boardCircuit), 0o644))
	require.NoError(t, os.WriteFile(ws.ignore, []byte(ignoreErrors), 0o644))
	return ws
}

// resetFlags restores flag defaults so commands can be executed repeatedly.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsE2E(t *testing.T) {
	ws := newWorkspace(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "lib",
			args:        []string{"lib", ws.lib},
			wantContain: []string{"1 component(s)", "Gate", "Prefix:   U", "Signals:  2"},
		},
		{
			name:        "info",
			args:        []string{"info", "--library", ws.lib, ws.circuit},
			wantContain: []string{"Circuit: board", "U1 gate (Gate, default)", "Signals: 1/2 connected", "GND      [default] 1 connection(s)"},
		},
		{
			name: "erc",
			args: []string{"erc", "-l", ws.lib, ws.circuit},
			wantContain: []string{
				`[schematic error] Unplaced required symbols of component "U1": 1`,
				`[schematic warning] Unplaced optional symbols of component "U1": 1`,
				"4 message(s), 2 error(s)",
			},
		},
		{
			name:    "erc strict",
			args:    []string{"erc", "-l", ws.lib, "--strict", ws.circuit},
			wantErr: true,
		},
		{
			name:        "erc strict with ignore list",
			args:        []string{"erc", "-l", ws.lib, "--strict", "--ignore", ws.ignore, ws.circuit},
			wantContain: []string{"2 message(s), 0 error(s)"},
		},
		{
			name:    "missing library",
			args:    []string{"info", ws.circuit},
			wantErr: true,
		},
		{
			name:    "missing circuit",
			args:    []string{"info", "-l", ws.lib, filepath.Join(ws.lib, "none.lp")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err, out)
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestERCStrictError(t *testing.T) {
	ws := newWorkspace(t)
	_, err := execute(t, "erc", "-l", ws.lib, "--strict", ws.circuit)
	assert.True(t, errors.Is(err, errActiveErrors), "%v", err)
}

func TestERCStrictFromConfig(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.WriteFile("otc.yaml", []byte("strict: true\nlibraries: ["+ws.lib+"]\n"), 0o644))

	_, err := execute(t, "erc", ws.circuit)
	assert.True(t, errors.Is(err, errActiveErrors), "%v", err)
}

func TestInfoJSON(t *testing.T) {
	ws := newWorkspace(t)
	out, err := execute(t, "info", "--json", "-l", ws.lib, ws.circuit)
	require.NoError(t, err)

	var info CircuitInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, []string{"default"}, info.NetClasses)
	require.Len(t, info.Nets, 1)
	assert.Equal(t, []string{"U1.IN"}, info.Nets[0].Connected)
	require.Len(t, info.Components, 1)
	assert.Equal(t, ComponentUse{
		Name: "U1", Value: "U1 gate", Library: "Gate", Variant: "default", Signals: 2, Connected: 1,
	}, info.Components[0])
}

func TestERCJSON(t *testing.T) {
	ws := newWorkspace(t)
	out, err := execute(t, "erc", "--json", "-l", ws.lib, "--ignore", ws.ignore, ws.circuit)
	require.NoError(t, err)

	var messages []MessageInfo
	require.NoError(t, json.Unmarshal([]byte(out), &messages))
	keys := make([]string, 0, len(messages))
	for _, m := range messages {
		keys = append(keys, m.Key)
	}
	assert.ElementsMatch(t, []string{"ConnectedToLessThanTwoPins", "UnplacedOptionalSymbols"}, keys)
}
