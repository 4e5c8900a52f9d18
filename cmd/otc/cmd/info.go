package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/project"
)

var infoJSON bool

// CircuitInfo represents structured circuit information
type CircuitInfo struct {
	Name       string         `json:"name"`
	NetClasses []string       `json:"net_classes"`
	Nets       []NetInfo      `json:"nets"`
	Components []ComponentUse `json:"components"`
}

// NetInfo represents a net signal and its connections
type NetInfo struct {
	Name      string   `json:"name"`
	NetClass  string   `json:"net_class"`
	AutoName  bool     `json:"auto_name,omitempty"`
	Connected []string `json:"connected"`
}

// ComponentUse represents a component instance
type ComponentUse struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Library   string `json:"library"`
	Variant   string `json:"variant"`
	Signals   int    `json:"signals"`
	Connected int    `json:"connected"`
}

var infoCmd = &cobra.Command{
	Use:   "info <circuit>",
	Short: "Summarize the nets and components of a circuit",
	Long: `Load a circuit file against the library and print its net classes,
net signals and component instances.

Examples:
  otc info --library library/ board.lp
  otc info --library library/ --json board.lp`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output in JSON format")
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, err := openProject(args[0])
	if err != nil {
		return err
	}
	info := buildCircuitInfo(p)

	out := cmd.OutOrStdout()
	if infoJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	printCircuit(out, info)
	return nil
}

func buildCircuitInfo(p *project.Project) *CircuitInfo {
	c := p.Circuit()
	info := &CircuitInfo{
		Name:       p.Name(),
		NetClasses: []string{},
		Nets:       []NetInfo{},
		Components: []ComponentUse{},
	}
	for _, nc := range c.NetClasses() {
		info.NetClasses = append(info.NetClasses, nc.Name())
	}
	for _, ns := range c.NetSignals() {
		net := NetInfo{
			Name:      ns.Name(),
			NetClass:  ns.NetClass().Name(),
			AutoName:  ns.HasAutoName(),
			Connected: []string{},
		}
		for _, sig := range ns.ComponentSignals() {
			net.Connected = append(net.Connected,
				sig.ComponentInstance().Name()+"."+sig.LibSignal().Name())
		}
		info.Nets = append(info.Nets, net)
	}
	for _, cmp := range c.ComponentInstances() {
		use := ComponentUse{
			Name:    cmp.Name(),
			Value:   cmp.Value(true),
			Library: cmp.LibComponent().Name(),
			Variant: cmp.SymbolVariant().Name(),
		}
		for _, sig := range cmp.SignalInstances() {
			use.Signals++
			if sig.NetSignal() != nil {
				use.Connected++
			}
		}
		info.Components = append(info.Components, use)
	}
	return info
}

func printCircuit(w io.Writer, info *CircuitInfo) {
	fmt.Fprintf(w, "Circuit: %s\n", info.Name)
	fmt.Fprintf(w, "  Net classes: %d\n", len(info.NetClasses))
	fmt.Fprintf(w, "  Nets:        %d\n", len(info.Nets))
	fmt.Fprintf(w, "  Components:  %d\n\n", len(info.Components))

	for _, cmp := range info.Components {
		fmt.Fprintf(w, "%-8s %s (%s, %s)\n", cmp.Name, cmp.Value, cmp.Library, cmp.Variant)
		fmt.Fprintf(w, "  Signals: %d/%d connected\n", cmp.Connected, cmp.Signals)
	}
	if len(info.Components) > 0 {
		fmt.Fprintln(w)
	}
	for _, net := range info.Nets {
		fmt.Fprintf(w, "%-8s [%s] %d connection(s)\n", net.Name, net.NetClass, len(net.Connected))
		if verbose {
			for _, c := range net.Connected {
				fmt.Fprintf(w, "  - %s\n", c)
			}
		}
	}
}
