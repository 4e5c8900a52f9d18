package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
)

var libJSON bool

// ComponentInfo is the structured summary of a library component.
type ComponentInfo struct {
	UUID          string   `json:"uuid"`
	Name          string   `json:"name"`
	Prefix        string   `json:"prefix,omitempty"`
	SchematicOnly bool     `json:"schematic_only,omitempty"`
	Signals       int      `json:"signals"`
	Variants      []string `json:"variants"`
}

var libCmd = &cobra.Command{
	Use:   "lib [dir...]",
	Short: "List the components of a library",
	Long: `Load every component definition (*.yaml, *.yml) below the given
directories and the configured library directories and list them.

Examples:
  otc lib library/
  otc lib --json library/ vendor/`,
	RunE: runLib,
}

func init() {
	rootCmd.AddCommand(libCmd)
	libCmd.Flags().BoolVar(&libJSON, "json", false, "output in JSON format")
}

func runLib(cmd *cobra.Command, args []string) error {
	repo, err := loadLibrary(args...)
	if err != nil {
		return err
	}
	infos := make([]ComponentInfo, 0, repo.Len())
	for _, c := range repo.Components() {
		infos = append(infos, componentInfo(c))
	}

	out := cmd.OutOrStdout()
	if libJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	printComponents(out, infos)
	return nil
}

func componentInfo(c *library.Component) ComponentInfo {
	info := ComponentInfo{
		UUID:          c.UUID().String(),
		Name:          c.Name(),
		Prefix:        c.Prefix(cfg.NormOrder),
		SchematicOnly: c.IsSchematicOnly(),
		Signals:       c.SignalCount(),
	}
	for _, v := range c.SymbolVariants() {
		info.Variants = append(info.Variants, v.Name())
	}
	return info
}

func printComponents(w io.Writer, infos []ComponentInfo) {
	fmt.Fprintf(w, "%d component(s)\n\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(w, "%s  %s\n", info.UUID, info.Name)
		if info.Prefix != "" {
			fmt.Fprintf(w, "  Prefix:   %s\n", info.Prefix)
		}
		fmt.Fprintf(w, "  Signals:  %d\n", info.Signals)
		fmt.Fprintf(w, "  Variants: %d\n", len(info.Variants))
		if verbose {
			for _, v := range info.Variants {
				fmt.Fprintf(w, "    - %s\n", v)
			}
		}
		if info.SchematicOnly {
			fmt.Fprintf(w, "  Schematic only\n")
		}
	}
}
