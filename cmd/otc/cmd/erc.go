package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
)

// errActiveErrors is returned by erc --strict when error messages are active.
var errActiveErrors = errors.New("erc: active error messages")

var (
	ercIgnore string
	ercJSON   bool
)

// MessageInfo represents an active rule check message
type MessageInfo struct {
	Severity string `json:"severity"`
	Owner    string `json:"owner"`
	Key      string `json:"key"`
	Text     string `json:"text"`
}

var ercCmd = &cobra.Command{
	Use:   "erc <circuit>",
	Short: "Print the active electrical rule check messages of a circuit",
	Long: `Load a circuit file, apply an optional ignore list and print every
visible, not ignored rule check message.

With --strict the command fails when an error message is active.

Examples:
  otc erc --library library/ board.lp
  otc erc --library library/ --ignore erc.lp --strict board.lp`,
	Args: cobra.ExactArgs(1),
	RunE: runERC,
}

func init() {
	rootCmd.AddCommand(ercCmd)
	ercCmd.Flags().StringVarP(&ercIgnore, "ignore", "i", "", "ERC ignore list file")
	ercCmd.Flags().Bool("strict", false, "exit non-zero on active error messages")
	ercCmd.Flags().BoolVar(&ercJSON, "json", false, "output in JSON format")
}

func runERC(cmd *cobra.Command, args []string) error {
	p, err := openProject(args[0])
	if err != nil {
		return err
	}
	ignore := ercIgnore
	if ignore == "" {
		ignore = cfg.IgnoreFile
	}
	if ignore != "" {
		if err := readIgnoreList(p.ERC(), ignore); err != nil {
			return err
		}
	}

	var messages []MessageInfo
	errorCount := 0
	for _, m := range p.ERC().Active() {
		if m.Severity().IsError() {
			errorCount++
		}
		messages = append(messages, MessageInfo{
			Severity: m.Severity().String(),
			Owner:    string(m.OwnerKind()) + " " + m.OwnerKey(),
			Key:      m.MsgKey(),
			Text:     m.Text(),
		})
	}
	logger.Debug("erc done", zap.Int("active", len(messages)), zap.Int("errors", errorCount))

	out := cmd.OutOrStdout()
	if ercJSON {
		if messages == nil {
			messages = []MessageInfo{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(messages); err != nil {
			return err
		}
	} else {
		printMessages(out, messages, errorCount)
	}

	if cfg.Strict && errorCount > 0 {
		return fmt.Errorf("%w: %d", errActiveErrors, errorCount)
	}
	return nil
}

func readIgnoreList(r *erc.Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open ignore list: %w", err)
	}
	defer f.Close()
	if err := r.ReadIgnored(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func printMessages(w io.Writer, messages []MessageInfo, errorCount int) {
	for _, m := range messages {
		fmt.Fprintf(w, "[%s] %s\n", m.Severity, m.Text)
		if verbose {
			fmt.Fprintf(w, "  %s / %s\n", m.Owner, m.Key)
		}
	}
	fmt.Fprintf(w, "%d message(s), %d error(s)\n", len(messages), errorCount)
}
