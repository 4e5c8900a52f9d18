package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/OpenTraceLab/OpenTraceCircuit/internal/config"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/project"
)

var (
	// Global flags
	verbose   bool
	cfgFile   string
	libraries []string

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "otc",
	Short: "Circuit consistency checker",
	Long: `Load LibrePCB style circuits against a component library and report
electrical rule check messages.

Examples:
  otc lib library/                                # List library components
  otc info --library library/ board.lp            # Summarize a circuit
  otc erc --library library/ --strict board.lp    # Fail on rule check errors`,
	Version:           "0.9.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./otc.yaml or ~/.config/otc/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVarP(&libraries, "library", "l", nil,
		"library directory (repeatable, added to the configured ones)")
}

func setup(cmd *cobra.Command, _ []string) error {
	l, err := newLogger(verbose)
	if err != nil {
		return err
	}
	logger = l

	v := viper.New()
	if f := cmd.Flags().Lookup("strict"); f != nil {
		if err := v.BindPFlag("strict", f); err != nil {
			return err
		}
	}
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// loadLibrary reads the configured and the --library directories.
func loadLibrary(extra ...string) (*library.MemoryRepository, error) {
	dirs := append(append([]string(nil), cfg.Libraries...), libraries...)
	dirs = append(dirs, extra...)
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no library directory given (use --library or the libraries config key)")
	}
	repo := library.NewMemoryRepository()
	for _, dir := range dirs {
		if err := repo.LoadDir(dir); err != nil {
			return nil, err
		}
		logger.Debug("library loaded", zap.String("dir", dir), zap.Int("components", repo.Len()))
	}
	return repo, nil
}

// openProject loads the circuit file at path into a new project.
func openProject(path string) (*project.Project, error) {
	repo, err := loadLibrary()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p := project.New(name, repo,
		project.WithLogger(logger.Named("project")),
		project.WithSettings(cfg.Settings()))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open circuit: %w", err)
	}
	defer f.Close()
	if err := p.LoadCircuit(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
