package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/internal/config"
	"github.com/OpenTraceLab/OpenTraceSMU/internal/prompt"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/smu"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

var (
	// Global flags
	verbose bool
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "smu",
	Short: "Source-measure unit configuration and acquisition",
	Long: `Configure a Keithley 2400 series source-measure unit from a YAML record,
check that it is ready and acquire its trace buffer.

Examples:
  smu check scan.yaml                       # Dry run against the simulator
  smu params scan.yaml                      # Show the confirmed configuration
  smu run scan.yaml -o scan.txt             # Configure, run and save the data
  smu --config lab.yaml run scan.yaml --csv # Use a configured transport, comma output
  smu reshape raw.txt --elements VOLT,CURR  # Reshape a saved TRAC:DATA? reply`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every command and reply")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "settings file (YAML)")
}

// settings loads the tool configuration and a logger honoring --verbose.
func settings() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel()
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "smu", Level: level})
	return cfg, logger, nil
}

// newController builds a controller from the settings.
func newController(cfg *config.Config, logger *log.Logger) *smu.Controller {
	var p smu.Prompter = prompt.None{}
	if cfg.Prompt.Interactive {
		p = prompt.NewTerminal(os.Stdin, os.Stderr)
	}
	return smu.New(
		smu.WithLogger(logger),
		smu.WithPrompter(p),
		smu.WithMaxAttempts(cfg.Prompt.MaxAttempts),
		smu.WithDelimiter(cfg.Delimiter()),
	)
}

// applyRecord loads the record at path and replays it over tr.
func applyRecord(ctx context.Context, ctl *smu.Controller, path string, tr transport.Transport) (*smu.ApplyReport, error) {
	rec, err := config.LoadRecord(path)
	if err != nil {
		return nil, err
	}
	rep, err := ctl.Apply(ctx, *rec, tr)
	if err != nil {
		return rep, fmt.Errorf("apply %s: %w", path, err)
	}
	return rep, nil
}

// release closes the session, or tr alone when Connect never succeeded,
// and stops an interactive prompter.
func release(ctl *smu.Controller, tr transport.Transport) {
	if cl, ok := ctl.Prompter().(io.Closer); ok {
		_ = cl.Close()
	}
	if ctl.Session() == nil {
		_ = tr.Close()
		return
	}
	_ = ctl.Disconnect()
}
