package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

var applyCmd = &cobra.Command{
	Use:   "apply <record>",
	Short: "Configure the instrument from a record",
	Long: `Replay every setting in a YAML record on the configured instrument, in
dependency order, and report the fields that could not be configured.

Examples:
  smu --config lab.yaml apply scan.yaml
  smu apply -v scan.yaml                  # Simulator, log every command`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, logger, err := settings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tr, err := transport.Open(ctx, cfg.TransportSpec())
	if err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}
	ctl := newController(cfg, logger)
	defer release(ctl, tr)

	rep, err := applyRecord(ctx, ctl, args[0], tr)
	if err != nil {
		return err
	}
	if s := ctl.Session(); s != nil {
		fmt.Printf("%s\n\n", row("Instrument", s.Identity()))
	}
	fmt.Print(renderSkipped(rep))
	fmt.Print(renderReadiness(ctl.Readiness()))
	return nil
}
