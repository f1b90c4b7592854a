package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

var paramsCmd = &cobra.Command{
	Use:   "params <record>",
	Short: "Show the configuration confirmed for a record",
	Long: `Apply a record on the configured instrument and list every value the
instrument confirmed. Unset entries were rejected or never given.`,
	Args: cobra.ExactArgs(1),
	RunE: runParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

func runParams(cmd *cobra.Command, args []string) error {
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

	if _, err := applyRecord(ctx, ctl, args[0], tr); err != nil {
		return err
	}
	fmt.Print(renderParams(ctl.Params(), ctl.SweepState()))
	return nil
}
