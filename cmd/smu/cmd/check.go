package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

var showCommands bool

var checkCmd = &cobra.Command{
	Use:   "check <record>",
	Short: "Dry run a record against the simulator",
	Long: `Apply a record to the built-in simulator and show whether a run could
start. No instrument is contacted, whatever transport is configured.

Examples:
  smu check scan.yaml
  smu check --commands scan.yaml   # Also list every message unit sent`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&showCommands, "commands", false, "list the message units sent")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := settings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sim := transport.NewSim()
	ctl := newController(cfg, logger)
	rep, err := applyRecord(ctx, ctl, args[0], sim)
	if err != nil {
		return err
	}
	if showCommands {
		fmt.Println(titleStyle.Render("Commands"))
		for _, u := range sim.Units() {
			fmt.Println("  " + u)
		}
		fmt.Println()
	}
	fmt.Print(renderSkipped(rep))
	r := ctl.Readiness()
	fmt.Print(renderReadiness(r))
	if !r.Ready() {
		return fmt.Errorf("record %s is not ready to run: %s", args[0], r.Failed())
	}
	return nil
}
