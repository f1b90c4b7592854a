package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/report"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/smu"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

var (
	outputPath string
	csvOutput  bool
	compress   bool
	clearFirst bool
)

var runCmd = &cobra.Command{
	Use:   "run <record>",
	Short: "Configure, run and save a measurement",
	Long: `Apply a record, run the measurement and save the reshaped trace buffer.
The run waits for the instrument without a timeout. Press Ctrl-C to abort:
the output is switched off and no data is saved.

Examples:
  smu run scan.yaml                         # Print the data
  smu run scan.yaml -o scan.txt             # Tab separated file + scan.txt.b3
  smu run scan.yaml -o scan.csv --csv       # Comma separated
  smu run scan.yaml -o scan.txt --compress  # zstd, written as scan.txt.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "report file (stdout when empty)")
	runCmd.Flags().BoolVar(&csvOutput, "csv", false, "comma separated report")
	runCmd.Flags().BoolVar(&compress, "compress", false, "zstd compress the report file")
	runCmd.Flags().BoolVar(&clearFirst, "clear", false, "clear the instrument trace buffer before running")
}

// stdoutSink prints the report.
type stdoutSink struct{}

func (stdoutSink) Write(header, body string) error {
	_, err := os.Stdout.Write(report.Document(header, body))
	return err
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := settings()
	if err != nil {
		return err
	}
	if csvOutput {
		cfg.Report.Delimiter = "comma"
	}
	if compress {
		cfg.Report.Compress = true
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
	if r := ctl.Readiness(); !r.Ready() {
		fmt.Fprint(os.Stderr, renderSkipped(rep))
		fmt.Fprint(os.Stderr, renderReadiness(r))
		return &smu.ReadinessError{Readiness: r}
	}
	if clearFirst {
		if err := ctl.ClearData(ctx); err != nil {
			return err
		}
	}

	var sink report.Sink = stdoutSink{}
	var file *report.FileSink
	if outputPath != "" {
		file = &report.FileSink{Path: outputPath, Compress: cfg.Report.Compress, Digest: cfg.Report.Digest}
		sink = file
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sig:
			logger.Warn("interrupt, aborting run")
			if err := ctl.Abort(context.Background()); err != nil {
				logger.Error("abort failed", "err", err)
			}
		case <-done:
		}
	}()

	res, err := ctl.Run(ctx, sink)
	if errors.Is(err, smu.ErrBufferNotCleared) {
		return fmt.Errorf("%w (rerun with --clear)", err)
	}
	if err != nil {
		return err
	}
	if file != nil {
		logger.Info("report saved", "file", file.Target(), "rows", res.Table.Len())
	}
	return nil
}
