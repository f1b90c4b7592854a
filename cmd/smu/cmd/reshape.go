package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/buffer"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/report"
)

var (
	reshapeCols     int
	reshapeElements []string
	reshapeCSV      bool
	reshapeColumn   int
)

var reshapeCmd = &cobra.Command{
	Use:   "reshape <file|->",
	Short: "Reshape a saved trace buffer reply",
	Long: `Turn a flat comma separated TRAC:DATA? reply into rows. The column count
comes from --cols, or from the element list given with --elements, which
also adds a header line.

Examples:
  smu reshape raw.txt --cols 3
  smu reshape raw.txt --elements VOLT,CURR,TIME --csv
  smu reshape raw.txt --elements VOLT,CURR --column 1   # Currents only`,
	Args: cobra.ExactArgs(1),
	RunE: runReshape,
}

func init() {
	rootCmd.AddCommand(reshapeCmd)

	reshapeCmd.Flags().IntVar(&reshapeCols, "cols", 0, "values per reading")
	reshapeCmd.Flags().StringSliceVar(&reshapeElements, "elements", nil, "buffer elements (e.g. VOLT,CURR,TIME)")
	reshapeCmd.Flags().BoolVar(&reshapeCSV, "csv", false, "comma separated output")
	reshapeCmd.Flags().IntVar(&reshapeColumn, "column", -1, "print only this column (0 based)")
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func runReshape(cmd *cobra.Command, args []string) error {
	cols := reshapeCols
	if len(reshapeElements) > 0 {
		if cols != 0 && cols != len(reshapeElements) {
			return fmt.Errorf("--cols (%d) must match the %d elements", cols, len(reshapeElements))
		}
		cols = len(reshapeElements)
	}
	if cols <= 0 {
		return fmt.Errorf("either --cols or --elements is required")
	}

	data, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	tbl, err := buffer.ReshapeText(strings.TrimSpace(string(data)), cols)
	if err != nil {
		return err
	}

	if reshapeColumn >= 0 {
		if reshapeColumn >= cols {
			return fmt.Errorf("--column %d out of range for %d columns", reshapeColumn, cols)
		}
		for _, v := range tbl.Column(reshapeColumn) {
			fmt.Println(v)
		}
		return nil
	}

	delim := report.Tab
	if reshapeCSV {
		delim = report.Comma
	}
	if len(reshapeElements) > 0 {
		fmt.Print(string(report.Document(report.Header(reshapeElements, delim), tbl.Text(delim))))
		return nil
	}
	if body := tbl.Text(delim); body != "" {
		fmt.Println(body)
	}
	return nil
}
