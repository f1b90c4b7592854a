package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

var deviceVendor string

// enumerateDevices lists USBTMC instruments; tests replace it.
var enumerateDevices = transport.EnumerateUSBTMC

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List USBTMC instruments on this host",
	Long: `Scan the USB bus for USBTMC instruments from one vendor and print their
VID:PID pairs. Use a listed pair as transport.address with the usbtmc kind.

Examples:
  smu devices
  smu devices --vid 0x0957   # Another vendor`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.Flags().StringVar(&deviceVendor, "vid", "05E6", "vendor id in hex")
}

func runDevices(cmd *cobra.Command, args []string) error {
	vid, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(deviceVendor), "0x"), 16, 16)
	if err != nil {
		return fmt.Errorf("invalid vendor id %q: %w", deviceVendor, err)
	}
	infos, err := enumerateDevices(uint16(vid))
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	fmt.Print(formatDevices(infos))
	return nil
}

func formatDevices(infos []transport.DeviceInfo) string {
	if len(infos) == 0 {
		return "No instruments found.\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("USBTMC instruments") + "\n")
	for _, d := range infos {
		desc := strings.TrimSpace(d.Description)
		if desc == "" {
			desc = "unknown"
		}
		fmt.Fprintf(&b, "  - %s (VID:PID %04X:%04X", desc, d.VID, d.PID)
		if d.SerialNumber != "" {
			fmt.Fprintf(&b, ", serial %s", d.SerialNumber)
		}
		b.WriteString(")\n")
	}
	return b.String()
}
