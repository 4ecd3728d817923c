package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fcmtools/blhelper/pkg/blhost"
	"github.com/fcmtools/blhelper/pkg/discover"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect modules waiting in bootloader mode",
	Long: `Scans USB for devices advertising the RW61x ROM bootloader identity.
When a serial port is given with -p the port is probed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if portFlag != "" {
			if err := discover.ProbePort(portFlag, baudFlag); err != nil {
				failf("%v", err)
			}
			successf("Serial port %s is usable", portFlag)
			return
		}

		devices, err := discover.Bootloader()
		if err != nil {
			failf("USB scan failed: %v", err)
		}
		if len(devices) == 0 {
			failf("no device in bootloader mode found (VID 0x%04X, PID 0x%04X)",
				blhost.USBVendorID, blhost.USBProductID)
		}

		for _, d := range devices {
			line := fmt.Sprintf("Found bootloader device via %s: %s", d.Transport, d.Path)
			if d.Serial != "" {
				line += fmt.Sprintf(" (serial %s)", d.Serial)
			}
			fmt.Println(line)
		}
		successf("%d device(s) in bootloader mode", len(devices))
	},
}
