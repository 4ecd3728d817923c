package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to a device in bootloader mode",
	Long:  "Resolves the device configuration and asks the bootloader for its version to verify the connection",
	Run: func(cmd *cobra.Command, args []string) {
		cat := loadCatalog()
		res := resolveDevice(cat)
		reportResolved(res)

		tool := newTool(res)
		fmt.Println("Testing device connection...")

		ping, err := tool.Ping(context.Background())
		if err != nil {
			failf("%v", err)
		}
		if ping.HasVersion {
			fmt.Printf("Device version: 0x%08X\n", ping.Version)
		}
		successf("Device connection successful")
	},
}
