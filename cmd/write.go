package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fcmtools/blhelper/pkg/blhost"
)

func init() {
	writeCmd.Flags().StringVarP(&writeFile, "file", "f", "", "firmware image to write")
	writeCmd.Flags().StringVarP(&writeAddr, "addr", "a", "", "start address (default NS flash base)")
	rootCmd.AddCommand(writeCmd)
}

var (
	writeFile string
	writeAddr string
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a firmware image to the external flash",
	Long: `Erases exactly enough flash for the firmware image and programs it at the
given address. The image is written to the NS flash base when no address is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if writeFile == "" {
			failf("write requires a firmware file (-f)")
		}
		info, err := os.Stat(writeFile)
		if err != nil {
			failf("firmware file does not exist: %s", writeFile)
		}

		cat := loadCatalog()
		res := resolveDevice(cat)
		reportResolved(res)

		start := blhost.Regions[0].StartAddr
		if writeAddr != "" {
			if start, err = parseAddr(writeAddr); err != nil {
				failf("%v", err)
			}
		}

		tool := newTool(res)
		ctx := context.Background()

		fmt.Printf("Using FCB file: %s\n", res.Flash.FCBFile)
		if err := tool.InitFlash(ctx, res.Flash.FCBPath); err != nil {
			failf("%v", err)
		}

		fmt.Printf("Firmware file: %s (%d bytes)\n", writeFile, info.Size())
		fmt.Printf("Starting firmware write to 0x%08X...\n", start)
		if err := tool.WriteImage(ctx, writeFile, start, eraseProgress); err != nil {
			failf("%v", err)
		}
		successf("Firmware write successful")
	},
}
