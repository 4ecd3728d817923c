package cmd

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fcmtools/blhelper/pkg/blhost"
)

func init() {
	readCmd.Flags().StringVarP(&readAddr, "addr", "a", "", "start address (default NS flash read base)")
	readCmd.Flags().StringVarP(&readSize, "size", "s", "", "number of bytes to read (default 0x200)")
	readCmd.Flags().StringVarP(&readOut, "output", "o", "", "output file (default generated under the output directory)")
	rootCmd.AddCommand(readCmd)
}

var (
	readAddr string
	readSize string
	readOut  string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a region of the external flash to a file",
	Long:  "Reads flash contents through the bootloader and stores them as a binary file",
	Run: func(cmd *cobra.Command, args []string) {
		cat := loadCatalog()
		res := resolveDevice(cat)
		reportResolved(res)

		start := blhost.Regions[0].ReadAddr
		var err error
		if readAddr != "" {
			if start, err = parseAddr(readAddr); err != nil {
				failf("%v", err)
			}
		}

		var size int64 = blhost.DefaultReadSize
		if readSize != "" {
			if size, err = parseSize(readSize); err != nil {
				failf("%v", err)
			}
		}

		out := readOut
		if out == "" {
			if err := os.MkdirAll(outputDir(), 0755); err != nil {
				failf("cannot create output directory: %v", err)
			}
			name := fmt.Sprintf("%s_0x%08X_%s.bin",
				res.VariantID, start, time.Now().Format("20060102_150405"))
			out = filepath.Join(outputDir(), name)
		}

		tool := newTool(res)
		ctx := context.Background()

		fmt.Printf("Using FCB file: %s\n", res.Flash.FCBFile)
		if err := tool.InitFlash(ctx, res.Flash.FCBPath); err != nil {
			failf("%v", err)
		}

		fmt.Printf("Reading FLASH: 0x%08X, size: 0x%X\n", start, size)
		data, err := tool.ReadFlash(ctx, start, size)
		if err != nil {
			failf("%v", err)
		}

		if err := ioutil.WriteFile(out, data, 0644); err != nil {
			failf("cannot write output file: %v", err)
		}
		successf("Saved %d bytes to %s", len(data), out)
	},
}
