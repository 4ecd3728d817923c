package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fcmtools/blhelper/pkg/catalog"
)

func init() {
	eraseCmd.Flags().StringVarP(&eraseAddr, "addr", "a", "", "start address (e.g. 0x08000000, prompted when omitted)")
	eraseCmd.Flags().StringVarP(&eraseSize, "size", "s", "", "number of bytes to erase (e.g. 0x800000, prompted when omitted)")
	rootCmd.AddCommand(eraseCmd)
}

var (
	eraseAddr string
	eraseSize string
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a region of the external flash",
	Long: `Erases a region of the external QSPI flash. When no address or size is
given the flash region and size are selected interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		cat := loadCatalog()
		res := resolveDevice(cat)
		reportResolved(res)

		var start uint32
		if eraseAddr == "" {
			region := promptRegion()
			start = region.StartAddr
			fmt.Printf("Selected FLASH region: %s (0x%08X)\n", region.Name, start)
		} else {
			var err error
			if start, err = parseAddr(eraseAddr); err != nil {
				failf("%v", err)
			}
		}

		var (
			size  int64
			label string
		)
		switch {
		case eraseSize != "":
			var err error
			if size, err = parseSize(eraseSize); err != nil {
				failf("%v", err)
			}
			// keep the FCB matched to the geometry when the size happens
			// to be a full chip capacity
			label, _ = catalog.FlashSizeLabel(size)
		case len(res.Variant.FlashSizes()) == 1:
			label = res.Variant.FlashSizes()[0]
			size, _ = catalog.FlashSizeBytes(label)
			fmt.Printf("Auto-selected FLASH size: %s (%d bytes), full erase\n", label, size)
		default:
			size, label = promptEraseSize(res.VariantID, res.Variant)
		}

		flash := res.Flash
		if label != "" && label != flash.Size {
			withSize, err := cat.Resolve(res.VariantID, catalog.Options{
				Interface: res.Interface,
				FlashSize: label,
			})
			if err != nil {
				failf("%v", err)
			}
			flash = withSize.Flash
		}

		tool := newTool(res)
		ctx := context.Background()

		fmt.Printf("Using FCB file: %s\n", flash.FCBFile)
		if err := tool.InitFlash(ctx, flash.FCBPath); err != nil {
			failf("%v", err)
		}

		fmt.Printf("Starting FLASH erase: 0x%08X, size: %d bytes\n", start, size)
		err := tool.EraseRegion(ctx, start, size, eraseProgress)
		if err != nil {
			failf("%v", err)
		}
		successf("FLASH erase completed")
	},
}

func eraseProgress(done, total int64) {
	fmt.Printf("Erase progress: %.1f%%\n", float64(done)/float64(total)*100)
}
