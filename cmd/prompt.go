package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/fcmtools/blhelper/pkg/blhost"
	"github.com/fcmtools/blhelper/pkg/catalog"
)

// promptVariant asks the user to pick a variant of an ambiguous category
// and returns the chosen variant identifier
func promptVariant(cat *catalog.Catalog, amb *catalog.AmbiguousCategoryError) string {
	category := cat.Devices[amb.Category]

	items := make([]string, len(amb.Variants))
	for i, name := range amb.Variants {
		v := category.Variants[name]
		desc := v.Description
		if desc == "" {
			desc = name
		}
		items[i] = fmt.Sprintf("%-15s - %s (Flash: %s)",
			name, desc, strings.Join(v.FlashSizes(), ", "))
	}

	prompt := promptui.Select{
		Label: fmt.Sprintf("Device %s has multiple variants, please select", amb.Category),
		Items: items,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		failf("operation cancelled")
	}
	return amb.Variants[idx]
}

// promptRegion asks the user which flash region to operate on. The NS
// region is listed first and is the default.
func promptRegion() blhost.Region {
	items := make([]string, len(blhost.Regions))
	for i, r := range blhost.Regions {
		items[i] = fmt.Sprintf("%s (0x%08X)", r.Name, r.StartAddr)
	}

	prompt := promptui.Select{
		Label: "Select FLASH region",
		Items: items,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		failf("operation cancelled")
	}
	return blhost.Regions[idx]
}

// promptEraseSize asks how much flash to erase, offering the variant's
// configured sizes plus a full erase of the default geometry. It returns
// the byte count and the matching size label.
func promptEraseSize(variantID string, v *catalog.Variant) (int64, string) {
	sizes := v.FlashSizes()
	items := make([]string, 0, len(sizes)+1)
	for _, s := range sizes {
		n, _ := catalog.FlashSizeBytes(s)
		items = append(items, fmt.Sprintf("%s (%d bytes, 0x%X)", s, n, n))
	}
	items = append(items, "Full erase (entire FLASH)")

	prompt := promptui.Select{
		Label: fmt.Sprintf("Supported FLASH sizes for device %s", variantID),
		Items: items,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		failf("operation cancelled")
	}

	label := v.DefaultFlashSize() // full erase uses default geometry
	if idx < len(sizes) {
		label = sizes[idx]
	}
	n, _ := catalog.FlashSizeBytes(label)
	return n, label
}
