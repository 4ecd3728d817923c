package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Interface identifiers a category may list in its "interfaces" set
const (
	InterfaceUSB  = "usb"
	InterfaceUART = "uart"
)

// flashSizeBytes maps the size labels allowed in flash_configs to their
// capacity in bytes
var flashSizeBytes = map[string]int64{
	"4M":  0x400000,
	"8M":  0x800000,
	"16M": 0x1000000,
	"32M": 0x2000000,
	"64M": 0x4000000,
}

// FlashSizeBytes returns the capacity in bytes for a size label such as "8M".
// The second return is false for labels not present in the catalog schema.
func FlashSizeBytes(label string) (int64, bool) {
	n, ok := flashSizeBytes[label]
	return n, ok
}

// FlashSizeLabel returns the size label for an exact byte capacity, if one exists.
func FlashSizeLabel(size int64) (string, bool) {
	for label, n := range flashSizeBytes {
		if n == size {
			return label, true
		}
	}
	return "", false
}

// FlashConfig ties a flash geometry to the FCB blob the bootloader needs
// before it can talk to that chip
type FlashConfig struct {
	FCBFile string `json:"fcb_file"`
	Default bool   `json:"default"`
}

// Variant is a specific orderable part number within a device category
type Variant struct {
	Description  string                  `json:"description"`
	FlashConfigs map[string]*FlashConfig `json:"flash_configs"`
}

// FlashSizes returns the variant's size labels in sorted order
func (v *Variant) FlashSizes() []string {
	sizes := make([]string, 0, len(v.FlashConfigs))
	for s := range v.FlashConfigs {
		sizes = append(sizes, s)
	}
	sort.Slice(sizes, func(i, j int) bool {
		return flashSizeBytes[sizes[i]] < flashSizeBytes[sizes[j]]
	})
	return sizes
}

// DefaultFlashSize returns the size label whose config is marked default.
// Load guarantees exactly one such entry exists.
func (v *Variant) DefaultFlashSize() string {
	for size, fc := range v.FlashConfigs {
		if fc.Default {
			return size
		}
	}
	return ""
}

// Category is a device family grouping one or more variants that share
// a connection interface set
type Category struct {
	Description      string              `json:"description"`
	Interfaces       []string            `json:"interfaces"`
	DefaultInterface string              `json:"default_interface,omitempty"`
	Variants         map[string]*Variant `json:"variants"`
}

// SupportsInterface reports whether iface is in the category's interface set
func (c *Category) SupportsInterface(iface string) bool {
	for _, i := range c.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

// VariantNames returns the category's variant identifiers in sorted order
func (c *Category) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for name := range c.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog is the full device configuration file plus the directory holding
// the FCB blobs it references. It is immutable once loaded.
type Catalog struct {
	Devices map[string]*Category `json:"devices"`

	fcbDir string
}

// Load reads and validates the device catalog at path. A catalog violating
// any schema invariant is rejected here rather than deep in a later lookup.
// FCB files referenced by the catalog are resolved against fcbDir; their
// existence is checked when a device is resolved, so listing devices and
// testing connections work before any assets are fetched.
func Load(path, fcbDir string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open device catalog: %w", err)
	}
	defer f.Close()

	cat := &Catalog{fcbDir: fcbDir}
	dec := json.NewDecoder(f)
	if err := dec.Decode(cat); err != nil {
		return nil, fmt.Errorf("parse device catalog %s: %w", path, err)
	}
	if err := cat.validate(); err != nil {
		return nil, fmt.Errorf("invalid device catalog %s: %w", path, err)
	}
	return cat, nil
}

// FCBDir returns the asset directory the catalog was loaded against
func (c *Catalog) FCBDir() string {
	return c.fcbDir
}

// FCBPath returns the absolute path of an FCB file within the asset directory
func (c *Catalog) FCBPath(name string) string {
	return filepath.Join(c.fcbDir, name)
}

// CategoryNames returns all category identifiers in sorted order
func (c *Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.Devices))
	for name := range c.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns every name a user may pass as a device model: all
// categories followed by all variants, each set sorted
func (c *Catalog) Models() []string {
	models := c.CategoryNames()
	var variants []string
	for _, cat := range c.Devices {
		for name := range cat.Variants {
			if _, dup := c.Devices[name]; dup {
				continue
			}
			variants = append(variants, name)
		}
	}
	sort.Strings(variants)
	return append(models, variants...)
}

func (c *Catalog) validate() error {
	if len(c.Devices) == 0 {
		return fmt.Errorf("no devices defined")
	}

	seen := map[string]string{} // variant name -> owning category
	for _, catName := range c.CategoryNames() {
		cat := c.Devices[catName]

		if len(cat.Interfaces) == 0 {
			return fmt.Errorf("category %s: no interfaces defined", catName)
		}
		for _, iface := range cat.Interfaces {
			if iface != InterfaceUSB && iface != InterfaceUART {
				return fmt.Errorf("category %s: unknown interface %q", catName, iface)
			}
		}
		if cat.DefaultInterface != "" && !cat.SupportsInterface(cat.DefaultInterface) {
			return fmt.Errorf("category %s: default interface %q not in interface set",
				catName, cat.DefaultInterface)
		}
		if len(cat.Variants) == 0 {
			return fmt.Errorf("category %s: no variants defined", catName)
		}

		for _, varName := range cat.VariantNames() {
			v := cat.Variants[varName]

			if owner, dup := seen[varName]; dup {
				return fmt.Errorf("variant %s defined in both %s and %s", varName, owner, catName)
			}
			seen[varName] = catName

			if len(v.FlashConfigs) == 0 {
				return fmt.Errorf("variant %s: no flash configs defined", varName)
			}
			defaults := 0
			for size, fc := range v.FlashConfigs {
				if _, ok := flashSizeBytes[size]; !ok {
					return fmt.Errorf("variant %s: unknown flash size %q", varName, size)
				}
				if fc.FCBFile == "" {
					return fmt.Errorf("variant %s: flash size %s has no fcb_file", varName, size)
				}
				if fc.Default {
					defaults++
				}
			}
			if defaults != 1 {
				return fmt.Errorf("variant %s: %d flash configs marked default, want exactly 1",
					varName, defaults)
			}
		}
	}
	return nil
}
