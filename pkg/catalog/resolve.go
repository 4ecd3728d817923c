package catalog

import "os"

// Options carries the caller-supplied overrides for a resolution. Zero
// values mean "use the catalog defaults".
type Options struct {
	// Interface forces a connection interface. It must be in the
	// category's supported set.
	Interface string

	// FlashSize forces a flash geometry by size label. It must be one of
	// the variant's configured sizes.
	FlashSize string
}

// FlashChoice is the flash geometry a resolution settled on
type FlashChoice struct {
	Size    string // size label, e.g. "8M"
	Bytes   int64
	FCBFile string // file name within the asset directory
	FCBPath string // absolute path of the FCB blob
}

// Resolved is a fully determined device configuration ready to hand to the
// tool invocation layer
type Resolved struct {
	CategoryID string
	Category   *Category
	VariantID  string
	Variant    *Variant
	Interface  string
	Flash      FlashChoice
}

// Resolve maps a user-supplied device model to a concrete configuration.
//
// A model naming a variant resolves to that variant. A model naming a
// category resolves to its only variant, or fails with
// *AmbiguousCategoryError when the category has several; the caller picks
// from the candidate list and resolves again with the chosen variant name.
// Anything else fails with *UnknownDeviceError.
func (c *Catalog) Resolve(device string, opts Options) (*Resolved, error) {
	catName, varName := c.findDevice(device)
	if catName == "" {
		return nil, &UnknownDeviceError{Device: device, Supported: c.Models()}
	}
	cat := c.Devices[catName]

	if varName == "" {
		names := cat.VariantNames()
		if len(names) > 1 {
			return nil, &AmbiguousCategoryError{Category: catName, Variants: names}
		}
		varName = names[0]
	}
	v := cat.Variants[varName]

	iface, err := c.chooseInterface(catName, cat, opts.Interface)
	if err != nil {
		return nil, err
	}
	flash, err := c.chooseFlash(varName, v, opts.FlashSize)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		CategoryID: catName,
		Category:   cat,
		VariantID:  varName,
		Variant:    v,
		Interface:  iface,
		Flash:      flash,
	}, nil
}

// findDevice returns the owning category and, when the model names a
// variant, the variant identifier. A model present as both a variant and a
// category resolves as the variant.
func (c *Catalog) findDevice(device string) (category, variant string) {
	for catName, cat := range c.Devices {
		if _, ok := cat.Variants[device]; ok {
			return catName, device
		}
	}
	if _, ok := c.Devices[device]; ok {
		return device, ""
	}
	return "", ""
}

func (c *Catalog) chooseInterface(catName string, cat *Category, requested string) (string, error) {
	if requested != "" {
		if !cat.SupportsInterface(requested) {
			return "", &InvalidInterfaceError{
				Category:  catName,
				Interface: requested,
				Supported: cat.Interfaces,
			}
		}
		return requested, nil
	}
	if cat.DefaultInterface != "" {
		return cat.DefaultInterface, nil
	}
	if len(cat.Interfaces) == 1 {
		return cat.Interfaces[0], nil
	}
	return "", &InterfaceRequiredError{Category: catName, Supported: cat.Interfaces}
}

func (c *Catalog) chooseFlash(varName string, v *Variant, requested string) (FlashChoice, error) {
	size := requested
	if size == "" {
		size = v.DefaultFlashSize()
	}
	fc, ok := v.FlashConfigs[size]
	if !ok {
		return FlashChoice{}, &UnknownFlashSizeError{
			Variant:   varName,
			Size:      requested,
			Supported: v.FlashSizes(),
		}
	}

	path := c.FCBPath(fc.FCBFile)
	if _, err := os.Stat(path); err != nil {
		return FlashChoice{}, &MissingAssetError{FCBFile: fc.FCBFile, Path: path}
	}

	bytes, _ := FlashSizeBytes(size)
	return FlashChoice{
		Size:    size,
		Bytes:   bytes,
		FCBFile: fc.FCBFile,
		FCBPath: path,
	}, nil
}
