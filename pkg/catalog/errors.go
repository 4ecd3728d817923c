package catalog

import (
	"fmt"
	"strings"
)

// UnknownDeviceError is returned when a device model matches neither a
// category nor a variant
type UnknownDeviceError struct {
	Device    string
	Supported []string
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("unsupported device model %q (supported: %s)",
		e.Device, strings.Join(e.Supported, ", "))
}

// AmbiguousCategoryError is returned when a category with several variants
// is resolved by its category name. The caller is expected to pick one of
// Variants and resolve again.
type AmbiguousCategoryError struct {
	Category string
	Variants []string
}

func (e *AmbiguousCategoryError) Error() string {
	return fmt.Sprintf("device %s has multiple variants: %s",
		e.Category, strings.Join(e.Variants, ", "))
}

// InvalidInterfaceError is returned when an explicitly requested interface
// is not in the category's supported set
type InvalidInterfaceError struct {
	Category  string
	Interface string
	Supported []string
}

func (e *InvalidInterfaceError) Error() string {
	return fmt.Sprintf("device %s does not support the %s interface (supported: %s)",
		e.Category, strings.ToUpper(e.Interface), strings.Join(e.Supported, ", "))
}

// InterfaceRequiredError is returned when no interface was requested and the
// category offers several with no default
type InterfaceRequiredError struct {
	Category  string
	Supported []string
}

func (e *InterfaceRequiredError) Error() string {
	return fmt.Sprintf("device %s has multiple interfaces (%s), one must be specified",
		e.Category, strings.Join(e.Supported, ", "))
}

// UnknownFlashSizeError is returned when an explicitly requested flash size
// label is not configured for the resolved variant
type UnknownFlashSizeError struct {
	Variant   string
	Size      string
	Supported []string
}

func (e *UnknownFlashSizeError) Error() string {
	return fmt.Sprintf("variant %s has no %s flash config (supported: %s)",
		e.Variant, e.Size, strings.Join(e.Supported, ", "))
}

// MissingAssetError is returned when a flash config references an FCB file
// absent from the asset directory
type MissingAssetError struct {
	FCBFile string
	Path    string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("FCB file %s does not exist: %s", e.FCBFile, e.Path)
}
