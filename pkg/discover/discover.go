// Package discover locates modules waiting in bootloader mode before any
// blhost invocation is attempted. USB devices are found by their ROM
// bootloader HID interface; UART connections are probed by opening the
// serial port.
package discover

import (
	"fmt"

	"github.com/google/gousb"
	"github.com/karalabe/hid"
	"github.com/pkg/term"

	"github.com/fcmtools/blhelper/pkg/blhost"
)

// Device is one attached module found in bootloader mode
type Device struct {
	Transport string // "hid" or "usb"
	Path      string // platform device path
	Serial    string
}

// Bootloader scans for devices advertising the RW61x ROM bootloader
// USB identity. The HID layer is checked first since that is the interface
// blhost actually uses; a raw USB scan catches devices whose HID interface
// could not be enumerated (missing permissions, kernel driver bound).
func Bootloader() ([]Device, error) {
	devices := enumerateHID()
	if len(devices) > 0 {
		return devices, nil
	}
	return enumerateUSB()
}

func enumerateHID() []Device {
	var devices []Device
	if !hid.Supported() {
		return nil
	}
	for _, info := range hid.Enumerate(blhost.USBVendorID, blhost.USBProductID) {
		devices = append(devices, Device{
			Transport: "hid",
			Path:      info.Path,
			Serial:    info.Serial,
		})
	}
	return devices
}

func enumerateUSB() ([]Device, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var devices []Device
	opened, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == blhost.USBVendorID &&
			uint16(desc.Product) == blhost.USBProductID
	})
	for _, d := range opened {
		devices = append(devices, Device{
			Transport: "usb",
			Path:      fmt.Sprintf("bus %d addr %d", d.Desc.Bus, d.Desc.Address),
		})
		d.Close()
	}
	// OpenDevices returns the devices it did open alongside any error
	if len(devices) > 0 {
		return devices, nil
	}
	return nil, err
}

// ProbePort verifies a serial port exists and can be opened at the given
// baud rate, so a bad -p value fails here instead of deep inside blhost
func ProbePort(port string, baud int) error {
	if baud == 0 {
		baud = blhost.DefaultBaudrate
	}
	t, err := term.Open(port, term.Speed(baud), term.RawMode)
	if err != nil {
		return fmt.Errorf("cannot open serial port %s: %w", port, err)
	}
	return t.Close()
}
