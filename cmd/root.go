package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fcmtools/blhelper/pkg/blhost"
	"github.com/fcmtools/blhelper/pkg/catalog"
	"github.com/fcmtools/blhelper/pkg/discover"
)

// Device selection and connection flags shared by all commands
var (
	deviceModel string
	ifaceFlag   string
	portFlag    string
	baudFlag    int
	flashFlag   string
	debugFlag   bool

	configFlag    string
	fcbDirFlag    string
	outputDirFlag string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&deviceModel, "device", "d", "", "device model (category or variant, e.g. FCM363X or FCM363XAA)")
	pf.StringVarP(&ifaceFlag, "interface", "i", "", "connection interface (usb or uart, default from catalog)")
	pf.StringVarP(&portFlag, "port", "p", "", "serial port for UART (e.g. COM3 on Windows, /dev/ttyUSB0 on Linux)")
	pf.IntVarP(&baudFlag, "baudrate", "b", 0, "baud rate for UART (default 2000000)")
	pf.StringVar(&flashFlag, "flash-size", "", "flash size label (e.g. 8M, default from catalog)")
	pf.BoolVar(&debugFlag, "debug", false, "show the composed blhost commands and their output")
	pf.StringVar(&configFlag, "config", "", "path to the device catalog (default device_config.json next to the binary)")
	pf.StringVar(&fcbDirFlag, "fcb-dir", "", "directory holding FCB files (default fcb/ next to the binary)")
	pf.StringVar(&outputDirFlag, "output-dir", "", "directory for read output files (default output/ next to the binary)")
}

var rootCmd = &cobra.Command{
	Use:   "blhelper",
	Short: "Helper around the blhost bootloader tool for RW61x modules",
	Long: `blhelper wraps the NXP blhost executable to test, erase, write, and
read the external QSPI flash of RW61x based modules. Device models, their
connection interfaces, and flash geometries come from a JSON catalog shipped
alongside the binary.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// toolDir is where the catalog, FCB assets, and output directory live by
// default: next to the installed binary
func toolDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func catalogPath() string {
	if configFlag != "" {
		return configFlag
	}
	return filepath.Join(toolDir(), "device_config.json")
}

func fcbDir() string {
	if fcbDirFlag != "" {
		return fcbDirFlag
	}
	return filepath.Join(toolDir(), "fcb")
}

func outputDir() string {
	if outputDirFlag != "" {
		return outputDirFlag
	}
	return filepath.Join(toolDir(), "output")
}

func loadCatalog() *catalog.Catalog {
	cat, err := catalog.Load(catalogPath(), fcbDir())
	if err != nil {
		failf("%v", err)
	}
	return cat
}

// resolveDevice maps the -d flag to a concrete device configuration,
// prompting for a variant when the model names an ambiguous category
func resolveDevice(cat *catalog.Catalog) *catalog.Resolved {
	if deviceModel == "" {
		failf("a device model must be specified with -d")
	}

	opts := catalog.Options{Interface: ifaceFlag, FlashSize: flashFlag}
	res, err := cat.Resolve(deviceModel, opts)

	var amb *catalog.AmbiguousCategoryError
	if errors.As(err, &amb) {
		variant := promptVariant(cat, amb)
		res, err = cat.Resolve(variant, opts)
	}
	if err != nil {
		failf("%v", err)
	}
	return res
}

// newTool builds the blhost invocation layer for a resolved device. For
// UART connections the serial port is probed first so a wrong -p value
// fails with a clear message.
func newTool(res *catalog.Resolved) *blhost.Tool {
	if res.Interface == catalog.InterfaceUART && portFlag != "" {
		if err := discover.ProbePort(portFlag, baudFlag); err != nil {
			failf("%v", err)
		}
	}

	conn := blhost.ConnParams{
		Interface: res.Interface,
		Port:      portFlag,
		Baudrate:  baudFlag,
	}
	var cfg *blhost.Config
	if debugFlag {
		cfg = &blhost.Config{Logger: log.New(os.Stderr, "blhost: ", 0)}
	}

	tool, err := blhost.New(conn, cfg)
	if err != nil {
		failf("%v", err)
	}
	return tool
}
