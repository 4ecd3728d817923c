package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/fcmtools/blhelper/pkg/catalog"
)

var (
	green   = color.New(color.FgGreen, color.Bold).SprintFunc()
	red     = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta).FprintFunc()
)

// successf reports a completed operation
func successf(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", green("✔"), fmt.Sprintf(format, args...))
}

// failf reports a fatal problem and exits
func failf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", red("✘"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// reportResolved prints the configuration a device model resolved to
func reportResolved(res *catalog.Resolved) {
	fmt.Printf("Device category:  %s\n", cyan(res.CategoryID))
	fmt.Printf("Device variant:   %s\n", cyan(res.VariantID))
	fmt.Printf("Interface:        %s\n", cyan(res.Interface))
	fmt.Printf("Flash:            %s (%s)\n", cyan(res.Flash.Size), res.Flash.FCBFile)
}
