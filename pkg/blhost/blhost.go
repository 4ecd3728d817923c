package blhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Connection parameters the RW61x ROM bootloader advertises in ISP mode
const (
	USBVendorID  = 0x1FC9
	USBProductID = 0x0020

	DefaultBaudrate = 2000000

	// DefaultReadSize is how much is read when no size is requested
	DefaultReadSize = 0x200

	// MaxEraseBlock caps a single flash-erase-region invocation at 1MB
	MaxEraseBlock = 0x100000

	// fcbLoadAddr is the RAM staging address for the flash config block
	fcbLoadAddr = 0x2000F000

	commandTimeout = 60 * time.Second
)

// Region is an addressable window of the external QSPI flash
type Region struct {
	Key       string
	Name      string
	StartAddr uint32
	ReadAddr  uint32
}

// Regions lists the non-secure and secure aliases of the external flash.
// The NS region is first and is the default for unattended operation.
var Regions = []Region{
	{Key: "NS", Name: "External QSPI flash (NS)", StartAddr: 0x08000000, ReadAddr: 0x08000400},
	{Key: "S", Name: "External QSPI flash (S)", StartAddr: 0x18000000, ReadAddr: 0x18000400},
}

// RegionByKey looks a flash region up by its short key ("NS" or "S")
func RegionByKey(key string) (Region, bool) {
	for _, r := range Regions {
		if r.Key == key {
			return r, true
		}
	}
	return Region{}, false
}

// ConnParams describes how blhost should reach the device
type ConnParams struct {
	Interface string // catalog.InterfaceUSB or catalog.InterfaceUART
	Port      string // serial port, uart only
	Baudrate  int    // uart only, DefaultBaudrate when zero
}

// ErrPortRequired is returned when a uart connection has no serial port set
var ErrPortRequired = errors.New("UART interface requires a serial port (e.g. COM3 on Windows, /dev/ttyUSB0 on Linux)")

// Args renders the connection as blhost peripheral arguments
func (c ConnParams) Args() ([]string, error) {
	switch c.Interface {
	case "usb":
		return []string{"-u", fmt.Sprintf("0x%04X,0x%04X", USBVendorID, USBProductID)}, nil
	case "uart":
		if c.Port == "" {
			return nil, ErrPortRequired
		}
		baud := c.Baudrate
		if baud == 0 {
			baud = DefaultBaudrate
		}
		return []string{"-p", fmt.Sprintf("%s,%d", c.Port, baud)}, nil
	default:
		return nil, fmt.Errorf("unknown interface %q", c.Interface)
	}
}

func (c ConnParams) String() string {
	args, err := c.Args()
	if err != nil {
		return err.Error()
	}
	return strings.Join(args, " ")
}

// Result is the raw outcome of one external tool invocation
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes the external tool. Tests substitute a fake; the default
// shells out through os/exec.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

type logger interface {
	Printf(string, ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// Config adjusts a Tool beyond its connection parameters
type Config struct {
	// Executable overrides the blhost binary name, useful when it is not
	// on PATH
	Executable string

	// Runner substitutes the subprocess layer, used by tests
	Runner Runner

	// Logger receives every composed command line and its output
	Logger logger
}

// Tool drives one blhost connection. All device interaction goes through
// Run; higher level operations live in ops.go.
type Tool struct {
	exe    string
	conn   ConnParams
	runner Runner
	logger
}

// New returns a Tool for the given connection. cfg may be nil.
func New(conn ConnParams, cfg *Config) (*Tool, error) {
	// Fail on bad connection params up front rather than on first use
	if _, err := conn.Args(); err != nil {
		return nil, err
	}

	t := &Tool{
		exe:    "blhost",
		conn:   conn,
		runner: execRunner{},
		logger: discardLogger{},
	}
	if cfg != nil {
		if cfg.Executable != "" {
			t.exe = cfg.Executable
		}
		if cfg.Runner != nil {
			t.runner = cfg.Runner
		}
		if cfg.Logger != nil {
			t.logger = cfg.Logger
		}
	}
	return t, nil
}

// SetLogger replaces the tool's debug logger
func (t *Tool) SetLogger(l logger) {
	t.logger = l
}

// Conn returns the connection parameters the tool was built with
func (t *Tool) Conn() ConnParams {
	return t.conn
}

// Run invokes blhost with the tool's connection parameters and the given
// bootloader command. jsonOut adds the -j flag so blhost reports its result
// as JSON.
func (t *Tool) Run(ctx context.Context, jsonOut bool, command ...string) (*Result, error) {
	connArgs, err := t.conn.Args()
	if err != nil {
		return nil, err
	}

	args := append([]string{}, connArgs...)
	if jsonOut {
		args = append(args, "-j")
	}
	args = append(args, "--")
	args = append(args, command...)

	t.Printf("executing: %s %s", t.exe, strings.Join(args, " "))

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	res, err := t.runner.Run(ctx, t.exe, args...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("blhost command timed out: %s", strings.Join(command, " "))
	}
	if err != nil {
		return nil, fmt.Errorf("run blhost: %w", err)
	}

	if res.Stdout != "" {
		t.Printf("stdout: %s", res.Stdout)
	}
	if res.Stderr != "" {
		t.Printf("stderr: %s", res.Stderr)
	}
	t.Printf("exit code: %d", res.ExitCode)
	return res, nil
}
