package blhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts results for successive invocations and records every
// composed command line
type fakeRunner struct {
	calls   [][]string
	results []*Result
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &Result{}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func newFakeTool(t *testing.T, conn ConnParams, results ...*Result) (*Tool, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{results: results}
	tool, err := New(conn, &Config{Runner: runner})
	require.NoError(t, err)
	return tool, runner
}

func usbConn() ConnParams {
	return ConnParams{Interface: "usb"}
}

func TestConnParamsUSB(t *testing.T) {
	args, err := usbConn().Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-u", "0x1FC9,0x0020"}, args)
}

func TestConnParamsUART(t *testing.T) {
	args, err := ConnParams{Interface: "uart", Port: "/dev/ttyUSB0"}.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-p", "/dev/ttyUSB0,2000000"}, args)

	args, err = ConnParams{Interface: "uart", Port: "COM3", Baudrate: 115200}.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-p", "COM3,115200"}, args)
}

func TestConnParamsUARTWithoutPort(t *testing.T) {
	_, err := ConnParams{Interface: "uart"}.Args()
	assert.ErrorIs(t, err, ErrPortRequired)
}

func TestConnParamsUnknownInterface(t *testing.T) {
	_, err := ConnParams{Interface: "spi"}.Args()
	assert.Error(t, err)
}

func TestNewRejectsBadConnection(t *testing.T) {
	_, err := New(ConnParams{Interface: "uart"}, nil)
	assert.ErrorIs(t, err, ErrPortRequired)
}

func TestRunComposesCommandLine(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn(), &Result{Stdout: "ok"})

	res, err := tool.Run(context.Background(), false, "get-property", "1", "0")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)

	require.Len(t, runner.calls, 1)
	assert.Equal(t,
		[]string{"blhost", "-u", "0x1FC9,0x0020", "--", "get-property", "1", "0"},
		runner.calls[0])
}

func TestRunAddsJSONFlag(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn(), &Result{})

	_, err := tool.Run(context.Background(), true, "get-property", "1", "0")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"blhost", "-u", "0x1FC9,0x0020", "-j", "--", "get-property", "1", "0"},
		runner.calls[0])
}

func TestRunUsesConfiguredExecutable(t *testing.T) {
	runner := &fakeRunner{}
	tool, err := New(usbConn(), &Config{Runner: runner, Executable: "/opt/nxp/blhost"})
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), false, "get-property", "1", "0")
	require.NoError(t, err)
	assert.Equal(t, "/opt/nxp/blhost", runner.calls[0][0])
}

func TestRegionByKey(t *testing.T) {
	ns, ok := RegionByKey("NS")
	require.True(t, ok)
	assert.Equal(t, uint32(0x08000000), ns.StartAddr)
	assert.Equal(t, uint32(0x08000400), ns.ReadAddr)

	s, ok := RegionByKey("S")
	require.True(t, ok)
	assert.Equal(t, uint32(0x18000000), s.StartAddr)

	_, ok = RegionByKey("XYZ")
	assert.False(t, ok)
}
