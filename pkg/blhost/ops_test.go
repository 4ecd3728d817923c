package blhost

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFCB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fcb_8m.bin")
	require.NoError(t, ioutil.WriteFile(path, []byte{0xFC, 0xB0}, 0644))
	return path
}

func TestPingParsesJSONStatus(t *testing.T) {
	tool, _ := newFakeTool(t, usbConn(), &Result{
		Stdout: `{"command":"get-property","response":[1258487808],"status":{"value":0,"description":"Success."}}`,
	})

	ping, err := tool.Ping(context.Background())
	require.NoError(t, err)
	assert.True(t, ping.HasVersion)
	assert.Equal(t, uint32(1258487808), ping.Version)
}

func TestPingStatusError(t *testing.T) {
	tool, _ := newFakeTool(t, usbConn(), &Result{
		Stdout: `{"command":"get-property","response":[],"status":{"value":10004,"description":"Error"}}`,
	})

	_, err := tool.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10004")
}

func TestPingNoDevice(t *testing.T) {
	tool, _ := newFakeTool(t, usbConn(), &Result{
		ExitCode: 2,
		Stderr:   "spsdk.exceptions.SpsdkNoDeviceFoundError: no device found",
	})

	_, err := tool.Ping(context.Background())
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestPingNonJSONSuccess(t *testing.T) {
	tool, _ := newFakeTool(t, usbConn(), &Result{
		Stdout: "Response word 1 = 1258487808 (0x4b030000)",
	})

	ping, err := tool.Ping(context.Background())
	require.NoError(t, err)
	assert.False(t, ping.HasVersion)
}

func TestPingNonJSONFailure(t *testing.T) {
	tool, _ := newFakeTool(t, usbConn(), &Result{
		ExitCode: 1,
		Stderr:   "something broke",
	})

	_, err := tool.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")
}

func TestInitFlashSequence(t *testing.T) {
	fcb := writeTempFCB(t)
	tool, runner := newFakeTool(t, usbConn(), &Result{}, &Result{}, &Result{})

	require.NoError(t, tool.InitFlash(context.Background(), fcb))
	require.Len(t, runner.calls, 3)

	prefix := []string{"blhost", "-u", "0x1FC9,0x0020", "--"}
	assert.Equal(t, append(prefix, "fill-memory", "0x2000F000", "4", "0xC0100002", "word"), runner.calls[0])
	assert.Equal(t, append(prefix, "write-memory", "0x2000F000", fcb), runner.calls[1])
	assert.Equal(t, append(prefix, "configure-memory", "9", "0x2000F000"), runner.calls[2])
}

func TestInitFlashMissingFCB(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn())

	err := tool.InitFlash(context.Background(), filepath.Join(t.TempDir(), "absent.bin"))
	require.Error(t, err)
	assert.Empty(t, runner.calls, "no command may run without the FCB present")
}

func TestInitFlashStopsOnFailure(t *testing.T) {
	fcb := writeTempFCB(t)
	tool, runner := newFakeTool(t, usbConn(),
		&Result{},
		&Result{ExitCode: 1, Stderr: "write failed"})

	err := tool.InitFlash(context.Background(), fcb)
	require.Error(t, err)
	assert.Len(t, runner.calls, 2)
}

func TestEraseRegionChunksLargeErase(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn(), &Result{}, &Result{}, &Result{})

	// 2.5MB erase splits into 1MB + 1MB + 0.5MB
	var progress [][2]int64
	err := tool.EraseRegion(context.Background(), 0x08000000, 0x280000, func(done, total int64) {
		progress = append(progress, [2]int64{done, total})
	})
	require.NoError(t, err)
	require.Len(t, runner.calls, 3)

	prefix := []string{"blhost", "-u", "0x1FC9,0x0020", "--"}
	assert.Equal(t, append(prefix, "flash-erase-region", "0x08000000", "0x100000", "0"), runner.calls[0])
	assert.Equal(t, append(prefix, "flash-erase-region", "0x08100000", "0x100000", "0"), runner.calls[1])
	assert.Equal(t, append(prefix, "flash-erase-region", "0x08200000", "0x80000", "0"), runner.calls[2])

	assert.Equal(t, [][2]int64{
		{0, 0x280000},
		{0x100000, 0x280000},
		{0x200000, 0x280000},
		{0x280000, 0x280000},
	}, progress)
}

func TestEraseRegionInvalidSize(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn())

	assert.Error(t, tool.EraseRegion(context.Background(), 0x08000000, 0, nil))
	assert.Error(t, tool.EraseRegion(context.Background(), 0x08000000, -1, nil))
	assert.Empty(t, runner.calls)
}

func TestEraseRegionStopsOnFailure(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn(),
		&Result{},
		&Result{ExitCode: 1, Stderr: "erase fault"})

	err := tool.EraseRegion(context.Background(), 0x08000000, 0x200000, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x08100000")
	assert.Len(t, runner.calls, 2)
}

func TestWriteImage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "firmware.bin")
	require.NoError(t, ioutil.WriteFile(img, make([]byte, 0x1800), 0644))

	tool, runner := newFakeTool(t, usbConn(), &Result{}, &Result{})

	require.NoError(t, tool.WriteImage(context.Background(), img, 0x08000000, nil))
	require.Len(t, runner.calls, 2)

	prefix := []string{"blhost", "-u", "0x1FC9,0x0020", "--"}
	assert.Equal(t, append(prefix, "flash-erase-region", "0x08000000", "0x1800", "0"), runner.calls[0])
	assert.Equal(t, append(prefix, "write-memory", "0x08000000", img), runner.calls[1])
}

func TestWriteImageRejectsMissingOrEmptyFile(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn())

	err := tool.WriteImage(context.Background(), filepath.Join(t.TempDir(), "absent.bin"), 0x08000000, nil)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, ioutil.WriteFile(empty, nil, 0644))
	err = tool.WriteImage(context.Background(), empty, 0x08000000, nil)
	assert.Error(t, err)

	assert.Empty(t, runner.calls)
}

func TestReadFlash(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn(), &Result{
		Stdout: "FC F9 00 10 01 40 00 20\n08 01 00 08 31 01 00 08\n{\"status\":{\"value\":0}}\n",
	})

	data, err := tool.ReadFlash(context.Background(), 0x08000400, 0x10)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xFC, 0xF9, 0x00, 0x10, 0x01, 0x40, 0x00, 0x20,
		0x08, 0x01, 0x00, 0x08, 0x31, 0x01, 0x00, 0x08,
	}, data)

	prefix := []string{"blhost", "-u", "0x1FC9,0x0020", "--"}
	assert.Equal(t, append(prefix, "read-memory", "0x08000400", "0x10"), runner.calls[0])
}

func TestReadFlashDefaultSize(t *testing.T) {
	tool, runner := newFakeTool(t, usbConn(), &Result{Stdout: "AA BB\n"})

	_, err := tool.ReadFlash(context.Background(), 0x08000400, 0)
	require.NoError(t, err)
	assert.Equal(t, "0x200", runner.calls[0][len(runner.calls[0])-1])
}

func TestReadFlashFailure(t *testing.T) {
	tool, _ := newFakeTool(t, usbConn(), &Result{ExitCode: 1, Stderr: "read fault"})

	_, err := tool.ReadFlash(context.Background(), 0x08000400, 0x10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read fault")
}
