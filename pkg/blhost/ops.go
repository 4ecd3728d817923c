package blhost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoDevice is returned when blhost reports that no device is attached
// in bootloader mode
var ErrNoDevice = errors.New("device not found, check connection and bootloader mode")

// statusResponse is the shape of blhost -j output
type statusResponse struct {
	Command  string   `json:"command"`
	Response []uint64 `json:"response"`
	Status   struct {
		Value       int    `json:"value"`
		Description string `json:"description"`
	} `json:"status"`
}

// PingResult reports a successful connection test
type PingResult struct {
	// Version is the bootloader version word, valid when HasVersion is set.
	// blhost builds without JSON output report success with no version.
	Version    uint32
	HasVersion bool
}

// Ping checks that a device in bootloader mode answers on the configured
// connection by asking for the current-version property
func (t *Tool) Ping(ctx context.Context) (*PingResult, error) {
	res, err := t.Run(ctx, true, "get-property", "1", "0")
	if err != nil {
		return nil, err
	}
	if strings.Contains(res.Stderr, "SpsdkNoDeviceFoundError") {
		return nil, ErrNoDevice
	}

	var sr statusResponse
	if jsonErr := json.Unmarshal([]byte(res.Stdout), &sr); jsonErr == nil && strings.TrimSpace(res.Stdout) != "" {
		if sr.Status.Value != 0 {
			return nil, fmt.Errorf("device responded with status %d (%s)",
				sr.Status.Value, sr.Status.Description)
		}
		pr := &PingResult{}
		if len(sr.Response) > 0 {
			pr.Version = uint32(sr.Response[0])
			pr.HasVersion = true
		}
		return pr, nil
	}

	// Not JSON; fall back to the exit code
	if res.ExitCode != 0 {
		if res.Stderr != "" {
			return nil, fmt.Errorf("connection test failed: %s", strings.TrimSpace(res.Stderr))
		}
		return nil, errors.New("connection test failed")
	}
	return &PingResult{}, nil
}

// InitFlash configures the bootloader's external memory interface by staging
// the FCB blob in RAM and pointing configure-memory at it. This must happen
// before any erase, write, or read of the QSPI flash.
func (t *Tool) InitFlash(ctx context.Context, fcbPath string) error {
	if _, err := os.Stat(fcbPath); err != nil {
		return fmt.Errorf("FCB file does not exist: %s", fcbPath)
	}

	commands := [][]string{
		{"fill-memory", fmt.Sprintf("0x%08X", uint32(fcbLoadAddr)), "4", "0xC0100002", "word"},
		{"write-memory", fmt.Sprintf("0x%08X", uint32(fcbLoadAddr)), fcbPath},
		{"configure-memory", "9", fmt.Sprintf("0x%08X", uint32(fcbLoadAddr))},
	}
	for _, cmd := range commands {
		res, err := t.Run(ctx, false, cmd...)
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("flash initialization failed at %q: %s",
				strings.Join(cmd, " "), strings.TrimSpace(res.Stderr))
		}
	}
	return nil
}

// ProgressFunc is called after each completed chunk of a long operation
type ProgressFunc func(done, total int64)

// EraseRegion erases size bytes of flash starting at start, splitting the
// work into blocks the bootloader will accept. InitFlash must have run
// first. progress may be nil.
func (t *Tool) EraseRegion(ctx context.Context, start uint32, size int64, progress ProgressFunc) error {
	if size <= 0 {
		return fmt.Errorf("invalid erase size %d", size)
	}

	addr := int64(start)
	remaining := size
	for remaining > 0 {
		block := remaining
		if block > MaxEraseBlock {
			block = MaxEraseBlock
		}
		if progress != nil {
			progress(size-remaining, size)
		}

		res, err := t.Run(ctx, false,
			"flash-erase-region",
			fmt.Sprintf("0x%08X", uint32(addr)),
			fmt.Sprintf("0x%X", block),
			"0")
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("erase failed at 0x%08X: %s",
				uint32(addr), strings.TrimSpace(res.Stderr))
		}

		addr += block
		remaining -= block
	}
	if progress != nil {
		progress(size, size)
	}
	return nil
}

// WriteImage erases room for the image at path and programs it at start.
// The erased span exactly covers the image size.
func (t *Tool) WriteImage(ctx context.Context, path string, start uint32, progress ProgressFunc) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("firmware file does not exist: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("firmware file is empty: %s", path)
	}

	if err := t.EraseRegion(ctx, start, info.Size(), progress); err != nil {
		return err
	}

	res, err := t.Run(ctx, false, "write-memory", fmt.Sprintf("0x%08X", start), path)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("firmware write failed: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}

// ReadFlash reads size bytes starting at start and returns the raw contents
// decoded from the tool's hex dump output
func (t *Tool) ReadFlash(ctx context.Context, start uint32, size int64) ([]byte, error) {
	if size <= 0 {
		size = DefaultReadSize
	}

	res, err := t.Run(ctx, false,
		"read-memory",
		fmt.Sprintf("0x%08X", start),
		fmt.Sprintf("0x%X", size))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("flash read failed: %s", strings.TrimSpace(res.Stderr))
	}

	data, err := ParseHexDump(res.Stdout)
	if err != nil {
		return nil, err
	}
	return data, nil
}
