package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// parseSize parses a byte count argument: decimal, or hex with a 0x prefix.
// A bare number is decimal, so "-s 800000" means 800000 bytes, not 0x800000.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n, nil
}

// parseAddr parses a flash address. Addresses are always hex, so the 0x
// prefix may be omitted the way they are usually typed.
func parseAddr(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil || n < 0 || n > 0xFFFFFFFF {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(n), nil
}
