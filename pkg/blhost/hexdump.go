package blhost

import (
	"errors"
	"strconv"
	"strings"
)

// ParseHexDump decodes the hex byte dump blhost prints for read-memory.
// Output lines look like
//
//	FC F9 00 10 01 40 00 20 ...
//
// followed by a status trailer, which is ignored. An output with no hex
// data at all is an error.
func ParseHexDump(out string) ([]byte, error) {
	var data []byte

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// status trailer begins with the JSON object or a summary line
		if strings.HasPrefix(line, "{") {
			break
		}
		if !isHexLine(line) {
			continue
		}
		for _, field := range strings.Fields(line) {
			if len(field) != 2 {
				continue
			}
			b, err := strconv.ParseUint(field, 16, 8)
			if err != nil {
				continue
			}
			data = append(data, byte(b))
		}
	}

	if len(data) == 0 {
		return nil, errors.New("no hex data found in read output")
	}
	return data, nil
}

func isHexLine(line string) bool {
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		case c == ' ':
		default:
			return false
		}
	}
	return true
}
