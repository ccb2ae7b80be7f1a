package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/insts"
)

// ParseMemoryImage reads "addr: value" or "addr=value" lines. Addresses are
// 0-65535; values are -32768..65535 and negative values are stored in two's
// complement. Blank lines and ';' or '//' comments are ignored. Every bad
// line is reported, each as an *insts.ParseError.
func ParseMemoryImage(r io.Reader) (map[uint16]uint16, error) {
	image := make(map[uint16]uint16)
	var errs []error

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		addr, value, err := parseMemoryLine(line)
		if err != nil {
			errs = append(errs, &insts.ParseError{Line: lineNum, Msg: err.Error()})
			continue
		}
		image[addr] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memory image: %w", err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return image, nil
}

func parseMemoryLine(line string) (uint16, uint16, error) {
	sep := strings.IndexAny(line, ":=")
	if sep < 0 {
		return 0, 0, fmt.Errorf("expected addr: value, got %q", line)
	}

	addrText := strings.TrimSpace(line[:sep])
	valueText := strings.TrimSpace(line[sep+1:])

	addr, err := strconv.ParseUint(addrText, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address %q: must be 0-65535", addrText)
	}

	value, err := strconv.ParseInt(valueText, 10, 32)
	if err != nil || value < -32768 || value > 65535 {
		return 0, 0, fmt.Errorf("invalid value %q: must be -32768 to 65535", valueText)
	}

	return uint16(addr), uint16(value), nil
}

func stripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
