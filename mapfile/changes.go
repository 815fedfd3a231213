package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ChangeOp is one "ADD <TypeName> <id> <Rectangle>" line within a block.
type ChangeOp struct {
	Area Area
}

// ChangeBlock is one "t <time> n <count>" block and its operations.
type ChangeBlock struct {
	Time int64
	Ops  []ChangeOp
}

// ReadChanges parses a changes file per §6. Times must be strictly
// increasing; unknown operations are skipped with a warning rather than
// failing the read, per §6's "unknown operations are skipped with a
// warning" rule.
func ReadChanges(r io.Reader) ([]ChangeBlock, error) {
	scanner := bufio.NewScanner(r)
	var blocks []ChangeBlock
	var lastTime int64 = -1 << 62
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		header := strings.TrimSpace(scanner.Text())
		if header == "" {
			continue
		}
		fields := strings.Fields(header)
		if len(fields) != 4 || fields[0] != "t" || fields[2] != "n" {
			return nil, fmt.Errorf("mapfile: line %d: malformed block header %q", lineNo, header)
		}
		t, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mapfile: line %d: invalid time %q: %w", lineNo, fields[1], err)
		}
		if t <= lastTime {
			return nil, fmt.Errorf("mapfile: line %d: time %d is not strictly increasing", lineNo, t)
		}
		lastTime = t

		n, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("mapfile: line %d: invalid count %q: %w", lineNo, fields[3], err)
		}

		block := ChangeBlock{Time: t}
		for i := 0; i < n; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("mapfile: expected %d change lines after line %d, ran out of input", n, lineNo)
			}
			lineNo++
			opLine := strings.TrimSpace(scanner.Text())
			opFields := strings.Fields(opLine)
			if len(opFields) == 0 || opFields[0] != "ADD" {
				log.Warn().Int("line", lineNo).Str("text", opLine).Msg("skipping unknown change operation")
				continue
			}
			if len(opFields) != 7 {
				log.Warn().Int("line", lineNo).Str("text", opLine).Msg("skipping malformed ADD operation")
				continue
			}
			area, err := parseAreaLine(strings.Join(opFields[1:], " "))
			if err != nil {
				log.Warn().Int("line", lineNo).Err(err).Msg("skipping malformed ADD operation")
				continue
			}
			block.Ops = append(block.Ops, ChangeOp{Area: area})
		}
		blocks = append(blocks, block)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mapfile: %w", err)
	}
	return blocks, nil
}
