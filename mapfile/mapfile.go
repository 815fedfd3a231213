// Package mapfile parses the text-based map and changes file formats of
// §6: line-oriented area descriptions and timed ADD operations.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// AreaType is one of the TypeName values in §6's grammar.
type AreaType string

const (
	World       AreaType = "World"
	Start       AreaType = "Start"
	Observation AreaType = "Observation"
	Goal        AreaType = "Goal"
	Obstacle    AreaType = "Obstacle"
	Empty       AreaType = "Empty"
	OOB         AreaType = "OOB"
)

var validAreaTypes = map[string]AreaType{
	"World": World, "Start": Start, "Observation": Observation,
	"Goal": Goal, "Obstacle": Obstacle, "Empty": Empty, "OOB": OOB,
}

// Rectangle is x0 y0 x1 y1.
type Rectangle struct{ X0, Y0, X1, Y1 float64 }

// Area is one parsed map-file line.
type Area struct {
	Type AreaType
	ID   int
	Rect Rectangle
}

// Map is the parsed contents of a map file: exactly one World area plus
// every other area, keyed by (type, id) uniqueness within a type.
type Map struct {
	World Area
	Areas []Area
}

// ReadMap parses a map file per §6. Returns a *session.ConfigError-wrapped
// error (via the caller) on any malformed line or a missing/duplicate
// World line — mapfile itself returns plain errors; wrapping into the
// ConfigError kind is the driver's job, matching §7's error-kind split.
func ReadMap(r io.Reader) (*Map, error) {
	scanner := bufio.NewScanner(r)
	m := &Map{}
	haveWorld := false
	seen := make(map[string]bool) // "type:id"

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		area, err := parseAreaLine(line)
		if err != nil {
			return nil, fmt.Errorf("mapfile: line %d: %w", lineNo, err)
		}
		key := fmt.Sprintf("%s:%d", area.Type, area.ID)
		if seen[key] {
			return nil, fmt.Errorf("mapfile: line %d: duplicate id %d for type %s", lineNo, area.ID, area.Type)
		}
		seen[key] = true

		if area.Type == World {
			if haveWorld {
				return nil, fmt.Errorf("mapfile: line %d: more than one World line", lineNo)
			}
			haveWorld = true
			m.World = area
			continue
		}
		m.Areas = append(m.Areas, area)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mapfile: %w", err)
	}
	if !haveWorld {
		return nil, fmt.Errorf("mapfile: missing required World line")
	}
	return m, nil
}

func parseAreaLine(line string) (Area, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return Area{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}
	areaType, ok := validAreaTypes[fields[0]]
	if !ok {
		return Area{}, fmt.Errorf("unknown area type %q", fields[0])
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return Area{}, fmt.Errorf("invalid id %q: %w", fields[1], err)
	}
	rect, err := parseRect(fields[2:])
	if err != nil {
		return Area{}, err
	}
	return Area{Type: areaType, ID: id, Rect: rect}, nil
}

func parseRect(fields []string) (Rectangle, error) {
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rectangle{}, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
		vals[i] = v
	}
	return Rectangle{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, nil
}
