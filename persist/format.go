// Package persist implements the text tree format of §6: the canonical
// round-trip serialization Testable Property 8 holds the engine to.
package persist

import (
	"fmt"
	"io"
	"sort"

	"abtsolver/actionmap"
	"abtsolver/obsmap"
)

// WriteObservationMapping writes m in the exact header/line/footer text
// format of §6: "<n> observation children; <total> visits {" followed by
// one sorted "\t<obs> -> NODE <id>; <visits> visits" line per entry and a
// closing "}".
func WriteObservationMapping(w io.Writer, m obsmap.Mapping) error {
	entries := m.Entries()
	fmt.Fprintf(w, "%d observation children; %d visits {\n", len(entries), m.TotalVisitCount())

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("\t%s -> NODE %d; %d visits", e.Observation.String(), e.ChildID, e.VisitCount)
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// WriteActionMapping serializes m analogously, per §6's "action mappings
// serialize analogously per entry, with Q-statistics included".
func WriteActionMapping(w io.Writer, m actionmap.Mapping) error {
	entries := m.Entries()
	fmt.Fprintf(w, "%d action children; %d visits {\n", len(entries), m.TotalVisitCount())

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("\t%s -> NODE %d; %d visits; q=%.9g", e.Action.String(), e.ChildID, e.VisitCount, e.MeanQ())
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
