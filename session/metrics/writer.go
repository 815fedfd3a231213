package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SessionRecord is one row of a planning session's summary statistics,
// written by Writer.WriteSessionRecords.
type SessionRecord struct {
	ID          int
	Simulations int64
	NodesCreated int64
	BestActionQ float64
	Duration    time.Duration
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped subdirectory under "sessions" and
// returns a Writer rooted there.
func NewWriter() (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join("sessions", timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) WriteSessionRecords(records []SessionRecord) error {
	path := filepath.Join(w.baseDir, "session_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "simulations", "nodes_created", "best_action_q", "duration"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write session records header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.ID),
			strconv.FormatInt(r.Simulations, 10),
			strconv.FormatInt(r.NodesCreated, 10),
			strconv.FormatFloat(r.BestActionQ, 'f', 6, 64),
			r.Duration.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write session record row: %w", err)
		}
	}
	return nil
}
