// Package report emits a JSON manifest describing one generation run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// PartFile records one output file of a run.
type PartFile struct {
	Part   int32  `json:"part"`
	Path   string `json:"path"`
	Offset int64  `json:"offset"`
	Rows   int64  `json:"rows"`
}

// Manifest summarizes a generation run: what was produced, where, and
// how long it took.
type Manifest struct {
	Table         string     `json:"table"`
	ScaleFactor   float64    `json:"scale_factor"`
	TotalRows     int64      `json:"total_rows"`
	Parts         int32      `json:"parts"`
	Compression   string     `json:"compression"`
	RowGroupBytes int64      `json:"row_group_bytes"`
	Files         []PartFile `json:"files"`
	StartedAt     time.Time  `json:"started_at"`
	Duration      string     `json:"duration"`
}

// Marshal serializes the manifest to indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Save writes the manifest to a file.
func (m *Manifest) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest back from a file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
