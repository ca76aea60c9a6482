package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/pthm-cable/scatter/geom"
)

// ManifestVersion is incremented when the format changes.
const ManifestVersion = 1

// ManifestName is the file name of a manifest inside an output directory.
const ManifestName = "manifest.json"

// Manifest describes a batch of runs well enough to reproduce it.
type Manifest struct {
	Version   int       `json:"version"`
	BatchID   string    `json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`

	Strategy    string      `json:"strategy"`
	Bounds      geom.Bounds `json:"bounds"`
	Radius      float64     `json:"radius,omitempty"`
	Resolution  int         `json:"resolution,omitempty"`
	Probability float64     `json:"probability,omitempty"`

	Runs  []ManifestRun `json:"runs"`
	Files []string      `json:"files"`
}

// ManifestRun identifies one run of the batch.
type ManifestRun struct {
	RunID  string `json:"run_id"`
	Index  int    `json:"index"`
	Seed   int64  `json:"seed"`
	Points int    `json:"points"`
}

// NewManifest starts a manifest with a fresh batch id.
func NewManifest(strategy string, bounds geom.Bounds) *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		BatchID:   uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Strategy:  strategy,
		Bounds:    bounds,
	}
}

// AddRun records a finished run.
func (m *Manifest) AddRun(r RunRecord) {
	m.Runs = append(m.Runs, ManifestRun{
		RunID:  r.RunID,
		Index:  r.Index,
		Seed:   r.Seed,
		Points: r.Points,
	})
}

// SaveManifest writes a manifest into dir and returns its path.
func SaveManifest(m *Manifest, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return path, nil
}

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("manifest version %d, want %d", m.Version, ManifestVersion)
	}

	return &m, nil
}
