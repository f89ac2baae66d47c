package run

import (
	"fmt"
	"time"

	"heartpanel/domain/core"
)

// Manifest is the record of one pipeline run
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Fingerprint RunFingerprint `json:"fingerprint"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Sources     []string       `json:"sources"`
	Stages      []StageTiming  `json:"stages"`
	Collisions  []string       `json:"collisions,omitempty"`
	Entities    int            `json:"entities"`
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	CellsFilled int            `json:"cells_filled"`
	OutputPath  string         `json:"output_path"`
	ReportPath  string         `json:"report_path,omitempty"`
}

// NewManifest starts a manifest for a fresh run
func NewManifest(fingerprint RunFingerprint) *Manifest {
	return &Manifest{
		RunID:       core.NewRunID(),
		Fingerprint: fingerprint,
		StartedAt:   time.Now().UTC(),
	}
}

// RecordStage appends a stage timing
func (m *Manifest) RecordStage(stage string, d time.Duration, rows, columns int) {
	m.Stages = append(m.Stages, StageTiming{Stage: stage, Duration: d, Rows: rows, Columns: columns})
}

// Stage returns the timing for a stage, false when it did not run
func (m *Manifest) Stage(stage string) (StageTiming, bool) {
	for _, s := range m.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageTiming{}, false
}

// Finish stamps the end time
func (m *Manifest) Finish() {
	m.FinishedAt = time.Now().UTC()
}

// Duration is the wall time of the run
func (m *Manifest) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return fmt.Errorf("run manifest: fingerprint cannot be empty")
	}
	if m.FinishedAt.IsZero() {
		return fmt.Errorf("run manifest: run not finished")
	}
	if m.OutputPath == "" {
		return fmt.Errorf("run manifest: output_path cannot be empty")
	}
	return nil
}
