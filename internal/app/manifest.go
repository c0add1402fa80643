package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest records what a run did, for reproducibility and downstream
// tooling. One manifest is written per run as run_manifest.json.
type Manifest struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	URLs       []string          `json:"urls"`
	Ingestion  ManifestIngestion `json:"ingestion"`
	Analysis   ManifestAnalysis  `json:"analysis"`
}

type ManifestIngestion struct {
	Count        int    `json:"count"`
	ArtifactsDir string `json:"artifacts_dir"`
}

type ManifestAnalysis struct {
	Summary              string `json:"summary"`
	SoliditySourcesCount int    `json:"solidity_sources_count"`
}

// WriteManifest persists the manifest under the run's artifacts directory
// and returns its path.
func WriteManifest(baseDir string, m Manifest) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir artifacts dir: %w", err)
	}
	path := filepath.Join(baseDir, "run_manifest.json")
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
