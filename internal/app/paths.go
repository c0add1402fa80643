package app

import (
	"path/filepath"
	"time"
)

// DefaultCacheDir is the workspace cache root shared across runs.
const DefaultCacheDir = ".solrecon-cache"

// MakeRunID derives a run id from the current UTC time.
func MakeRunID() string {
	return time.Now().UTC().Format("20060102T150405Z")
}

// DefaultArtifactsDir returns the per-run artifacts directory.
func DefaultArtifactsDir(runID string) string {
	return filepath.Join("artifacts", runID)
}

// SolStageDir returns the Solidity staging directory under the cache root.
func SolStageDir(cacheDir string) string {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	return filepath.Join(cacheDir, "solidity")
}
