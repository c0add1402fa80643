package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_LocalMarkdownEndToEnd(t *testing.T) {
	work := t.TempDir()
	md := filepath.Join(work, "spec-notes.md")
	content := "# Notes\n\n```solidity\npragma solidity ^0.8.0;\ncontract N {}\n```\n"
	if err := os.WriteFile(md, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{
		URLs:         []string{md},
		RunID:        "testrun",
		ArtifactsDir: filepath.Join(work, "artifacts", "testrun"),
		CacheDir:     filepath.Join(work, "cache"),
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	manifestPath := filepath.Join(cfg.ArtifactsDir, "run_manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest not valid json: %v", err)
	}
	if m.RunID != "testrun" || m.Ingestion.Count != 1 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.FinishedAt.Before(m.StartedAt) {
		t.Fatalf("finished before started: %+v", m)
	}

	// Each artifact is persisted under <artifacts>/ingest as JSON.
	entries, err := os.ReadDir(filepath.Join(cfg.ArtifactsDir, "ingest"))
	if err != nil {
		t.Fatalf("ingest dir missing: %v", err)
	}
	var jsonCount int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			jsonCount++
		}
	}
	if jsonCount != 1 {
		t.Fatalf("expected one persisted artifact, got %v", entries)
	}

	// The analysis summary is written even with no staged Solidity sources.
	if _, err := os.Stat(m.Analysis.Summary); err != nil {
		t.Fatalf("analysis summary missing: %v", err)
	}
}

func TestRun_NoURLs(t *testing.T) {
	work := t.TempDir()
	a, err := New(Config{
		RunID:        "empty",
		ArtifactsDir: filepath.Join(work, "artifacts"),
		CacheDir:     filepath.Join(work, "cache"),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); !errors.Is(err, ErrNoURLs) {
		t.Fatalf("expected ErrNoURLs, got %v", err)
	}
}

func TestRun_MergesURLsFile(t *testing.T) {
	work := t.TempDir()
	md := filepath.Join(work, "a.md")
	if err := os.WriteFile(md, []byte("# A"), 0o644); err != nil {
		t.Fatal(err)
	}
	listPath := filepath.Join(work, "urls.txt")
	if err := os.WriteFile(listPath, []byte(md+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{
		URLsFile:     listPath,
		RunID:        "filelist",
		ArtifactsDir: filepath.Join(work, "artifacts", "filelist"),
		CacheDir:     filepath.Join(work, "cache"),
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.ArtifactsDir, "run_manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "a.md") {
		t.Fatalf("manifest should record urls from file: %s", data)
	}
}

func TestRun_WritesSummaryPDF(t *testing.T) {
	work := t.TempDir()
	md := filepath.Join(work, "a.md")
	if err := os.WriteFile(md, []byte("# A"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(work, "summary.pdf")

	cfg := Config{
		URLs:         []string{md},
		RunID:        "pdfrun",
		ArtifactsDir: filepath.Join(work, "artifacts", "pdfrun"),
		CacheDir:     filepath.Join(work, "cache"),
		OutputPDF:    out,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("summary pdf missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("output is not a PDF: %q", data[:8])
	}
}
