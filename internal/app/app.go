package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/solrecon/internal/analysis"
	"github.com/hyperifyio/solrecon/internal/fetch"
	"github.com/hyperifyio/solrecon/internal/ingest"
	"github.com/hyperifyio/solrecon/internal/stage"
)

// ErrNoURLs is returned when neither -urls nor -urls.file supplied any input.
var ErrNoURLs = errors.New("no URLs provided; use -urls or -urls.file")

// App owns a run: the ingestion session, the staging store, and the run's
// artifact directory layout.
type App struct {
	cfg     Config
	session *ingest.Session
}

// New validates the configuration and builds the ingestion session. The
// shared network client is constructed exactly once here and released by
// Close on every exit path.
func New(cfg Config) (*App, error) {
	if cfg.RunID == "" {
		cfg.RunID = MakeRunID()
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = DefaultArtifactsDir(cfg.RunID)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = ingest.DefaultUserAgent
	}

	stageDir := SolStageDir(cfg.CacheDir)
	if cfg.CacheClear {
		if err := (&stage.Store{Dir: stageDir}).Clear(); err != nil {
			return nil, fmt.Errorf("clear stage cache: %w", err)
		}
	}

	session := ingest.NewSession(ingest.Options{
		UserAgent:       cfg.UserAgent,
		Client:          fetch.NewClient(cfg.UserAgent, 20*time.Second),
		StageDir:        stageDir,
		Sink:            &ingest.DirSink{Dir: filepath.Join(cfg.ArtifactsDir, "ingest")},
		RestrictedHosts: cfg.RestrictedHosts,
	})
	return &App{cfg: cfg, session: session}, nil
}

// Close releases the session's network resources.
func (a *App) Close() {
	if a.session != nil {
		a.session.Close()
	}
}

// Run ingests every URL sequentially, runs static analysis over the staged
// Solidity sources, and writes the run manifest.
func (a *App) Run(ctx context.Context) error {
	urls := append([]string(nil), a.cfg.URLs...)
	if a.cfg.URLsFile != "" {
		fromFile, err := LoadURLsFile(a.cfg.URLsFile)
		if err != nil {
			return fmt.Errorf("load urls file: %w", err)
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return ErrNoURLs
	}

	ingestDir := filepath.Join(a.cfg.ArtifactsDir, "ingest")
	analysisDir := filepath.Join(a.cfg.ArtifactsDir, "analysis")
	log.Info().Str("run_id", a.cfg.RunID).Str("artifacts", a.cfg.ArtifactsDir).Int("urls", len(urls)).Msg("run starting")

	started := time.Now().UTC()

	artifacts, err := a.session.IngestURLs(ctx, urls)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	result, err := analysis.Run(analysisDir, &stage.Store{Dir: SolStageDir(a.cfg.CacheDir)})
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	manifest := Manifest{
		RunID:      a.cfg.RunID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		URLs:       urls,
		Ingestion: ManifestIngestion{
			Count:        len(artifacts),
			ArtifactsDir: ingestDir,
		},
		Analysis: ManifestAnalysis{
			Summary:              filepath.Join(analysisDir, "analysis_summary.json"),
			SoliditySourcesCount: len(result.SoliditySources),
		},
	}
	manifestPath, err := WriteManifest(a.cfg.ArtifactsDir, manifest)
	if err != nil {
		return err
	}

	summary := a.summaryText(manifest)
	fmt.Fprint(os.Stdout, summary)
	if a.cfg.OutputPDF != "" {
		if err := writeSummaryPDF(summary, a.cfg.OutputPDF); err != nil {
			log.Warn().Err(err).Str("out", a.cfg.OutputPDF).Msg("summary PDF failed")
		} else {
			log.Info().Str("out", a.cfg.OutputPDF).Msg("wrote summary PDF")
		}
	}
	log.Info().Str("manifest", manifestPath).Msg("run finished")
	return nil
}

func (a *App) summaryText(m Manifest) string {
	var b strings.Builder
	b.WriteString("# Run Summary\n\n")
	fmt.Fprintf(&b, "Run ID: %s\n", m.RunID)
	fmt.Fprintf(&b, "URLs: %d\n", len(m.URLs))
	fmt.Fprintf(&b, "Ingested artifacts: %d\n", m.Ingestion.Count)
	fmt.Fprintf(&b, "Solidity sources: %d\n", m.Analysis.SoliditySourcesCount)
	fmt.Fprintf(&b, "Manifest: %s\n", filepath.Join(a.cfg.ArtifactsDir, "run_manifest.json"))
	return b.String()
}
