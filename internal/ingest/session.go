package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/solrecon/internal/extract"
	"github.com/hyperifyio/solrecon/internal/fetch"
	"github.com/hyperifyio/solrecon/internal/pdftext"
	"github.com/hyperifyio/solrecon/internal/stage"
)

// DefaultUserAgent identifies the tool on every request. It stays stable
// across calls within a run for connection reuse and server-side attribution.
const DefaultUserAgent = "solrecon/0.1 (+https://github.com/hyperifyio/solrecon) preliminary ingestion"

const (
	defaultGitHubAPIBase       = "https://api.github.com"
	defaultGitHubRawBase       = "https://raw.githubusercontent.com"
	defaultGoogleDocExportBase = "https://docs.google.com"
)

// Options configures a Session. Zero values select production defaults; the
// base-URL overrides exist for tests against local servers.
type Options struct {
	UserAgent string
	// Client is the shared HTTP client. Built from UserAgent when nil.
	Client *fetch.Client
	// StageDir is where GitHub .sol sources are staged for analysis.
	StageDir string
	// Sink persists each artifact as it is produced. Optional.
	Sink Sink
	// RestrictedHosts lists host markers of wikis behind a login wall.
	RestrictedHosts []string

	GitHubAPIBase       string
	GitHubRawBase       string
	GoogleDocExportBase string

	// Normalizer overrides the default three-tier HTML normalizer.
	Normalizer *extract.Normalizer
	// PDFText overrides the default PDF text extraction routine.
	PDFText func(data []byte) (string, error)
}

// Session runs the ingestion pipeline over a batch of URLs. Processing is
// strictly sequential; the only state shared across artifacts is the HTTP
// client's connection pool and the on-disk staging store.
type Session struct {
	client     *fetch.Client
	norm       *extract.Normalizer
	pdfText    func([]byte) (string, error)
	sol        *stage.Store
	sink       Sink
	restricted []string
	strategies []Strategy
}

// NewSession builds a session with its strategies in classification order.
func NewSession(opts Options) *Session {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = fetch.NewClient(ua, 20*time.Second)
	}
	norm := opts.Normalizer
	if norm == nil {
		norm = extract.NewNormalizer()
	}
	pdfText := opts.PDFText
	if pdfText == nil {
		pdfText = pdftext.Extract
	}
	restricted := opts.RestrictedHosts
	if restricted == nil {
		restricted = []string{"slite.com"}
	}
	apiBase := opts.GitHubAPIBase
	if apiBase == "" {
		apiBase = defaultGitHubAPIBase
	}
	rawBase := opts.GitHubRawBase
	if rawBase == "" {
		rawBase = defaultGitHubRawBase
	}
	exportBase := opts.GoogleDocExportBase
	if exportBase == "" {
		exportBase = defaultGoogleDocExportBase
	}

	s := &Session{
		client:     client,
		norm:       norm,
		pdfText:    pdfText,
		sol:        &stage.Store{Dir: opts.StageDir},
		sink:       opts.Sink,
		restricted: restricted,
	}
	s.strategies = []Strategy{
		&localStrategy{s: s},
		&githubStrategy{s: s, apiBase: apiBase, rawBase: rawBase},
		&googleDocStrategy{s: s, exportBase: exportBase},
		&restrictedStrategy{s: s},
		&pdfStrategy{s: s},
		&genericStrategy{s: s},
	}
	return s
}

// Close releases the session's pooled network connections.
func (s *Session) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// IngestURLs processes each input fully before the next begins, persisting
// every artifact through the sink. One Artifact is returned per input
// regardless of outcome; only a missing client or a failing sink abort.
func (s *Session) IngestURLs(ctx context.Context, urls []string) ([]Artifact, error) {
	if s.client == nil {
		return nil, ErrNoClient
	}
	artifacts := make([]Artifact, 0, len(urls))
	for _, raw := range urls {
		a := s.ingest(ctx, raw)
		if a.Err != "" {
			log.Warn().Str("url", raw).Str("kind", string(a.Kind)).Str("error", a.Err).Msg("ingest degraded")
		} else {
			log.Info().Str("url", raw).Str("kind", string(a.Kind)).Int("fragments", len(a.Code)).Msg("ingested")
		}
		artifacts = append(artifacts, a)
		if s.sink != nil {
			if err := s.sink.Persist(&a); err != nil {
				return artifacts, fmt.Errorf("persist artifact for %s: %w", raw, err)
			}
		}
	}
	return artifacts, nil
}

func (s *Session) ingest(ctx context.Context, raw string) (a Artifact) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("url", raw).Interface("cause", r).Msg("ingest panicked")
			a = Artifact{Source: raw, Kind: KindError, Err: fmt.Sprint(r)}
		}
	}()
	for _, st := range s.strategies {
		if st.Match(raw) {
			return st.Retrieve(ctx, raw)
		}
	}
	return errorArtifact(raw, ErrUnrecognizedFormat)
}
