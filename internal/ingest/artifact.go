package ingest

import (
	"github.com/hyperifyio/solrecon/internal/extract"
)

// Kind is the closed set of content classifications an artifact can carry.
type Kind string

const (
	KindHTML       Kind = "html"
	KindMarkdown   Kind = "markdown"
	KindPDF        Kind = "pdf"
	KindGitHub     Kind = "github"
	KindGoogleDoc  Kind = "google_doc"
	KindRestricted Kind = "restricted"
	KindLocal      Kind = "local"
	KindError      Kind = "error"
)

// Artifact is the immutable record of one ingested URL or path. Exactly one
// Artifact is produced per input, even on failure; failures are represented
// in Err, never thrown past the ingestion boundary.
type Artifact struct {
	// Source is the original URL or local path, the identity key for
	// persistence naming. Not guaranteed globally unique.
	Source   string         `json:"url"`
	Kind     Kind           `json:"kind"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	// Text is the extracted/normalized textual content, when any.
	Text string `json:"raw_text,omitempty"`
	// Code holds deduplicated fragments in first-seen order; no two entries
	// share an identical code body.
	Code []extract.Fragment `json:"extracted_code"`
	// Downloaded lists local staging paths for files retrieved as a side
	// effect (GitHub .sol sources for downstream analysis).
	Downloaded []string `json:"downloaded_files,omitempty"`
	Err        string   `json:"error,omitempty"`
}

func errorArtifact(source string, err error) Artifact {
	return Artifact{Source: source, Kind: KindError, Err: err.Error()}
}
