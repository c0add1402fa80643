package ingest

import (
	"context"
	"time"

	"github.com/hyperifyio/solrecon/internal/extract"
)

// pdfStrategy fetches PDF bytes over HTTP and runs text extraction.
// Extraction failures are captured on the artifact, never propagated.
type pdfStrategy struct {
	s *Session
}

func (st *pdfStrategy) Match(raw string) bool {
	return HasPDFSuffix(raw)
}

func (st *pdfStrategy) Retrieve(ctx context.Context, raw string) Artifact {
	resp, err := st.s.client.Get(ctx, raw, 30*time.Second)
	if err != nil {
		return Artifact{Source: raw, Kind: KindPDF, Err: err.Error()}
	}
	if serr := resp.StatusError(); serr != nil {
		return Artifact{Source: raw, Kind: KindPDF, Err: serr.Error()}
	}

	text, err := st.s.pdfText(resp.Body)
	if err != nil {
		return Artifact{Source: raw, Kind: KindPDF, Err: err.Error()}
	}
	return Artifact{
		Source: raw,
		Kind:   KindPDF,
		Title:  raw,
		Text:   text,
		Code:   extract.FragmentsFromText(text),
	}
}
