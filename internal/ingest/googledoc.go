package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperifyio/solrecon/internal/extract"
)

// googleDocStrategy pulls a document's plain-text export. Export commonly
// fails with 403 on private documents; that case is reported as a likely
// access restriction rather than a generic HTTP failure.
type googleDocStrategy struct {
	s          *Session
	exportBase string
}

func (st *googleDocStrategy) Match(raw string) bool {
	_, ok := GoogleDocID(raw)
	return ok
}

func (st *googleDocStrategy) Retrieve(ctx context.Context, raw string) Artifact {
	id, ok := GoogleDocID(raw)
	if !ok {
		return Artifact{Source: raw, Kind: KindGoogleDoc, Err: "invalid Google Doc URL"}
	}
	title := "Google Doc " + id
	exportURL := fmt.Sprintf("%s/document/d/%s/export?format=txt", st.exportBase, id)

	resp, err := st.s.client.Get(ctx, exportURL, 20*time.Second)
	if err != nil {
		return Artifact{Source: raw, Kind: KindGoogleDoc, Title: title, Err: err.Error()}
	}
	if resp.StatusCode != 200 {
		return Artifact{
			Source: raw,
			Kind:   KindGoogleDoc,
			Title:  title,
			Err:    fmt.Sprintf("export failed: HTTP %d (likely private or restricted)", resp.StatusCode),
		}
	}

	text := string(resp.Body)
	return Artifact{
		Source: raw,
		Kind:   KindGoogleDoc,
		Title:  title,
		Text:   text,
		Code:   extract.FragmentsFromText(text),
	}
}
