package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/hyperifyio/solrecon/internal/extract"
)

// genericStrategy handles any remaining http(s) URL. The html-vs-markdown
// decision is deferred until the response's Content-Type (or the URL suffix)
// is known; absent or ambiguous content types default to html as the safer
// broad fallback.
type genericStrategy struct {
	s *Session
}

func (st *genericStrategy) Match(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func (st *genericStrategy) Retrieve(ctx context.Context, raw string) Artifact {
	resp, err := st.s.client.Get(ctx, raw, 20*time.Second)
	if err != nil {
		return errorArtifact(raw, err)
	}
	if serr := resp.StatusError(); serr != nil {
		return errorArtifact(raw, serr)
	}

	ct := strings.ToLower(resp.ContentType)
	lowered := strings.ToLower(raw)
	if strings.Contains(ct, "/markdown") || strings.HasSuffix(lowered, ".md") || strings.HasSuffix(lowered, ".markdown") {
		text := string(resp.Body)
		return Artifact{
			Source: raw,
			Kind:   KindMarkdown,
			Title:  raw,
			Text:   text,
			Code:   extract.FragmentsFromText(text),
		}
	}

	doc := st.s.norm.FromHTML(resp.Body, raw)
	return Artifact{
		Source: raw,
		Kind:   KindHTML,
		Title:  doc.Title,
		Text:   doc.Text,
		Code:   extract.FragmentsFromHTML(resp.Body),
	}
}
