package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/solrecon/internal/extract"
)

// localStrategy reads files directly from disk, branching by extension the
// same way the classifier does.
type localStrategy struct {
	s *Session
}

func (st *localStrategy) Match(raw string) bool {
	_, ok := LocalPath(raw)
	return ok
}

func (st *localStrategy) Retrieve(_ context.Context, raw string) Artifact {
	path, ok := LocalPath(raw)
	if !ok {
		return errorArtifact(raw, ErrUnrecognizedFormat)
	}
	title := filepath.Base(path)
	meta := map[string]any{"source": "local"}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return errorArtifact(path, err)
		}
		text := string(data)
		return Artifact{
			Source:   path,
			Kind:     KindMarkdown,
			Title:    title,
			Metadata: meta,
			Text:     text,
			Code:     extract.FragmentsFromText(text),
		}
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return errorArtifact(path, err)
		}
		doc := st.s.norm.FromHTML(data, raw)
		if doc.Title == "" {
			doc.Title = title
		}
		return Artifact{
			Source:   path,
			Kind:     KindHTML,
			Title:    doc.Title,
			Metadata: meta,
			Text:     doc.Text,
			Code:     extract.FragmentsFromHTML(data),
		}
	case ".pdf":
		data, err := os.ReadFile(path)
		if err != nil {
			return errorArtifact(path, err)
		}
		text, err := st.s.pdfText(data)
		if err != nil {
			return Artifact{Source: path, Kind: KindPDF, Title: title, Err: err.Error()}
		}
		return Artifact{
			Source:   path,
			Kind:     KindPDF,
			Title:    title,
			Metadata: meta,
			Text:     text,
			Code:     extract.FragmentsFromText(text),
		}
	default:
		// Anything else is treated as plain text.
		data, err := os.ReadFile(path)
		if err != nil {
			return errorArtifact(path, err)
		}
		text := string(data)
		return Artifact{
			Source:   path,
			Kind:     KindLocal,
			Title:    title,
			Metadata: meta,
			Text:     text,
			Code:     extract.FragmentsFromText(text),
		}
	}
}
