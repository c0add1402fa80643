package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor converts PDF bytes into plain text.
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

// ErrNoText indicates the document carried no extractable text content.
var ErrNoText = errors.New("no extractable text in PDF")

// StructuredExtractor walks the document's cross-reference table and content
// streams via the pdf library.
type StructuredExtractor struct{}

func (StructuredExtractor) ExtractText(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs; contain that here so
	// callers only ever see an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf parse: %w", err)
	}
	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, body); err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

// literalString matches parenthesized literals fed to the Tj/TJ text-showing
// operators in uncompressed content streams.
var literalString = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*T[jJ]`)

// LiteralExtractor is the fallback tier: a naive scan for text-showing
// operators that works on uncompressed streams when structured parsing fails.
type LiteralExtractor struct{}

func (LiteralExtractor) ExtractText(data []byte) (string, error) {
	matches := literalString.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return "", ErrNoText
	}
	var parts []string
	for _, m := range matches {
		s := unescapeLiteral(string(m[1]))
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoText
	}
	return strings.Join(parts, "\n"), nil
}

func unescapeLiteral(s string) string {
	replacer := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t")
	return strings.TrimSpace(replacer.Replace(s))
}

// Extract runs the structured extractor and falls back to the literal scan
// only when structured parsing is unavailable or fails.
func Extract(data []byte) (string, error) {
	text, err := (StructuredExtractor{}).ExtractText(data)
	if err == nil {
		return text, nil
	}
	return (LiteralExtractor{}).ExtractText(data)
}
