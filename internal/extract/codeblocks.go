package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fragment is one extracted code excerpt with an optional language tag.
// Fragments with identical code bodies are duplicates regardless of tag.
type Fragment struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

var (
	fencePattern  = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)\n(.*?)```")
	languageClass = regexp.MustCompile(`^language-([A-Za-z0-9_+-]+)$`)
)

// FragmentsFromText scans plain text (or Markdown) for code fragments in two
// passes: fenced triple-backtick blocks with an optional language tag, and a
// heuristic pass capturing any blank-line-delimited paragraph containing
// "pragma solidity" even when unfenced. The result is deduplicated.
func FragmentsFromText(text string) []Fragment {
	var frags []Fragment
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		code := strings.TrimSpace(m[2])
		if code == "" {
			continue
		}
		frags = append(frags, Fragment{Language: m[1], Code: code})
	}
	// The heuristic pass targets unfenced code; fenced regions were already
	// captured above and would only re-report with the fence markers attached.
	unfenced := fencePattern.ReplaceAllString(text, "\n\n")
	for _, para := range strings.Split(unfenced, "\n\n") {
		if strings.Contains(para, "pragma solidity") {
			frags = append(frags, Fragment{Language: "solidity", Code: strings.TrimSpace(para)})
		}
	}
	return Dedupe(frags)
}

// FragmentsFromHTML runs a markup pass over <pre> and <code> elements,
// recording a language-<tag> class as the fragment's language, then unions in
// the text passes applied to the visible-text rendering of the document.
func FragmentsFromHTML(input []byte) []Fragment {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return FragmentsFromText(string(input))
	}
	var frags []Fragment
	doc.Find("pre, code").Each(func(_ int, sel *goquery.Selection) {
		code := strings.TrimSpace(sel.Text())
		if code == "" {
			return
		}
		lang := ""
		for _, cls := range strings.Fields(sel.AttrOr("class", "")) {
			if m := languageClass.FindStringSubmatch(cls); m != nil {
				lang = m[1]
				break
			}
		}
		frags = append(frags, Fragment{Language: lang, Code: code})
	})
	frags = append(frags, FragmentsFromText(VisibleText(input))...)
	return Dedupe(frags)
}
