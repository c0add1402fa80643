package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// MainContentProvider isolates a page's primary readable region, discarding
// navigation and boilerplate, and derives a short title.
type MainContentProvider interface {
	Extract(input []byte, pageURL string) (Document, error)
}

// DocumentParser converts a complete HTML document into plain text with line
// breaks standing in for structural boundaries.
type DocumentParser interface {
	Parse(input []byte) (Document, error)
}

// Normalizer renders raw HTML to readable plain text through a fixed fallback
// ladder: main-content extraction, then full-document parsing, then bare tag
// stripping. A lower tier runs only when the tier above is absent or fails,
// never on content quality.
type Normalizer struct {
	Main MainContentProvider
	Full DocumentParser
}

// NewNormalizer wires the default providers for all tiers.
func NewNormalizer() *Normalizer {
	return &Normalizer{Main: ReadabilityProvider{}, Full: NodeParser{}}
}

// FromHTML extracts a plain-text body and optional title from raw HTML.
func (n *Normalizer) FromHTML(input []byte, pageURL string) Document {
	if n != nil && n.Main != nil {
		if doc, err := n.Main.Extract(input, pageURL); err == nil {
			return doc
		}
	}
	if n != nil && n.Full != nil {
		if doc, err := n.Full.Parse(input); err == nil {
			return doc
		}
	}
	return Document{Text: stripTags(string(input))}
}

// ReadabilityProvider runs a readability-style extractor on the full document.
type ReadabilityProvider struct{}

func (ReadabilityProvider) Extract(input []byte, pageURL string) (Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(input), u)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Title: strings.TrimSpace(article.Title),
		Text:  strings.TrimSpace(article.TextContent),
	}, nil
}

// NodeParser parses the whole document, taking the <title> text if present
// and rendering the complete text content with newlines at block boundaries.
type NodeParser struct{}

func (NodeParser) Parse(input []byte) (Document, error) {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return Document{}, err
	}
	title := strings.TrimSpace(findTitle(node))
	root := findFirst(node, "body")
	if root == nil {
		root = node
	}
	var b strings.Builder
	collectText(&b, root, false)
	return Document{Title: title, Text: normalizeWhitespace(b.String())}, nil
}

// VisibleText renders the document's text content the same way NodeParser
// does, with no title. Used by the code-block extractor's text passes.
func VisibleText(input []byte) string {
	doc, err := NodeParser{}.Parse(input)
	if err != nil {
		return stripTags(string(input))
	}
	return doc.Text
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "\n")
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "iframe":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "div":
			// Newline before block starts to ensure separation
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "div":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		case "pre", "code":
			b.WriteString("\n")
		}
	}
}

func normalizeWhitespace(s string) string {
	// Collapse multiple spaces and blank lines
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
