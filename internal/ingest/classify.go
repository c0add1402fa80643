package ingest

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Classification rules, first-match-wins: local path, GitHub repository,
// Google Doc, restricted wiki host, .pdf suffix, then generic. Every input
// maps to exactly one branch; nothing is rejected here.

var (
	githubURLPattern    = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([^/]+)/([^/]+)(?:/tree/([^/]+)(?:/(.*))?)?`)
	googleDocURLPattern = regexp.MustCompile(`^https?://docs\.google\.com/document/d/([A-Za-z0-9_-]+)`)
)

// RepoRef identifies a GitHub repository location parsed from a URL.
type RepoRef struct {
	Owner   string
	Repo    string
	Branch  string // empty when the URL names no branch
	Subpath string
}

// ParseGitHubURL matches https?://github.com/<owner>/<repo> optionally with
// /tree/<branch>/<subpath>.
func ParseGitHubURL(raw string) (RepoRef, bool) {
	m := githubURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return RepoRef{}, false
	}
	return RepoRef{
		Owner:   m[1],
		Repo:    strings.TrimSuffix(m[2], ".git"),
		Branch:  m[3],
		Subpath: m[4],
	}, true
}

// GoogleDocID extracts the document id from a Google Docs URL.
func GoogleDocID(raw string) (string, bool) {
	m := googleDocURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LocalPath resolves the input to a local filesystem path when it denotes an
// existing entry, stripping a file:// prefix first.
func LocalPath(raw string) (string, bool) {
	path := strings.TrimPrefix(raw, "file://")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// HasPDFSuffix reports whether the input ends in .pdf, case-insensitive.
func HasPDFSuffix(raw string) bool {
	return strings.HasSuffix(strings.ToLower(raw), ".pdf")
}

// IsRestrictedHost reports whether the URL's host carries one of the known
// restricted-wiki markers.
func IsRestrictedHost(raw string, markers []string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, m := range markers {
		if m != "" && strings.Contains(host, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func classifyExt(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".html", ".htm":
		return KindHTML
	case ".pdf":
		return KindPDF
	default:
		return KindLocal
	}
}

// Classify maps an input to its content kind without performing retrieval.
// Generic URLs resolve to html here; the generic strategy refines the
// html-vs-markdown decision once the response's content type is known.
func Classify(raw string, restrictedMarkers []string) Kind {
	if path, ok := LocalPath(raw); ok {
		return classifyExt(path)
	}
	if _, ok := ParseGitHubURL(raw); ok {
		return KindGitHub
	}
	if _, ok := GoogleDocID(raw); ok {
		return KindGoogleDoc
	}
	if IsRestrictedHost(raw, restrictedMarkers) {
		return KindRestricted
	}
	if HasPDFSuffix(raw) {
		return KindPDF
	}
	return KindHTML
}
