package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.StageDir == "" {
		opts.StageDir = filepath.Join(t.TempDir(), "stage")
	}
	s := NewSession(opts)
	t.Cleanup(s.Close)
	return s
}

func ingestOne(t *testing.T, s *Session, raw string) Artifact {
	t.Helper()
	arts, err := s.IngestURLs(context.Background(), []string{raw})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(arts) != 1 {
		t.Fatalf("expected one artifact, got %d", len(arts))
	}
	return arts[0]
}

func TestIngest_LocalMarkdownWithFencedSolidity(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "doc.md")
	content := "# Sample Doc\n\nSome text.\n\n```solidity\npragma solidity ^0.8.0;\ncontract X {}\n```\n"
	if err := os.WriteFile(md, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a := ingestOne(t, newTestSession(t, Options{}), md)
	if a.Kind != KindMarkdown {
		t.Fatalf("expected markdown kind, got %s", a.Kind)
	}
	if a.Title != "doc.md" {
		t.Fatalf("expected file name title, got %q", a.Title)
	}
	if len(a.Code) != 1 {
		t.Fatalf("expected exactly one fragment, got %d: %#v", len(a.Code), a.Code)
	}
	if a.Code[0].Language != "solidity" {
		t.Fatalf("expected solidity tag, got %q", a.Code[0].Language)
	}
	if a.Code[0].Code != "pragma solidity ^0.8.0;\ncontract X {}" {
		t.Fatalf("unexpected fragment body: %q", a.Code[0].Code)
	}
}

func TestIngest_LocalPlainTextFallback(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("pragma solidity ^0.8.1;\ncontract Y {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := ingestOne(t, newTestSession(t, Options{}), txt)
	if a.Kind != KindLocal {
		t.Fatalf("expected local kind, got %s", a.Kind)
	}
	if len(a.Code) != 1 || a.Code[0].Language != "solidity" {
		t.Fatalf("expected one heuristic fragment, got %#v", a.Code)
	}
}

func TestIngest_GenericNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := ingestOne(t, newTestSession(t, Options{}), srv.URL+"/missing")
	if a.Kind != KindError {
		t.Fatalf("expected error kind, got %s", a.Kind)
	}
	if !strings.Contains(a.Err, "404") {
		t.Fatalf("expected 404 in error, got %q", a.Err)
	}
	if len(a.Code) != 0 {
		t.Fatalf("expected no fragments on failure, got %#v", a.Code)
	}
}

func TestIngest_GenericMarkdownByContentType(t *testing.T) {
	body := "Intro.\n\n```solidity\ncontract Z {}\n```\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	a := ingestOne(t, newTestSession(t, Options{}), srv.URL+"/readme")
	if a.Kind != KindMarkdown {
		t.Fatalf("expected markdown kind from content type, got %s", a.Kind)
	}
	if len(a.Code) != 1 || a.Code[0].Code != "contract Z {}" {
		t.Fatalf("unexpected fragments: %#v", a.Code)
	}
}

func TestIngest_GenericDefaultsToHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Content-Type header: the ambiguous case defaults to html.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<html><head><title>Page</title></head><body><p>hello world</p></body></html>"))
	}))
	defer srv.Close()

	a := ingestOne(t, newTestSession(t, Options{}), srv.URL+"/page")
	if a.Kind != KindHTML {
		t.Fatalf("expected html kind for ambiguous content type, got %s", a.Kind)
	}
}

func TestIngest_GoogleDocRestricted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := newTestSession(t, Options{GoogleDocExportBase: srv.URL})
	a := ingestOne(t, s, "https://docs.google.com/document/d/abc123/edit")
	if a.Kind != KindGoogleDoc {
		t.Fatalf("expected google_doc kind, got %s", a.Kind)
	}
	if !strings.Contains(a.Err, "restricted") && !strings.Contains(a.Err, "private") {
		t.Fatalf("expected restriction hint in error, got %q", a.Err)
	}
	if a.Text != "" {
		t.Fatalf("expected no raw text on restricted doc, got %q", a.Text)
	}
}

func TestIngest_GoogleDocExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/document/d/abc123/export" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("Doc body.\n\npragma solidity ^0.8.0;\ncontract D {}\n"))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{GoogleDocExportBase: srv.URL})
	a := ingestOne(t, s, "https://docs.google.com/document/d/abc123/edit")
	if a.Kind != KindGoogleDoc || a.Err != "" {
		t.Fatalf("expected successful google_doc artifact, got %+v", a)
	}
	if a.Title != "Google Doc abc123" {
		t.Fatalf("unexpected title %q", a.Title)
	}
	if len(a.Code) != 1 || a.Code[0].Language != "solidity" {
		t.Fatalf("expected heuristic fragment, got %#v", a.Code)
	}
}

func TestIngest_RestrictedWikiForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := newTestSession(t, Options{RestrictedHosts: []string{"127.0.0.1"}})
	a := ingestOne(t, s, srv.URL+"/wiki/page")
	if a.Kind != KindRestricted {
		t.Fatalf("expected restricted kind, got %s", a.Kind)
	}
	if !strings.Contains(a.Err, "403") {
		t.Fatalf("expected status in error, got %q", a.Err)
	}
}

func TestIngest_RestrictedWikiLoginWall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Please sign in to 127 workspace</body></html>"))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{RestrictedHosts: []string{"127.0.0.1"}})
	a := ingestOne(t, s, srv.URL+"/wiki/page")
	if a.Kind != KindRestricted {
		t.Fatalf("expected restricted kind for login wall, got %s", a.Kind)
	}
	if !strings.Contains(a.Err, "login") {
		t.Fatalf("expected login-page reason, got %q", a.Err)
	}
}

func TestIngest_RestrictedWikiAccessibleDefersToGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Open Page</title></head><body><p>public content</p></body></html>"))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{RestrictedHosts: []string{"127.0.0.1"}})
	a := ingestOne(t, s, srv.URL+"/wiki/page")
	if a.Kind != KindHTML {
		t.Fatalf("expected accessible page to defer to generic html, got %s", a.Kind)
	}
}

func TestIngest_RemotePDFNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := ingestOne(t, newTestSession(t, Options{}), srv.URL+"/paper.pdf")
	if a.Kind != KindPDF {
		t.Fatalf("expected pdf kind, got %s", a.Kind)
	}
	if !strings.Contains(a.Err, "404") {
		t.Fatalf("expected 404 in error, got %q", a.Err)
	}
	if len(a.Code) != 0 {
		t.Fatalf("expected empty extracted code, got %#v", a.Code)
	}
}

func TestIngest_RemotePDFExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4\nstream\nBT (pragma solidity ^0.8.0; contract P {}) Tj ET\nendstream\n"))
	}))
	defer srv.Close()

	a := ingestOne(t, newTestSession(t, Options{}), srv.URL+"/paper.pdf")
	if a.Kind != KindPDF || a.Err != "" {
		t.Fatalf("expected successful pdf artifact, got %+v", a)
	}
	if len(a.Code) != 1 || a.Code[0].Language != "solidity" {
		t.Fatalf("expected pragma fragment from extracted text, got %#v", a.Code)
	}
}

func TestIngest_GitHubStagesSolUnderSubpath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/git/trees/dev", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tree": []map[string]any{
				{"path": "contracts", "type": "tree"},
				{"path": "contracts/Token.sol", "type": "blob"},
				{"path": "contracts/sub/Vault.sol", "type": "blob"},
				{"path": "scripts/Deploy.sol", "type": "blob"},
				{"path": "contracts/README.md", "type": "blob"},
			},
		})
	})
	mux.HandleFunc("/raw/acme/widgets/dev/contracts/Token.sol", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pragma solidity ^0.8.0;\ncontract Token {}"))
	})
	// Vault.sol intentionally 404s: a single failed download is skipped.
	srv := httptest.NewServer(mux)
	defer srv.Close()

	stageDir := filepath.Join(t.TempDir(), "stage")
	s := newTestSession(t, Options{
		StageDir:      stageDir,
		GitHubAPIBase: srv.URL,
		GitHubRawBase: srv.URL + "/raw",
	})

	a := ingestOne(t, s, "https://github.com/acme/widgets/tree/dev/contracts")
	if a.Kind != KindGitHub || a.Err != "" {
		t.Fatalf("expected github artifact, got %+v", a)
	}
	if a.Metadata["owner"] != "acme" || a.Metadata["repo"] != "widgets" || a.Metadata["branch"] != "dev" {
		t.Fatalf("unexpected metadata: %#v", a.Metadata)
	}
	if a.Metadata["downloaded_count"] != 1 {
		t.Fatalf("expected one staged file, got %v", a.Metadata["downloaded_count"])
	}
	if len(a.Downloaded) != 1 || !strings.HasSuffix(a.Downloaded[0], filepath.Join("acme", "widgets", "dev", "contracts", "Token.sol")) {
		t.Fatalf("unexpected staged paths: %#v", a.Downloaded)
	}
	data, err := os.ReadFile(a.Downloaded[0])
	if err != nil {
		t.Fatalf("staged file unreadable: %v", err)
	}
	if !strings.Contains(string(data), "contract Token") {
		t.Fatalf("unexpected staged content: %q", data)
	}
}

func TestIngest_GitHubDefaultBranchFallsBackToMain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/repos/acme/widgets/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"tree": []map[string]any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newTestSession(t, Options{
		GitHubAPIBase: srv.URL,
		GitHubRawBase: srv.URL + "/raw",
	})
	a := ingestOne(t, s, "https://github.com/acme/widgets")
	if a.Kind != KindGitHub || a.Err != "" {
		t.Fatalf("expected github artifact, got %+v", a)
	}
	if a.Metadata["branch"] != "main" {
		t.Fatalf("expected main fallback branch, got %v", a.Metadata["branch"])
	}
	if a.Metadata["downloaded_count"] != 0 {
		t.Fatalf("expected zero downloads, got %v", a.Metadata["downloaded_count"])
	}
}

func TestIngest_UnrecognizedInput(t *testing.T) {
	a := ingestOne(t, newTestSession(t, Options{}), "complete nonsense with spaces")
	if a.Kind != KindError {
		t.Fatalf("expected error kind, got %s", a.Kind)
	}
	if !strings.Contains(a.Err, "unrecognized") {
		t.Fatalf("expected unrecognized-format error, got %q", a.Err)
	}
}

func TestIngestURLs_OneArtifactPerInput(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "a.md")
	if err := os.WriteFile(md, []byte("# A"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestSession(t, Options{})
	arts, err := s.IngestURLs(context.Background(), []string{md, "garbage input"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(arts) != 2 {
		t.Fatalf("expected one artifact per input, got %d", len(arts))
	}
	if arts[0].Kind != KindMarkdown || arts[1].Kind != KindError {
		t.Fatalf("unexpected kinds: %s, %s", arts[0].Kind, arts[1].Kind)
	}
}

func TestIngestURLs_RequiresClient(t *testing.T) {
	s := &Session{}
	if _, err := s.IngestURLs(context.Background(), []string{"https://example.com"}); err != ErrNoClient {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}
}
