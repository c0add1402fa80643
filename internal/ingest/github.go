package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// githubStrategy resolves a repository reference, walks the recursive file
// tree, and stages every .sol blob under the session's staging store. A
// single failed file download is logged and skipped, never aborting the
// whole repository.
type githubStrategy struct {
	s       *Session
	apiBase string
	rawBase string
}

func (st *githubStrategy) Match(raw string) bool {
	_, ok := ParseGitHubURL(raw)
	return ok
}

func (st *githubStrategy) Retrieve(ctx context.Context, raw string) Artifact {
	ref, ok := ParseGitHubURL(raw)
	if !ok {
		return errorArtifact(raw, ErrUnrecognizedFormat)
	}
	repoAPI := fmt.Sprintf("%s/repos/%s/%s", st.apiBase, ref.Owner, ref.Repo)

	branch := ref.Branch
	if branch == "" {
		branch = st.defaultBranch(ctx, repoAPI)
	}
	if branch == "" {
		branch = "main"
	}
	title := fmt.Sprintf("%s/%s@%s", ref.Owner, ref.Repo, branch)

	treeURL := fmt.Sprintf("%s/git/trees/%s?recursive=1", repoAPI, branch)
	resp, err := st.s.client.Get(ctx, treeURL, 30*time.Second)
	if err != nil {
		return Artifact{Source: raw, Kind: KindGitHub, Title: title, Err: err.Error()}
	}
	if serr := resp.StatusError(); serr != nil {
		return Artifact{Source: raw, Kind: KindGitHub, Title: title, Err: serr.Error()}
	}
	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"tree"`
	}
	if err := json.Unmarshal(resp.Body, &tree); err != nil {
		perr := &ParseError{Format: "github tree", Err: err}
		return Artifact{Source: raw, Kind: KindGitHub, Title: title, Err: perr.Error()}
	}

	var solPaths []string
	for _, entry := range tree.Tree {
		if entry.Type != "blob" || !strings.HasSuffix(entry.Path, ".sol") {
			continue
		}
		if ref.Subpath != "" && !strings.HasPrefix(entry.Path, ref.Subpath) {
			continue
		}
		solPaths = append(solPaths, entry.Path)
	}

	var downloaded []string
	for _, sp := range solPaths {
		rawURL := fmt.Sprintf("%s/%s/%s/%s/%s", st.rawBase, ref.Owner, ref.Repo, branch, sp)
		resp, err := st.s.client.Get(ctx, rawURL, 30*time.Second)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("download failed; skipping")
			continue
		}
		if resp.StatusCode != 200 {
			log.Warn().Str("url", rawURL).Int("status", resp.StatusCode).Msg("download failed; skipping")
			continue
		}
		// Deterministic staging path so repeated runs overwrite in place.
		stored, err := st.s.sol.Put(path.Join(ref.Owner, ref.Repo, branch, sp), resp.Body)
		if err != nil {
			log.Warn().Str("path", sp).Err(err).Msg("stage failed; skipping")
			continue
		}
		downloaded = append(downloaded, stored)
	}

	return Artifact{
		Source: raw,
		Kind:   KindGitHub,
		Title:  title,
		Metadata: map[string]any{
			"owner":            ref.Owner,
			"repo":             ref.Repo,
			"branch":           branch,
			"downloaded_count": len(downloaded),
		},
		Text:       fmt.Sprintf("Downloaded %d Solidity files.", len(downloaded)),
		Downloaded: downloaded,
	}
}

// defaultBranch asks the repository metadata endpoint; any failure falls
// back to "main" in the caller.
func (st *githubStrategy) defaultBranch(ctx context.Context, repoAPI string) string {
	resp, err := st.s.client.Get(ctx, repoAPI, 20*time.Second)
	if err != nil || resp.StatusCode != 200 {
		return ""
	}
	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := json.Unmarshal(resp.Body, &meta); err != nil {
		return ""
	}
	return meta.DefaultBranch
}
