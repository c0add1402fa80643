package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sink persists one artifact. The session invokes it exactly once per
// artifact as the terminal step of that artifact's life.
type Sink interface {
	Persist(a *Artifact) error
}

// DirSink writes one JSON file per artifact and a sibling plain-text file
// when the artifact carries normalized text. Filenames derive from the
// sanitized title (or source) plus a monotonically increasing index so
// repeated runs never collide.
type DirSink struct {
	Dir string

	lastIdx int64
}

func (d *DirSink) Persist(a *Artifact) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir sink dir: %w", err)
	}
	idx := time.Now().UnixMilli()
	if idx <= d.lastIdx {
		idx = d.lastIdx + 1
	}
	d.lastIdx = idx

	base := a.Title
	if base == "" {
		base = a.Source
	}
	name := fmt.Sprintf("%s.%d", SanitizeName(base), idx)

	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name+".json"), payload, 0o644); err != nil {
		return fmt.Errorf("write artifact json: %w", err)
	}
	if strings.TrimSpace(a.Text) != "" {
		if err := os.WriteFile(filepath.Join(d.Dir, name+".txt"), []byte(a.Text), 0o644); err != nil {
			return fmt.Errorf("write artifact text: %w", err)
		}
	}
	return nil
}

var invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeName folds diacritics, squeezes everything outside [A-Za-z0-9_.-]
// to underscores, and caps the result at 120 bytes.
func SanitizeName(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, name); err == nil {
		name = folded
	}
	name = invalidNameChars.ReplaceAllString(name, "_")
	if len(name) > 120 {
		name = name[:120]
	}
	if name == "" {
		name = "artifact"
	}
	return name
}
