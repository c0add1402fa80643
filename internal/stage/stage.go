package stage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store stages downloaded source files on disk under deterministic relative
// paths (owner/repo/branch/subpath for GitHub sources). Writes are plain
// overwrites, never read-modify-write, so repeated runs refresh in place
// rather than duplicate. No eviction policy is included.
type Store struct {
	Dir string
}

func (s *Store) ensureDir(dir string) error {
	if s == nil || s.Dir == "" {
		return errors.New("stage dir not configured")
	}
	return os.MkdirAll(dir, 0o755)
}

// Put writes data at rel under the store root and returns the absolute path.
func (s *Store) Put(rel string, data []byte) (string, error) {
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid stage path: %q", rel)
	}
	full := filepath.Join(s.Dir, rel)
	if err := s.ensureDir(filepath.Dir(full)); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write staged file: %w", err)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return full, nil
	}
	return abs, nil
}

// List returns all staged files with the given extension in sorted order.
func (s *Store) List(ext string) ([]string, error) {
	if s == nil || s.Dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(s.Dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Clear removes the entire store directory. Missing directories are fine.
func (s *Store) Clear() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
