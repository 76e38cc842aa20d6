// Package storage holds the places resumes are materialized before a scan:
// a throwaway local workspace and an S3-compatible bucket.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Workspace is a private temporary directory for one scan. Cleanup
// removes it and everything in it; call it on every exit path.
type Workspace struct {
	dir  string
	once sync.Once
	err  error
}

// NewWorkspace creates a fresh directory under base (os.TempDir when empty).
func NewWorkspace(base string) (*Workspace, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload base dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, "skillscan-"+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// Save copies r into the workspace under the base name of name. Names
// that collide with an earlier file get a numeric suffix.
func (w *Workspace) Save(name string, r io.Reader) (string, error) {
	base := SafeName(name)
	if base == "" {
		return "", errors.New("empty file name")
	}

	path, f, err := w.create(base)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", base, err)
	}
	return path, nil
}

func (w *Workspace) create(base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < 1000; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(w.dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("failed to create %s: %w", candidate, err)
		}
		return path, f, nil
	}
	return "", nil, fmt.Errorf("too many files named %s", base)
}

// Cleanup removes the workspace. Safe to call more than once.
func (w *Workspace) Cleanup() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}

// SafeName strips any directory part a client put in an upload name.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." {
		return ""
	}
	return base
}
