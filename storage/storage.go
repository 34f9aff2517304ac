// Package storage persists generated images under a structured output
// directory and assigns unique design identifiers.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subdirectories created under the output root.
var outputSubdirs = []string{
	"generated_designs",
	"refined_designs",
	"comparisons",
	"nuke_scripts",
	"temp",
	"exports",
}

// Store writes image bytes and script artifacts below a single output root.
type Store struct {
	root string
}

// Sentinel errors.
var (
	ErrEmptyImage      = errors.New("storage: image data is empty")
	ErrInvalidFilename = errors.New("storage: filename must not contain path separators")
)

// NewStore creates the output directory structure under root and returns a
// store over it.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = "outputs"
	}
	for _, sub := range outputSubdirs {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("storage: creating %s: %w", sub, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the output root directory.
func (s *Store) Root() string { return s.root }

// NewDesignID returns a unique identifier for a design or session,
// timestamp-prefixed so directory listings sort chronologically.
func NewDesignID() string {
	return fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}

// SaveImage writes image bytes into the named subdirectory and returns the
// stored path. The filename must be a bare name, not a path.
func (s *Store) SaveImage(data []byte, subdir, filename string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: writing %s: %w", path, err)
	}
	return path, nil
}

// SaveText writes a text artifact (scripts, exports) the same way.
func (s *Store) SaveText(content, subdir, filename string) (string, error) {
	if strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("storage: writing %s: %w", path, err)
	}
	return path, nil
}

// OpenImage resolves a generated-design filename to its stored path,
// rejecting traversal outside the root.
func (s *Store) OpenImage(filename string) (string, error) {
	if strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	path := filepath.Join(s.root, "generated_designs", filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	return path, nil
}
