package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"spareparts/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

var (
	ErrCatalogNotFound  = errors.New("catalog file not found")
	ErrMalformedCatalog = errors.New("catalog is missing required fields")
)

// ParseError reports a catalog file that is not valid JSON for the catalog shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse catalog %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type CatalogStore interface {
	Load() (*domain.Catalog, error)
	Save(catalog *domain.Catalog) error
	Path() string
}

type catalogFileStore struct {
	path string
}

func NewCatalogFileStore(path string) CatalogStore {
	return &catalogFileStore{path: path}
}

func (s *catalogFileStore) Path() string {
	return s.path
}

// Load reads the whole catalog. There is no partial result on failure.
func (s *catalogFileStore) Load() (*domain.Catalog, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrCatalogNotFound)
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	if err := checkShape(&catalog); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	log.Debugf("Loaded catalog %s with %d categories", s.path, len(catalog.Categories))
	return &catalog, nil
}

func checkShape(catalog *domain.Catalog) error {
	if catalog.Categories == nil {
		return fmt.Errorf("categories: %w", ErrMalformedCatalog)
	}
	for i, cat := range catalog.Categories {
		if cat.Subcategories == nil {
			return fmt.Errorf("categories[%d] %q has no subcategories: %w", i, cat.ID, ErrMalformedCatalog)
		}
		for j, sc := range cat.Subcategories {
			if sc.Parts == nil {
				return fmt.Errorf("categories[%d].subcategories[%d] %q has no parts: %w", i, j, sc.ID, ErrMalformedCatalog)
			}
		}
	}
	return nil
}

// Save replaces the catalog file. The document is written to a temporary file in
// the same directory and renamed over the target.
func (s *catalogFileStore) Save(catalog *domain.Catalog) error {
	raw, err := Encode(catalog)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set catalog permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace catalog %s: %w", s.path, err)
	}

	log.Debugf("Wrote %d bytes to %s", len(raw), s.path)
	return nil
}

// Encode renders the catalog as 2-space indented JSON without HTML escaping.
func Encode(catalog *domain.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
