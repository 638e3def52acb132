// Package store persists the identifier-to-path mapping as a flat JSON file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/shirushi/internal/models"
)

// Load reads the mapping file at path. A missing file is not an error: it
// returns an empty mapping and found=false so the caller can warn and
// bootstrap. Malformed JSON is an error.
func Load(path string) (mapping models.Mapping, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Mapping{}, false, nil
		}
		return nil, false, fmt.Errorf("failed to read mapping: %w", err)
	}
	mapping = models.Mapping{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, true, fmt.Errorf("failed to parse mapping %s: %w", path, err)
	}
	return mapping, true, nil
}

// Save serializes the full mapping and replaces the file at path. The write
// goes to a temp file in the same directory and is renamed over the target,
// so readers never observe a half-written mapping. Last writer wins; there is
// no provision for concurrent writers.
func Save(path string, mapping models.Mapping) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".shirushi-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp mapping: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp mapping: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod mapping: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace mapping: %w", err)
	}
	return nil
}
