// Package stamp prepends identifier markers to documents that lack one.
package stamp

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/shirushi/internal/ident"
	"github.com/hyperjump/shirushi/internal/models"
)

// MarkerLine renders the marker for a token, without a trailing newline.
func MarkerLine(token string) string {
	return fmt.Sprintf("<!-- ID: %s -->", token)
}

// Stamper writes markers into documents under a root directory.
type Stamper struct {
	root   string
	gen    *ident.Generator
	logger *zap.Logger
}

// Option configures a Stamper.
type Option func(*Stamper)

// WithLogger sets a logger for stamped-file output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Stamper) { s.logger = l }
}

// New creates a stamper rooted at root using gen for new identifiers.
func New(root string, gen *ident.Generator, opts ...Option) *Stamper {
	s := &Stamper{root: root, gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StampAll generates an identifier for each document, prepends its marker
// line, and records the pair in mapping. Documents are processed in the given
// order; the first failure aborts, leaving earlier stamps in place but the
// mapping unsaved (the caller persists only on full success).
func (s *Stamper) StampAll(docs []models.Document, mapping models.Mapping) ([]models.DriftEvent, error) {
	var events []models.DriftEvent
	for _, doc := range docs {
		token, err := s.gen.Generate(mapping)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(s.root, filepath.FromSlash(doc.Path))
		if err := prependLine(path, MarkerLine(token)); err != nil {
			return nil, fmt.Errorf("stamp %s: %w", doc.Path, err)
		}
		mapping[token] = doc.Path
		s.logger.Info("marker stamped",
			zap.String("token", token),
			zap.String("path", doc.Path),
		)
		events = append(events, models.DriftEvent{
			Kind:  models.DriftStamp,
			Token: token,
			Path:  doc.Path,
		})
	}
	return events, nil
}

// prependLine inserts line (plus a newline) before the existing content of
// the file at path, preserving the file's permission bits.
func prependLine(path, line string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out := make([]byte, 0, len(line)+1+len(content))
	out = append(out, line...)
	out = append(out, '\n')
	out = append(out, content...)
	return os.WriteFile(path, out, info.Mode().Perm())
}
