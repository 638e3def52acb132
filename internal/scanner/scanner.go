// Package scanner walks the document tree and extracts identifier markers.
package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shirushi/internal/models"
)

// markerPattern matches a full marker line, e.g. "<!-- ID: AB12CD -->".
var markerPattern = regexp.MustCompile(`^<!-- ID: ([A-Za-z0-9]+) -->$`)

// MarkerToken extracts the identifier token from a marker line. Returns false
// when the line is not a well-formed marker.
func MarkerToken(line string) (string, bool) {
	m := markerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Result is one scan over the tree: every token seen with its path, plus the
// documents that still need an identifier, in walk order.
type Result struct {
	Tokens   map[string]string
	Unmarked []models.Document
	Scanned  int
}

// Scanner walks a root directory and inspects the first line of each matching document.
type Scanner struct {
	root       string
	extensions []string
	ignoreDirs map[string]struct{}
	skip       map[string]struct{}
	logger     *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a logger for debug output (visited files, extracted tokens).
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithSkip excludes the given root-relative paths from the scan. Used to keep
// the mapping store file itself out of the document set.
func WithSkip(relPaths ...string) Option {
	return func(s *Scanner) {
		for _, p := range relPaths {
			s.skip[filepath.ToSlash(p)] = struct{}{}
		}
	}
}

// New creates a scanner over root. extensions filter which files are
// documents (empty = all); ignoreDirs are directory names pruned from the
// walk wherever they appear.
func New(root string, extensions, ignoreDirs []string, opts ...Option) *Scanner {
	s := &Scanner{
		root:       root,
		extensions: extensions,
		ignoreDirs: make(map[string]struct{}, len(ignoreDirs)),
		skip:       make(map[string]struct{}),
	}
	for _, d := range ignoreDirs {
		s.ignoreDirs[d] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the tree and returns the extracted tokens and unmarked documents.
// Two documents carrying the same token is a data-integrity violation: Scan
// returns a DuplicateIDError naming both paths and the result is discarded.
func (s *Scanner) Scan() (*Result, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absRoot)
	}

	res := &Result{Tokens: make(map[string]string)}
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absRoot {
				if _, ignored := s.ignoreDirs[d.Name()]; ignored {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(s.extensions) > 0 && !extensionAllowed(ext, s.extensions) {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, skipped := s.skip[rel]; skipped {
			return nil
		}
		return s.inspect(path, rel, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Scanner) inspect(path, rel string, res *Result) error {
	line, err := firstLine(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	res.Scanned++

	token, ok := MarkerToken(line)
	if !ok {
		if s.logger != nil {
			s.logger.Debug("document unmarked", zap.String("path", rel))
		}
		res.Unmarked = append(res.Unmarked, models.Document{Path: rel})
		return nil
	}
	if prev, seen := res.Tokens[token]; seen {
		return &models.DuplicateIDError{Token: token, FirstPath: prev, SecondPath: rel}
	}
	res.Tokens[token] = rel
	if s.logger != nil {
		s.logger.Debug("marker extracted", zap.String("path", rel), zap.String("token", token))
	}
	return nil
}

// firstLine returns the first line of the file without its line ending.
// An empty file yields an empty line.
func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	return line, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}
