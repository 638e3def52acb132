// Package reconcile compares the stored mapping against a fresh scan and
// folds non-fatal drift back into the mapping.
package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/shirushi/internal/models"
	"github.com/hyperjump/shirushi/internal/scanner"
)

// Reconcile mutates mapping in place so it matches the scan:
//   - a stored identifier found at a different path has its path updated (move);
//   - a stored identifier absent from the scan is fatal, the caller must not
//     persist anything afterward;
//   - a scanned identifier absent from the mapping is adopted.
//
// Identifiers are visited in sorted order so drift events and logs are
// deterministic across runs.
func Reconcile(mapping models.Mapping, scan *scanner.Result, logger *zap.Logger) ([]models.DriftEvent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var events []models.DriftEvent

	for _, token := range sortedTokens(mapping) {
		storedPath := mapping[token]
		scanPath, present := scan.Tokens[token]
		if !present {
			return nil, &models.MissingIDError{Token: token, StoredPath: storedPath}
		}
		if scanPath == storedPath {
			continue
		}
		logger.Info("document moved, updating path",
			zap.String("token", token),
			zap.String("old_path", storedPath),
			zap.String("new_path", scanPath),
		)
		mapping[token] = scanPath
		events = append(events, models.DriftEvent{
			Kind:    models.DriftMove,
			Token:   token,
			Path:    scanPath,
			OldPath: storedPath,
		})
	}

	for _, token := range sortedTokens(scan.Tokens) {
		if _, tracked := mapping[token]; tracked {
			continue
		}
		path := scan.Tokens[token]
		logger.Warn("untracked marker adopted",
			zap.String("token", token),
			zap.String("path", path),
		)
		mapping[token] = path
		events = append(events, models.DriftEvent{
			Kind:  models.DriftAdoption,
			Token: token,
			Path:  path,
		})
	}

	return events, nil
}

func sortedTokens(m map[string]string) []string {
	tokens := make([]string, 0, len(m))
	for token := range m {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
