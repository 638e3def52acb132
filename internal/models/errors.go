package models

import (
	"errors"
	"fmt"
)

// ErrGeneratorExhausted is returned when identifier generation keeps colliding
// with existing tokens. With a 62^6 token space this only happens when the
// mapping is pathologically large or the random source is broken.
var ErrGeneratorExhausted = errors.New("identifier generation exhausted")

// DuplicateIDError reports the same token embedded in two scanned documents.
// This is a data-integrity violation and aborts the run before any write.
type DuplicateIDError struct {
	Token      string
	FirstPath  string
	SecondPath string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate identifier %s in %s and %s", e.Token, e.FirstPath, e.SecondPath)
}

// MissingIDError reports a tracked identifier that no scanned document
// carries. It means a file was deleted or its marker stripped without an
// explicit mapping edit; resolving it requires human intervention.
type MissingIDError struct {
	Token      string
	StoredPath string
}

func (e *MissingIDError) Error() string {
	return fmt.Sprintf("identifier %s not found in any file (mapping has %s); restore the file or remove the entry", e.Token, e.StoredPath)
}
