// Package models defines core data structures for mappings, documents, and run reports.
package models

// Mapping associates identifier tokens with repository-relative document paths.
// Tokens are unique by construction; paths are slash-separated and relative to
// the scan root.
type Mapping map[string]string

// Clone returns an independent copy of m.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for token, path := range m {
		out[token] = path
	}
	return out
}
