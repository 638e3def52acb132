package models

// Document represents a scanned document. Token is empty when the first line
// carries no identifier marker. Documents are ephemeral and rebuilt from disk
// on every scan.
type Document struct {
	Path  string `json:"path"`
	Token string `json:"token,omitempty"`
}
