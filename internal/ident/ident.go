// Package ident generates fixed-length alphanumeric document identifiers.
package ident

import (
	"math/rand"
	"strings"

	"github.com/hyperjump/shirushi/internal/models"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the token length used when none is configured.
const DefaultLength = 6

// maxAttempts bounds collision retries. The token space dwarfs any realistic
// mapping, so hitting this means something is broken, not unlucky.
const maxAttempts = 100

// Generator produces identifier tokens. Uniqueness matters; unpredictability
// does not, so math/rand is the right source.
type Generator struct {
	length int
	intn   func(n int) int
}

// NewGenerator returns a generator for tokens of the given length.
// Non-positive lengths fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length, intn: rand.Intn}
}

// Generate returns a token not present as a key of taken. It retries a bounded
// number of times on collision and returns ErrGeneratorExhausted when every
// attempt collided.
func (g *Generator) Generate(taken models.Mapping) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		token := g.token()
		if _, exists := taken[token]; !exists {
			return token, nil
		}
	}
	return "", models.ErrGeneratorExhausted
}

func (g *Generator) token() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(alphabet[g.intn(len(alphabet))])
	}
	return b.String()
}
