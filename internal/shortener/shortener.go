package shortener

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the URL-safe nanoid character set (A-Z, a-z, 0-9, '_' and '-')
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// DefaultLength is the fixed short id length
// 64^6 = ~68.7 billion combinations
const DefaultLength = 6

// CodeGenerator produces random short ids.
// It does not check for collisions; the store's unique index does.
type CodeGenerator struct {
	length int
}

// NewCodeGenerator creates a generator for ids of DefaultLength
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{length: DefaultLength}
}

// Generate returns a new random short id.
// gonanoid reads from crypto/rand, so the only failure is an exhausted entropy source.
func (g *CodeGenerator) Generate() (string, error) {
	id, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("generate short id: %w", err)
	}
	return id, nil
}

// IsValid checks if a short id has the generated length and alphabet.
// Ids that fail it can never have been issued.
func (g *CodeGenerator) IsValid(id string) bool {
	if len(id) != g.length {
		return false
	}
	for _, char := range id {
		if !strings.ContainsRune(Alphabet, char) {
			return false
		}
	}
	return true
}
