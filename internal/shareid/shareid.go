// Package shareid generates and validates the public identifiers embedded in
// shareable analysis links.
package shareid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Length is the number of lowercase hex characters in an identifier (64 bits).
const Length = 16

var pattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// New returns a fresh random identifier.
func New() (string, error) {
	b := make([]byte, Length/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Valid reports whether id has the exact identifier format.
func Valid(id string) bool {
	return pattern.MatchString(id)
}
