package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// InvitationCodeBytes is the entropy of an invitation code (256 bits).
const InvitationCodeBytes = 32

// Generator produces invitation codes.
type Generator interface {
	GenerateInvitationCode() (string, error)
}

// CryptoGenerator draws codes from crypto/rand. It has no fallback source.
type CryptoGenerator struct {
	source io.Reader
}

func NewGenerator() *CryptoGenerator {
	return &CryptoGenerator{source: rand.Reader}
}

// NewGeneratorWithSource is used by tests to inject a failing source.
func NewGeneratorWithSource(source io.Reader) *CryptoGenerator {
	return &CryptoGenerator{source: source}
}

// GenerateInvitationCode returns 64 lowercase hex characters.
func (g *CryptoGenerator) GenerateInvitationCode() (string, error) {
	buf := make([]byte, InvitationCodeBytes)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
