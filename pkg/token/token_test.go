package token

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateInvitationCodeShape(t *testing.T) {
	code, err := NewGenerator().GenerateInvitationCode()
	require.NoError(t, err)
	assert.Regexp(t, codePattern, code)
}

func TestGenerateInvitationCodeUniqueness(t *testing.T) {
	gen := NewGenerator()
	seen := make(map[string]struct{}, 1000)
	prefixes := make(map[string]int, 1000)

	for i := 0; i < 1000; i++ {
		code, err := gen.GenerateInvitationCode()
		require.NoError(t, err)
		require.Regexp(t, codePattern, code)

		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
		prefixes[code[:9]]++
	}

	// 1000 draws over 16^9 prefixes: any shared 9-char prefix is a ~1e-4 event.
	for prefix, count := range prefixes {
		assert.Equal(t, 1, count, "prefix %s shared by %d codes", prefix, count)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerateInvitationCodeSourceFailure(t *testing.T) {
	_, err := NewGeneratorWithSource(failingReader{}).GenerateInvitationCode()
	assert.ErrorContains(t, err, "entropy exhausted")
}
